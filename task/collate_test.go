package task

import (
	"math/rand"
	"testing"
)

// makeTarget строит цель с заданным числом активных фреймов на столбец
func makeTarget(numFrames int, labels []string, counts []int) ChunkTarget {
	y := make([][]float64, numFrames)
	for f := range y {
		y[f] = make([]float64, len(labels))
		for s, c := range counts {
			if f < c {
				y[f][s] = 1
			}
		}
	}
	return ChunkTarget{Y: y, Labels: labels}
}

func columnSums(y [][]float64) []float64 {
	if len(y) == 0 {
		return nil
	}
	sums := make([]float64, len(y[0]))
	for f := range y {
		for s := range y[f] {
			sums[s] += y[f][s]
		}
	}
	return sums
}

func TestCollateWidthAlwaysBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := NewCollator(3, rng)

	cases := []ChunkTarget{
		makeTarget(50, []string{"a", "b", "c", "d", "e"}, []int{5, 4, 3, 2, 1}),
		makeTarget(50, []string{"a"}, []int{5}),
		makeTarget(50, []string{"a", "b", "c"}, []int{5, 4, 3}),
		makeTarget(50, nil, nil),
	}

	for i, target := range cases {
		y := c.CollateTarget(target)
		if len(y) != 50 {
			t.Fatalf("Case %d: expected 50 frames, got %d", i, len(y))
		}
		for f := range y {
			if len(y[f]) != 3 {
				t.Fatalf("Case %d frame %d: expected 3 slots, got %d", i, f, len(y[f]))
			}
		}
	}
}

func TestCollateTruncatesByTalkativeness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := NewCollator(3, rng)

	// Активность: A=10, B=5, C=20, D=2 -> остаются C, A, B
	target := makeTarget(50, []string{"A", "B", "C", "D"}, []int{10, 5, 20, 2})
	y := c.CollateTarget(target)

	sums := columnSums(y)
	seen := map[float64]bool{}
	for _, s := range sums {
		seen[s] = true
	}
	for _, want := range []float64{20, 10, 5} {
		if !seen[want] {
			t.Errorf("Expected a column with activity %.0f, got sums %v", want, sums)
		}
	}
	if seen[2] {
		t.Errorf("Speaker D (activity 2) must be dropped, got sums %v", sums)
	}
}

func TestCollatePadsWithPhantoms(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := NewCollator(4, rng)

	target := makeTarget(50, []string{"a", "b"}, []int{7, 3})
	y := c.CollateTarget(target)

	sums := columnSums(y)
	zeros := 0
	for _, s := range sums {
		if s == 0 {
			zeros++
		}
	}
	// Фантомные спикеры всегда молчат
	if zeros != 2 {
		t.Errorf("Expected 2 phantom columns, got sums %v", sums)
	}
}

func TestCollatePermutationPreservesActivity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := NewCollator(3, rng)

	target := makeTarget(50, []string{"a", "b", "c"}, []int{9, 6, 3})
	y := c.CollateTarget(target)

	sums := columnSums(y)
	total := 0.0
	for _, s := range sums {
		total += s
	}
	if total != 18 {
		t.Errorf("Permutation must preserve total activity, got %v", sums)
	}
}

func TestCollateReproducibleWithSeed(t *testing.T) {
	target := makeTarget(50, []string{"a", "b", "c", "d"}, []int{9, 6, 3, 1})

	first := NewCollator(3, rand.New(rand.NewSource(42))).CollateTarget(target)
	second := NewCollator(3, rand.New(rand.NewSource(42))).CollateTarget(target)

	for f := range first {
		for s := range first[f] {
			if first[f][s] != second[f][s] {
				t.Fatalf("Same seed must give identical collation, differs at [%d][%d]", f, s)
			}
		}
	}
}
