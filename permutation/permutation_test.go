package permutation

import (
	"math/rand"
	"testing"
)

func TestPermutateRecoversShuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	numFrames, numSpeakers := 40, 3

	reference := make([][]float64, numFrames)
	for f := range reference {
		reference[f] = make([]float64, numSpeakers)
		for s := range reference[f] {
			if rng.Float64() < 0.4 {
				reference[f][s] = 1
			}
		}
	}

	// candidate = reference с перемешанными столбцами
	shuffle := []int{2, 0, 1}
	candidate := make([][]float64, numFrames)
	for f := range candidate {
		candidate[f] = make([]float64, numSpeakers)
		for c, s := range shuffle {
			candidate[f][c] = reference[f][s]
		}
	}

	permutated, perm := Permutate(reference, candidate, nil)
	if len(perm) != numSpeakers {
		t.Fatalf("Expected permutation of %d slots, got %v", numSpeakers, perm)
	}
	for f := range reference {
		for s := range reference[f] {
			if permutated[f][s] != reference[f][s] {
				t.Fatalf("Permutated candidate differs from reference at [%d][%d]", f, s)
			}
		}
	}
}

func TestPermutateIdentityWhenEqual(t *testing.T) {
	y := [][]float64{{1, 0}, {0, 1}, {1, 1}}
	_, perm := Permutate(y, y, nil)
	if perm[0] != 0 || perm[1] != 1 {
		t.Errorf("Expected identity permutation, got %v", perm)
	}
}

func TestPermutateWeighted(t *testing.T) {
	reference := [][]float64{
		{1, 0},
		{1, 0},
		{0, 1},
		{0, 1},
	}
	candidate := [][]float64{
		{0, 1},
		{0, 1},
		{0, 1},
		{0, 1},
	}

	// Без весов стоимости совпадают, выигрывает первая (тождественная) перестановка
	_, perm := Permutate(reference, candidate, nil)
	if perm[0] != 0 || perm[1] != 1 {
		t.Errorf("Unweighted: expected identity tie-break, got %v", perm)
	}

	// С весом только по первым двум фреймам выгоднее поменять столбцы местами
	_, perm = Permutate(reference, candidate, []float64{1, 1, 0, 0})
	if perm[0] != 1 || perm[1] != 0 {
		t.Errorf("Weighted: expected swap, got %v", perm)
	}
}

func TestPermutateShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on frame count mismatch")
		}
	}()
	Permutate([][]float64{{1, 0}}, [][]float64{{1, 0}, {0, 1}}, nil)
}

func TestPermutateEmpty(t *testing.T) {
	permutated, perm := Permutate(nil, nil, nil)
	if permutated != nil || perm != nil {
		t.Errorf("Empty input must yield empty output, got %v, %v", permutated, perm)
	}
}
