package task

import "testing"

func TestDiscretizeShape(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 5.0, Duration: 10.0}

	annotations := []Annotation{
		{Start: 6.0, End: 8.0, Label: "a", Scope: ScopeFile},
		{Start: 7.0, End: 9.0, Label: "b", Scope: ScopeFile},
		{Start: 12.0, End: 13.0, Label: "a", Scope: ScopeFile}, // Вторая реплика того же спикера
	}

	target := grid.Discretize(chunk, annotations)

	if len(target.Y) != 100 {
		t.Fatalf("Expected 100 frames, got %d", len(target.Y))
	}
	// Два уникальных спикера -> два столбца
	if len(target.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %d: %v", len(target.Labels), target.Labels)
	}
	for f := range target.Y {
		if len(target.Y[f]) != 2 {
			t.Fatalf("Frame %d has %d columns, expected 2", f, len(target.Y[f]))
		}
	}
}

func TestDiscretizeStrictBoundary(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 5.0, Duration: 10.0}

	// Касание только в граничной точке не считается пересечением
	annotations := []Annotation{
		{Start: 3.0, End: 5.0, Label: "before", Scope: ScopeFile},
		{Start: 15.0, End: 17.0, Label: "after", Scope: ScopeFile},
	}

	target := grid.Discretize(chunk, annotations)
	if len(target.Labels) != 0 {
		t.Errorf("Boundary-touching annotations must be excluded, got labels %v", target.Labels)
	}
}

func TestDiscretizeFloorCeil(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 5.0, Duration: 10.0}

	// 5.25 -> floor(0.25/0.1) = 2, 5.34 -> ceil(0.34/0.1) = 4
	annotations := []Annotation{
		{Start: 5.25, End: 5.34, Label: "a", Scope: ScopeFile},
	}
	target := grid.Discretize(chunk, annotations)

	for f := 0; f < 100; f++ {
		want := 0.0
		if f >= 2 && f < 4 {
			want = 1.0
		}
		if target.Y[f][0] != want {
			t.Errorf("Frame %d: expected %.0f, got %.0f", f, want, target.Y[f][0])
		}
	}
}

func TestDiscretizeClipsToChunk(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 5.0, Duration: 10.0}

	// Аннотация выходит за границы чанка с обеих сторон
	annotations := []Annotation{
		{Start: 1.0, End: 30.0, Label: "a", Scope: ScopeFile},
	}
	target := grid.Discretize(chunk, annotations)

	for f := 0; f < 100; f++ {
		if target.Y[f][0] != 1 {
			t.Fatalf("Frame %d expected active", f)
		}
	}
}

func TestDiscretizeOverlapRepresentable(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 0.0, Duration: 10.0}

	annotations := []Annotation{
		{Start: 2.0, End: 6.0, Label: "a", Scope: ScopeFile},
		{Start: 4.0, End: 8.0, Label: "b", Scope: ScopeFile},
	}
	target := grid.Discretize(chunk, annotations)

	// В зоне пересечения активны оба столбца
	for f := 41; f < 59; f++ {
		if target.Y[f][0] != 1 || target.Y[f][1] != 1 {
			t.Fatalf("Frame %d: expected both speakers active, got %v", f, target.Y[f])
		}
	}
}

func TestDiscretizeEmptyChunk(t *testing.T) {
	grid := FrameGrid{Step: 0.1, NumFrames: 100}
	chunk := Chunk{Start: 0.0, Duration: 10.0}

	target := grid.Discretize(chunk, nil)

	if len(target.Y) != 100 {
		t.Fatalf("Expected 100 frames, got %d", len(target.Y))
	}
	if len(target.Labels) != 0 {
		t.Fatalf("Expected zero labels, got %v", target.Labels)
	}
	for f := range target.Y {
		if len(target.Y[f]) != 0 {
			t.Fatalf("Frame %d: expected zero columns", f)
		}
	}
}
