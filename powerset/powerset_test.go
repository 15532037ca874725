package powerset

import "testing"

func TestNumClasses(t *testing.T) {
	// 3 спикера, до 2 одновременно: пустое множество + 3 синглтона + 3 пары
	p, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.NumClasses() != 7 {
		t.Errorf("Expected 7 classes, got %d", p.NumClasses())
	}

	p, err = New(4, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.NumClasses() != 11 {
		t.Errorf("Expected 11 classes, got %d", p.NumClasses())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 1); err == nil {
		t.Error("Expected error for zero speakers")
	}
	if _, err := New(3, 0); err == nil {
		t.Error("Expected error for zero max active")
	}
	if _, err := New(3, 4); err == nil {
		t.Error("Expected error for max active above speaker count")
	}
}

func TestRoundTrip(t *testing.T) {
	p, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Все допустимые multilabel-векторы (не более 2 активных из 3)
	multilabel := [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 0},
		{1, 0, 1},
		{0, 1, 1},
	}

	decoded := p.ToMultilabel(p.ToPowerset(multilabel))
	for f := range multilabel {
		for s := range multilabel[f] {
			if decoded[f][s] != multilabel[f][s] {
				t.Errorf("Round trip differs at [%d][%d]: got %v, want %v",
					f, s, decoded[f][s], multilabel[f][s])
			}
		}
	}
}

func TestEmptySetIsFirstClass(t *testing.T) {
	p, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	onehot := p.ToPowerset([][]float64{{0, 0, 0}})
	if onehot[0][0] != 1 {
		t.Errorf("Silence must encode to class 0, got %v", onehot[0])
	}
}

func TestSingletonBeatsSuperset(t *testing.T) {
	p, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Один активный спикер не должен кодироваться парой, его содержащей
	onehot := p.ToPowerset([][]float64{{1, 0, 0}})
	decoded := p.ToMultilabel(onehot)
	if decoded[0][0] != 1 || decoded[0][1] != 0 || decoded[0][2] != 0 {
		t.Errorf("Singleton encoded as %v", decoded[0])
	}
}

func TestToMultilabelArgmax(t *testing.T) {
	p, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Максимум предсказания на последнем классе (пара {1, 2})
	prediction := make([][]float64, 1)
	prediction[0] = make([]float64, p.NumClasses())
	for c := range prediction[0] {
		prediction[0][c] = -10
	}
	prediction[0][p.NumClasses()-1] = -0.1

	multilabel := p.ToMultilabel(prediction)
	if multilabel[0][0] != 0 || multilabel[0][1] != 1 || multilabel[0][2] != 1 {
		t.Errorf("Expected speakers 1 and 2 active, got %v", multilabel[0])
	}
}
