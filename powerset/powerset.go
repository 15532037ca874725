// Package powerset реализует кодек между multilabel-пространством
// (независимый бинарный флаг на спикера) и компактным powerset-пространством
// комбинаций одновременно активных спикеров
package powerset

import "fmt"

// Powerset кодек "не более maxActive одновременных спикеров из numSpeakers".
// Классы упорядочены по мощности подмножества, затем лексикографически:
// пустое множество, синглтоны, пары и так далее
type Powerset struct {
	numSpeakers int
	maxActive   int
	mapping     [][]float64 // [class][speaker] принадлежность спикера классу
}

// New создаёт кодек
func New(numSpeakers, maxActive int) (*Powerset, error) {
	if numSpeakers < 1 {
		return nil, fmt.Errorf("powerset needs at least one speaker, got %d", numSpeakers)
	}
	if maxActive < 1 || maxActive > numSpeakers {
		return nil, fmt.Errorf("max active speakers must be in [1, %d], got %d", numSpeakers, maxActive)
	}

	p := &Powerset{numSpeakers: numSpeakers, maxActive: maxActive}
	for size := 0; size <= maxActive; size++ {
		for _, subset := range combinations(numSpeakers, size) {
			row := make([]float64, numSpeakers)
			for _, s := range subset {
				row[s] = 1
			}
			p.mapping = append(p.mapping, row)
		}
	}
	return p, nil
}

// NumClasses число powerset-классов
func (p *Powerset) NumClasses() int { return len(p.mapping) }

// NumSpeakers число спикеров в multilabel-пространстве
func (p *Powerset) NumSpeakers() int { return p.numSpeakers }

// ToMultilabel декодирует предсказание (frames × classes) в бинарную
// активность спикеров (frames × speakers) через argmax по классам
func (p *Powerset) ToMultilabel(prediction [][]float64) [][]float64 {
	multilabel := make([][]float64, len(prediction))
	for f, row := range prediction {
		if len(row) != len(p.mapping) {
			panic(fmt.Sprintf("powerset: prediction has %d classes, codec has %d", len(row), len(p.mapping)))
		}
		class := 0
		best := row[0]
		for c := 1; c < len(row); c++ {
			if row[c] > best {
				best = row[c]
				class = c
			}
		}
		multilabel[f] = make([]float64, p.numSpeakers)
		copy(multilabel[f], p.mapping[class])
	}
	return multilabel
}

// ToPowerset кодирует multilabel-активность в one-hot по классам.
// Класс каждого фрейма выбирается по максимальному скалярному произведению
// с вектором класса; при равенстве выигрывает первый класс, а поскольку
// классы упорядочены по мощности, точное подмножество побеждает свои
// надмножества. Для допустимых входов кодек образует биекцию с ToMultilabel
func (p *Powerset) ToPowerset(multilabel [][]float64) [][]float64 {
	onehot := make([][]float64, len(multilabel))
	for f, row := range multilabel {
		if len(row) != p.numSpeakers {
			panic(fmt.Sprintf("powerset: multilabel has %d speakers, codec has %d", len(row), p.numSpeakers))
		}
		class := 0
		best := score(row, p.mapping[0])
		for c := 1; c < len(p.mapping); c++ {
			if s := score(row, p.mapping[c]); s > best {
				best = s
				class = c
			}
		}
		onehot[f] = make([]float64, len(p.mapping))
		onehot[f][class] = 1
	}
	return onehot
}

func score(multilabel, class []float64) float64 {
	var sum float64
	for s := range multilabel {
		sum += multilabel[s] * class[s]
	}
	return sum
}

// combinations возвращает все подмножества размера size из {0..n-1}
// в лексикографическом порядке
func combinations(n, size int) [][]int {
	if size == 0 {
		return [][]int{{}}
	}
	var result [][]int
	current := make([]int, 0, size)

	var build func(start int)
	build = func(start int) {
		if len(current) == size {
			subset := make([]int, size)
			copy(subset, current)
			result = append(result, subset)
			return
		}
		for i := start; i < n; i++ {
			current = append(current, i)
			build(i + 1)
			current = current[:len(current)-1]
		}
	}
	build(0)
	return result
}
