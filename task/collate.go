package task

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Collator приводит цель переменной ширины к фиксированному числу слотов
// спикеров (maxSpeakers) и перемешивает порядок слотов
type Collator struct {
	maxSpeakers int
	rng         *rand.Rand
}

// NewCollator создаёт коллатор с явным источником случайности,
// чтобы перестановки слотов были воспроизводимы
func NewCollator(maxSpeakers int, rng *rand.Rand) *Collator {
	return &Collator{maxSpeakers: maxSpeakers, rng: rng}
}

// CollateTarget приводит цель одного сэмпла к ширине maxSpeakers:
// лишние метки усекаются по суммарной активности (остаются самые
// "разговорчивые"; их активность ниже среза молча теряется), недостающие
// слоты дополняются нулевыми столбцами (фантомные молчащие спикеры).
// Затем слоты перемешиваются независимой равномерной перестановкой,
// чтобы модель не могла выучить позиционный приоритет меток.
// Порядок при равной активности не гарантируется
func (c *Collator) CollateTarget(t ChunkTarget) [][]float64 {
	numFrames := len(t.Y)
	numSpeakers := len(t.Labels)

	y := make([][]float64, numFrames)

	switch {
	case numSpeakers > c.maxSpeakers:
		// Ранжируем столбцы по убыванию суммарной активности
		negActivity := make([]float64, numSpeakers)
		for s := 0; s < numSpeakers; s++ {
			var sum float64
			for f := 0; f < numFrames; f++ {
				sum += t.Y[f][s]
			}
			negActivity[s] = -sum
		}
		inds := make([]int, numSpeakers)
		floats.Argsort(negActivity, inds)
		keep := inds[:c.maxSpeakers]

		for f := 0; f < numFrames; f++ {
			y[f] = make([]float64, c.maxSpeakers)
			for i, s := range keep {
				y[f][i] = t.Y[f][s]
			}
		}

	case numSpeakers < c.maxSpeakers:
		for f := 0; f < numFrames; f++ {
			y[f] = make([]float64, c.maxSpeakers)
			copy(y[f], t.Y[f])
		}

	default:
		for f := 0; f < numFrames; f++ {
			y[f] = make([]float64, c.maxSpeakers)
			copy(y[f], t.Y[f])
		}
	}

	// Независимая перестановка слотов для каждого сэмпла
	perm := c.rng.Perm(c.maxSpeakers)
	for f := 0; f < numFrames; f++ {
		row := make([]float64, c.maxSpeakers)
		for i, s := range perm {
			row[i] = y[f][s]
		}
		y[f] = row
	}

	return y
}
