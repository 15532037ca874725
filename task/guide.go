package task

import "math/rand"

// GuideStrategy стратегия выбора "известных" модели фреймов.
// Маска временная: один и тот же фрейм либо направляется для всех слотов
// спикеров сразу, либо не направляется вовсе
type GuideStrategy interface {
	// SampleMask возвращает маску (batch × numFrames): true = фрейм направляемый
	SampleMask(batchSize, numFrames int, rng *rand.Rand) [][]bool
}

// NoGuide модель работает полностью самостоятельно (автономный режим)
type NoGuide struct{}

func (NoGuide) SampleMask(batchSize, numFrames int, rng *rand.Rand) [][]bool {
	mask := make([][]bool, batchSize)
	for b := range mask {
		mask[b] = make([]bool, numFrames)
	}
	return mask
}

// FullGuide вся разметка известна заранее.
// В обучающем распределении не участвует, зарезервирована для оценки/инференса
type FullGuide struct{}

func (FullGuide) SampleMask(batchSize, numFrames int, rng *rand.Rand) [][]bool {
	mask := make([][]bool, batchSize)
	for b := range mask {
		mask[b] = make([]bool, numFrames)
		for f := range mask[b] {
			mask[b][f] = true
		}
	}
	return mask
}

// FirstHalfGuide известна первая половина чанка (стриминговый режим)
type FirstHalfGuide struct{}

func (FirstHalfGuide) SampleMask(batchSize, numFrames int, rng *rand.Rand) [][]bool {
	mask := make([][]bool, batchSize)
	for b := range mask {
		mask[b] = make([]bool, numFrames)
		for f := 0; f < numFrames/2; f++ {
			mask[b][f] = true
		}
	}
	return mask
}

// RandomFrameGuide известно случайное подмножество фреймов (интерактивный режим).
// Число фреймов k выбирается равномерно из [MinFrames, MaxFrames] включительно,
// сами фреймы — равномерно без повторений, независимо для каждого сэмпла
type RandomFrameGuide struct {
	MinFrames int
	MaxFrames int
}

func (g RandomFrameGuide) SampleMask(batchSize, numFrames int, rng *rand.Rand) [][]bool {
	mask := make([][]bool, batchSize)
	for b := range mask {
		mask[b] = make([]bool, numFrames)
		k := g.MinFrames + rng.Intn(g.MaxFrames-g.MinFrames+1)
		if k > numFrames {
			k = numFrames
		}
		for _, f := range rng.Perm(numFrames)[:k] {
			mask[b][f] = true
		}
	}
	return mask
}

// Guidance выбирает стратегию подсказки на каждый батч
type Guidance struct {
	strategies []GuideStrategy
	rng        *rand.Rand
}

// NewGuidance создаёт сэмплер, выбирающий стратегию равномерно из списка
func NewGuidance(strategies []GuideStrategy, rng *rand.Rand) *Guidance {
	return &Guidance{strategies: strategies, rng: rng}
}

// DefaultGuidance обучающее распределение:
// 50% сэмплов без подсказки (автономный режим),
// 25% с подсказкой по первой половине (стриминговый режим),
// 25% с подсказкой по случайным фреймам (интерактивный режим).
// NoGuide входит дважды, чтобы получить 50% при равномерном выборе из четырёх
func DefaultGuidance(minFrames, maxFrames int, rng *rand.Rand) *Guidance {
	return NewGuidance([]GuideStrategy{
		NoGuide{},
		NoGuide{},
		FirstHalfGuide{},
		RandomFrameGuide{MinFrames: minFrames, MaxFrames: maxFrames},
	}, rng)
}

// SampleMask выбирает стратегию на батч и возвращает её маску
func (g *Guidance) SampleMask(batchSize, numFrames int) [][]bool {
	strategy := g.strategies[g.rng.Intn(len(g.strategies))]
	return strategy.SampleMask(batchSize, numFrames, g.rng)
}

// BuildGuide строит направляющий тензор одного сэмпла из цели и маски:
// +1 спикер известно активен, -1 известно неактивен, 0 фрейм не направляется.
// Там где маска false, значение ровно 0; где true — ровно 2*(target - 0.5)
func BuildGuide(y [][]float64, mask []bool) [][]float64 {
	guide := make([][]float64, len(y))
	for f := range y {
		guide[f] = make([]float64, len(y[f]))
		if !mask[f] {
			continue
		}
		for s := range y[f] {
			guide[f][s] = 2 * (y[f][s] - 0.5)
		}
	}
	return guide
}
