package task

import (
	"math"
	"sort"
)

// FrameGrid сетка фреймов на разрешении выхода модели.
// Вся дискретизация привязывается к этой сетке:
// индекс фрейма = floor/ceil((время - начало чанка) / Step), в пределах [0, NumFrames)
type FrameGrid struct {
	Step      float64 // Шаг фрейма в секундах
	NumFrames int     // Число фреймов в чанке
}

// Discretize переводит непрерывные аннотации в пофреймовую многометочную цель.
// Аннотация включается, если её интервал имеет непустое пересечение с чанком
// (строгие неравенства: касание только в граничной точке не считается).
// Усечение по бюджету спикеров здесь НЕ выполняется — этим занимается Collator
func (g FrameGrid) Discretize(chunk Chunk, annotations []Annotation) ChunkTarget {
	var overlapping []Annotation
	for _, a := range annotations {
		if a.Start < chunk.End() && a.End > chunk.Start {
			overlapping = append(overlapping, a)
		}
	}

	// Уникальные метки чанка, отсортированные для детерминированного порядка столбцов
	seen := make(map[string]bool)
	var labels []string
	for _, a := range overlapping {
		if !seen[a.Label] {
			seen[a.Label] = true
			labels = append(labels, a.Label)
		}
	}
	sort.Strings(labels)

	mapping := make(map[string]int, len(labels))
	for i, label := range labels {
		mapping[label] = i
	}

	// Ноль меток -> матрица с нулём столбцов, downstream обязан это переживать
	y := make([][]float64, g.NumFrames)
	for f := range y {
		y[f] = make([]float64, len(labels))
	}

	for _, a := range overlapping {
		start := math.Max(a.Start, chunk.Start) - chunk.Start
		end := math.Min(a.End, chunk.End()) - chunk.Start

		startIdx := int(math.Floor(start / g.Step))
		endIdx := int(math.Ceil(end / g.Step))
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > g.NumFrames {
			endIdx = g.NumFrames
		}

		col := mapping[a.Label]
		for f := startIdx; f < endIdx; f++ {
			y[f][col] = 1
		}
	}

	return ChunkTarget{Y: y, Labels: labels}
}
