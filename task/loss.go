package task

import (
	"fmt"
	"log"
)

// nllLoss накапливает отрицательное лог-правдоподобие между лог-вероятностями
// prediction (frames × classes) и one-hot целью в powerset-пространстве,
// опционально взвешенное по фреймам (weight может быть nil).
// Возвращает взвешенную сумму и суммарный вес, чтобы вызывающий мог
// нормировать на уровне всего батча
func nllLoss(prediction, targetPowerset [][]float64, weight []float64) (sum, norm float64) {
	for f := range prediction {
		class := 0
		best := targetPowerset[f][0]
		for c := 1; c < len(targetPowerset[f]); c++ {
			if targetPowerset[f][c] > best {
				best = targetPowerset[f][c]
				class = c
			}
		}

		w := 1.0
		if weight != nil {
			w = weight[f]
		}
		sum += -w * prediction[f][class]
		norm += w
	}
	return sum, norm
}

// activeSpeakers считает число слотов с хоть какой-то активностью
func activeSpeakers(y [][]float64) int {
	if len(y) == 0 {
		return 0
	}
	count := 0
	for s := 0; s < len(y[0]); s++ {
		for f := range y {
			if y[f][s] != 0 {
				count++
				break
			}
		}
	}
	return count
}

// guideWeight строит веса фреймов одного сэмпла: 1 если фрейм направляется
// (любое значение подсказки ненулевое), иначе 0
func guideWeight(guide [][]float64) []float64 {
	weight := make([]float64, len(guide))
	for f := range guide {
		for s := range guide[f] {
			if guide[f][s] != 0 {
				weight[f] = 1
				break
			}
		}
	}
	return weight
}

// hasGuide сообщает, есть ли в батче хоть одно ненулевое значение подсказки
func hasGuide(guides [][][]float64) bool {
	for i := range guides {
		for f := range guides[i] {
			for s := range guides[i][f] {
				if guides[i][f][s] != 0 {
					return true
				}
			}
		}
	}
	return false
}

// TrainingStep выполняет один обучающий шаг: прямой проход модели,
// перестановочно-инвариантный сегментационный лосс и лосс подсказки,
// смешанные коэффициентом Freedom. Возвращает итоговый скалярный лосс
func (t *Task) TrainingStep(batch *Batch) (float64, error) {
	if t.model == nil {
		return 0, fmt.Errorf("task has no model, only target preparation is available")
	}
	if err := t.checkBatch(batch); err != nil {
		return 0, err
	}

	// Отбрасываем сэмплы, где активных спикеров больше бюджета
	// (нарушение бюджета выше по конвейеру)
	var keep []int
	for i := range batch.Y {
		if activeSpeakers(batch.Y[i]) <= t.config.MaxSpeakersPerChunk {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		// Вырожденный, но допустимый батч
		log.Printf("TrainingStep: all %d samples exceed the speaker budget, skipping", len(batch.Y))
		return 0, nil
	}

	waveforms := make([][]float32, len(keep))
	ys := make([][][]float64, len(keep))
	guides := make([][][]float64, len(keep))
	for i, idx := range keep {
		waveforms[i] = batch.Waveforms[idx]
		ys[i] = batch.Y[idx]
		guides[i] = batch.Guide[idx]
	}

	predictions, err := t.model.Forward(waveforms, guides)
	if err != nil {
		return 0, fmt.Errorf("forward pass: %w", err)
	}
	if len(predictions) != len(keep) {
		return 0, fmt.Errorf("model returned %d predictions for %d samples", len(predictions), len(keep))
	}
	for i := range predictions {
		if len(predictions[i]) != t.grid.NumFrames {
			return 0, fmt.Errorf("prediction %d has %d frames, expected %d",
				i, len(predictions[i]), t.grid.NumFrames)
		}
	}

	// Сегментационный лосс: переставляем цель в multilabel-пространстве
	// под жёсткое декодирование модели, перекодируем в powerset и считаем NLL
	hard := make([][][]float64, len(keep))
	var segSum, segNorm float64
	for i := range predictions {
		hard[i] = t.powerset.ToMultilabel(predictions[i])
		permutated, _ := t.permutator.Permutate(hard[i], ys[i], nil)
		sum, norm := nllLoss(predictions[i], t.powerset.ToPowerset(permutated), nil)
		segSum += sum
		segNorm += norm
	}
	segLoss := segSum / segNorm
	t.sink.Log("loss/train/segmentation", segLoss)

	// Лосс подсказки: считается только по направляемым фреймам, с независимой
	// оптимальной перестановкой относительно той же самой подсказки
	guideLoss := 0.0
	if hasGuide(guides) {
		var guideSum, guideNorm float64
		for i := range predictions {
			weight := guideWeight(guides[i])

			// Переводим подсказку из {-1, +1} обратно в {0, 1}
			guideMultilabel := make([][]float64, len(guides[i]))
			for f := range guides[i] {
				guideMultilabel[f] = make([]float64, len(guides[i][f]))
				for s := range guides[i][f] {
					guideMultilabel[f][s] = (guides[i][f][s] + 1) * 0.5
				}
			}

			permutated, _ := t.permutator.Permutate(hard[i], guideMultilabel, weight)
			sum, norm := nllLoss(predictions[i], t.powerset.ToPowerset(permutated), weight)
			guideSum += sum
			guideNorm += norm
		}
		if guideNorm > 0 {
			guideLoss = guideSum / guideNorm
		}
	}
	t.sink.Log("loss/train/guide", guideLoss)

	loss := t.config.Freedom*segLoss + (1-t.config.Freedom)*guideLoss
	t.sink.Log("loss/train", loss)
	return loss, nil
}

// ValidationStep считает сегментационный лосс без подсказки и обновляет
// внешнюю валидационную метрику
func (t *Task) ValidationStep(batch *Batch) (float64, error) {
	if t.model == nil {
		return 0, fmt.Errorf("task has no model, only target preparation is available")
	}
	if err := t.checkBatch(batch); err != nil {
		return 0, err
	}

	predictions, err := t.model.Forward(batch.Waveforms, nil)
	if err != nil {
		return 0, fmt.Errorf("forward pass: %w", err)
	}
	if len(predictions) != len(batch.Y) {
		return 0, fmt.Errorf("model returned %d predictions for %d samples",
			len(predictions), len(batch.Y))
	}
	for i := range predictions {
		if len(predictions[i]) != t.grid.NumFrames {
			return 0, fmt.Errorf("prediction %d has %d frames, expected %d",
				i, len(predictions[i]), t.grid.NumFrames)
		}
	}

	var segSum, segNorm float64
	for i := range predictions {
		multilabel := t.powerset.ToMultilabel(predictions[i])
		permutated, _ := t.permutator.Permutate(multilabel, batch.Y[i], nil)
		sum, norm := nllLoss(predictions[i], t.powerset.ToPowerset(permutated), nil)
		segSum += sum
		segNorm += norm

		if t.metric != nil {
			t.metric.Update(multilabel, batch.Y[i])
		}
	}
	segLoss := segSum / segNorm
	t.sink.Log("loss/val/segmentation", segLoss)
	return segLoss, nil
}
