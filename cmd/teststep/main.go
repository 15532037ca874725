// Тест полного шага обучения с реальной ONNX-моделью сегментации
//
// Запуск: go run ./cmd/teststep -model path/to/segmentation.onnx
//
// Готовит синтетический батч, выполняет прямой проход и печатает
// компоненты лосса при разных значениях freedom

package main

import (
	"flag"
	"log"
	"math"
	"math/rand"

	"diartrain/permutation"
	"diartrain/powerset"
	"diartrain/task"
)

func main() {
	modelPath := flag.String("model", "", "Path to segmentation ONNX model")
	withGuide := flag.Bool("with-guide", true, "Model accepts a guide input")
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("Укажите модель: -model path/to/segmentation.onnx")
	}

	taskConfig := task.DefaultTaskConfig()

	codec, err := powerset.New(taskConfig.MaxSpeakersPerChunk, taskConfig.MaxSpeakersPerFrame)
	if err != nil {
		log.Fatalf("Ошибка создания powerset-кодека: %v", err)
	}

	grid := task.FrameGrid{
		Step:      taskConfig.FrameStep,
		NumFrames: int(math.Ceil(taskConfig.Duration / taskConfig.FrameStep)),
	}
	model, err := task.NewONNXModel(task.ONNXModelConfig{
		ModelPath:   *modelPath,
		SampleRate:  16000,
		NumFrames:   grid.NumFrames,
		NumClasses:  codec.NumClasses(),
		NumSpeakers: taskConfig.MaxSpeakersPerChunk,
		WithGuide:   *withGuide,
	})
	if err != nil {
		log.Fatalf("Ошибка загрузки модели: %v", err)
	}
	defer model.Close()

	for _, freedom := range []float64{0.0, 0.5, 1.0} {
		cfg := taskConfig
		cfg.Freedom = freedom

		tsk, err := task.NewTask(cfg, model, codec, permutation.Solver{}, task.LogSink{}, nil)
		if err != nil {
			log.Fatalf("Ошибка создания задачи: %v", err)
		}

		rng := rand.New(rand.NewSource(cfg.Seed))
		samples := make([]task.Sample, 4)
		for i := range samples {
			annotations := []task.Annotation{
				{Start: 1, End: 4, Label: "a", Scope: task.ScopeFile},
				{Start: 3, End: 7, Label: "b", Scope: task.ScopeFile},
			}
			waveform := make([]float32, int(16000*cfg.Duration))
			for j := range waveform {
				waveform[j] = rng.Float32()*0.02 - 0.01
			}
			sample, err := tsk.PrepareChunk(i, task.Chunk{Start: 0, Duration: cfg.Duration}, annotations, waveform)
			if err != nil {
				log.Fatalf("Ошибка подготовки чанка: %v", err)
			}
			samples[i] = sample
		}

		batch, err := tsk.Collate(samples)
		if err != nil {
			log.Fatalf("Ошибка сборки батча: %v", err)
		}

		loss, err := tsk.TrainingStep(batch)
		if err != nil {
			log.Fatalf("Ошибка шага обучения: %v", err)
		}
		log.Printf("freedom=%.1f -> loss=%.6f", freedom, loss)

		valLoss, err := tsk.ValidationStep(batch)
		if err != nil {
			log.Fatalf("Ошибка валидационного шага: %v", err)
		}
		log.Printf("freedom=%.1f -> val loss=%.6f", freedom, valLoss)
	}
}
