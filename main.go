package main

import (
	"log"
	"math/rand"

	"diartrain/internal/config"
	"diartrain/permutation"
	"diartrain/powerset"
	"diartrain/task"

	"github.com/google/uuid"
)

// syntheticAnnotations генерирует случайные речевые фрагменты нескольких
// спикеров для демонстрации подготовки целей без реального источника данных
func syntheticAnnotations(numSpeakers int, fileDuration float64, rng *rand.Rand) []task.Annotation {
	labels := []string{"alice", "bob", "carol", "dave", "erin"}
	var annotations []task.Annotation
	for s := 0; s < numSpeakers && s < len(labels); s++ {
		t := rng.Float64() * 2
		for t < fileDuration {
			turn := 0.5 + rng.Float64()*3
			annotations = append(annotations, task.Annotation{
				Start: t,
				End:   t + turn,
				Label: labels[s],
				Scope: task.ScopeFile,
			})
			t += turn + rng.Float64()*4
		}
	}
	return annotations
}

func main() {
	cfg := config.Load()
	runID := uuid.New().String()
	log.Printf("=== Подготовка обучающих целей (run %s) ===", runID)

	taskConfig := task.DefaultTaskConfig()
	taskConfig.Duration = cfg.Duration
	taskConfig.FrameStep = cfg.FrameStep
	taskConfig.MaxSpeakersPerChunk = cfg.MaxSpeakers
	taskConfig.MaxSpeakersPerFrame = cfg.MaxOverlap
	taskConfig.Freedom = cfg.Freedom
	taskConfig.Seed = cfg.Seed

	codec, err := powerset.New(taskConfig.MaxSpeakersPerChunk, taskConfig.MaxSpeakersPerFrame)
	if err != nil {
		log.Fatalf("Ошибка создания powerset-кодека: %v", err)
	}

	// Модель не нужна для подготовки целей, только для шага обучения
	tsk, err := task.NewTask(taskConfig, nil, codec, permutation.Solver{}, task.LogSink{}, nil)
	if err != nil {
		log.Fatalf("Ошибка создания задачи: %v", err)
	}

	log.Printf("Сетка: %d фреймов по %.0f мс, бюджет %d спикеров, %d powerset-классов",
		tsk.Grid().NumFrames, taskConfig.FrameStep*1000,
		taskConfig.MaxSpeakersPerChunk, codec.NumClasses())

	rng := rand.New(rand.NewSource(cfg.Seed))
	fileDuration := 60.0

	samples := make([]task.Sample, cfg.BatchSize)
	for i := range samples {
		annotations := syntheticAnnotations(2+rng.Intn(3), fileDuration, rng)
		chunk := task.Chunk{
			Start:    rng.Float64() * (fileDuration - cfg.Duration),
			Duration: cfg.Duration,
		}
		// Вместо реального аудио - тишина: источник данных вне ядра
		waveform := make([]float32, int(16000*cfg.Duration))
		sample, err := tsk.PrepareChunk(i, chunk, annotations, waveform)
		if err != nil {
			log.Fatalf("Ошибка подготовки чанка: %v", err)
		}
		samples[i] = sample
		log.Printf("Сэмпл %d: чанк [%.2f, %.2f], меток: %d %v",
			i, chunk.Start, chunk.End(), len(sample.Target.Labels), sample.Target.Labels)
	}

	batch, err := tsk.Collate(samples)
	if err != nil {
		log.Fatalf("Ошибка сборки батча: %v", err)
	}

	// Статистика подсказки по батчу
	guidedFrames := 0
	for i := range batch.Guide {
		for f := range batch.Guide[i] {
			for s := range batch.Guide[i][f] {
				if batch.Guide[i][f][s] != 0 {
					guidedFrames++
					break
				}
			}
		}
	}
	log.Printf("Батч собран: %d сэмплов × %d фреймов × %d слотов, направляемых фреймов: %d",
		len(batch.Y), tsk.Grid().NumFrames, taskConfig.MaxSpeakersPerChunk, guidedFrames)

	if cfg.ModelPath == "" {
		log.Println("Модель не задана (-model), шаг обучения пропущен")
		return
	}

	model, err := task.NewONNXModel(task.ONNXModelConfig{
		ModelPath:   cfg.ModelPath,
		SampleRate:  16000,
		NumFrames:   tsk.Grid().NumFrames,
		NumClasses:  codec.NumClasses(),
		NumSpeakers: taskConfig.MaxSpeakersPerChunk,
		WithGuide:   true,
	})
	if err != nil {
		log.Fatalf("Ошибка загрузки модели: %v", err)
	}
	defer model.Close()

	tsk, err = task.NewTask(taskConfig, model, codec, permutation.Solver{}, task.LogSink{}, nil)
	if err != nil {
		log.Fatalf("Ошибка создания задачи: %v", err)
	}

	for step := 0; step < cfg.Steps; step++ {
		loss, err := tsk.TrainingStep(batch)
		if err != nil {
			log.Fatalf("Ошибка шага обучения: %v", err)
		}
		log.Printf("Шаг %d: loss = %.6f", step, loss)
	}
}
