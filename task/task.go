package task

import (
	"fmt"
	"math"
	"math/rand"
)

// TaskConfig конфигурация задачи направляемой диаризации
type TaskConfig struct {
	Duration            float64 // Длительность чанка в секундах
	FrameStep           float64 // Шаг фрейма выхода модели в секундах
	MaxSpeakersPerChunk int     // Бюджет слотов спикеров на чанк
	MaxSpeakersPerFrame int     // Максимум одновременно активных спикеров на фрейм
	Freedom             float64 // 0 = строго следовать подсказке, 1 = игнорировать её
	MinGuidedFrames     int     // Минимум фреймов для RandomFrameGuide
	MaxGuidedFrames     int     // Максимум фреймов для RandomFrameGuide
	Seed                int64   // Зерно для воспроизводимости случайных выборов
}

// DefaultTaskConfig возвращает стандартную конфигурацию
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Duration:            10.0,
		FrameStep:           0.02, // 20ms на фрейм -> 500 фреймов на чанк
		MaxSpeakersPerChunk: 3,
		MaxSpeakersPerFrame: 2,
		Freedom:             0.5,
		MinGuidedFrames:     1,
		MaxGuidedFrames:     10,
		Seed:                1,
	}
}

// Validate проверяет конфигурацию. Ошибки конфигурации фатальны
// и не восстанавливаются
func (c TaskConfig) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.FrameStep <= 0 {
		return fmt.Errorf("frame step must be positive, got %g", c.FrameStep)
	}
	if c.MaxSpeakersPerChunk < 1 {
		return fmt.Errorf("max speakers per chunk must be >= 1, got %d", c.MaxSpeakersPerChunk)
	}
	if c.MaxSpeakersPerFrame < 1 || c.MaxSpeakersPerFrame > c.MaxSpeakersPerChunk {
		return fmt.Errorf("max speakers per frame must be in [1, %d], got %d",
			c.MaxSpeakersPerChunk, c.MaxSpeakersPerFrame)
	}
	if c.Freedom < 0 || c.Freedom > 1 {
		return fmt.Errorf("freedom must be in [0, 1], got %g", c.Freedom)
	}
	if c.MinGuidedFrames < 1 || c.MaxGuidedFrames < c.MinGuidedFrames {
		return fmt.Errorf("guided frame range [%d, %d] is invalid",
			c.MinGuidedFrames, c.MaxGuidedFrames)
	}
	return nil
}

// Task готовит обучающие цели и считает потери для одной задачи диаризации.
// Синхронна и не хранит состояния между шагами, кроме явного источника
// случайности для перестановок слотов и выбора стратегии подсказки
type Task struct {
	config     TaskConfig
	grid       FrameGrid
	collator   *Collator
	guidance   *Guidance
	powerset   PowersetCodec
	permutator Permutator
	model      Model
	sink       Sink
	metric     Metric
}

// NewTask создаёт задачу. Конфигурация проверяется сразу (fail fast)
func NewTask(config TaskConfig, model Model, codec PowersetCodec, permutator Permutator, sink Sink, metric Metric) (*Task, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task config: %w", err)
	}
	if codec == nil {
		return nil, fmt.Errorf("powerset codec is required")
	}
	if permutator == nil {
		return nil, fmt.Errorf("permutator is required")
	}
	if sink == nil {
		sink = NopSink{}
	}

	rng := rand.New(rand.NewSource(config.Seed))

	return &Task{
		config: config,
		grid: FrameGrid{
			Step:      config.FrameStep,
			NumFrames: int(math.Ceil(config.Duration / config.FrameStep)),
		},
		collator:   NewCollator(config.MaxSpeakersPerChunk, rng),
		guidance:   DefaultGuidance(config.MinGuidedFrames, config.MaxGuidedFrames, rng),
		powerset:   codec,
		permutator: permutator,
		model:      model,
		sink:       sink,
		metric:     metric,
	}, nil
}

// Config возвращает конфигурацию задачи
func (t *Task) Config() TaskConfig { return t.config }

// Grid возвращает сетку фреймов задачи
func (t *Task) Grid() FrameGrid { return t.grid }

// PrepareChunk готовит один обучающий пример: дискретизирует аннотации,
// пересекающиеся с чанком, на сетке фреймов. Аннотации должны быть заранее
// отфильтрованы по файлу чанка и принадлежать одному пространству меток
func (t *Task) PrepareChunk(fileID int, chunk Chunk, annotations []Annotation, waveform []float32) (Sample, error) {
	if chunk.Duration != t.config.Duration {
		return Sample{}, fmt.Errorf("chunk duration %g does not match task duration %g",
			chunk.Duration, t.config.Duration)
	}

	scope := ScopeFile
	for i, a := range annotations {
		if i == 0 {
			scope = a.Scope
			continue
		}
		if a.Scope != scope {
			return Sample{}, fmt.Errorf("mixed label scopes %s and %s in one file", scope, a.Scope)
		}
	}

	return Sample{
		Waveform: waveform,
		Target:   t.grid.Discretize(chunk, annotations),
		Meta:     SampleMeta{FileID: fileID, Scope: scope},
	}, nil
}

// Collate собирает сэмплы в батч: приводит цели к бюджету спикеров,
// перемешивает слоты, сэмплирует стратегию подсказки на батч и строит
// направляющий тензор. После Collate никакого дополнительного паддинга
// не требуется
func (t *Task) Collate(samples []Sample) (*Batch, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot collate an empty sample list")
	}

	batch := &Batch{
		Waveforms: make([][]float32, len(samples)),
		Y:         make([][][]float64, len(samples)),
		Guide:     make([][][]float64, len(samples)),
		Meta:      make([]SampleMeta, len(samples)),
	}

	for i, s := range samples {
		if len(s.Target.Y) != t.grid.NumFrames {
			return nil, fmt.Errorf("sample %d has %d frames, expected %d",
				i, len(s.Target.Y), t.grid.NumFrames)
		}
		batch.Waveforms[i] = s.Waveform
		batch.Y[i] = t.collator.CollateTarget(s.Target)
		batch.Meta[i] = s.Meta
	}

	mask := t.guidance.SampleMask(len(samples), t.grid.NumFrames)
	for i := range samples {
		batch.Guide[i] = BuildGuide(batch.Y[i], mask[i])
	}

	return batch, nil
}

// checkBatch проверяет согласованность форм батча.
// Несовпадение форм — нарушение контракта, а не восстановимая ошибка
func (t *Task) checkBatch(batch *Batch) error {
	if batch == nil {
		return fmt.Errorf("nil batch")
	}
	if len(batch.Y) != len(batch.Guide) || len(batch.Y) != len(batch.Waveforms) {
		return fmt.Errorf("batch size mismatch: %d targets, %d guides, %d waveforms",
			len(batch.Y), len(batch.Guide), len(batch.Waveforms))
	}
	for i := range batch.Y {
		if len(batch.Y[i]) != len(batch.Guide[i]) {
			return fmt.Errorf("sample %d: %d target frames vs %d guide frames",
				i, len(batch.Y[i]), len(batch.Guide[i]))
		}
		for f := range batch.Y[i] {
			if len(batch.Y[i][f]) != len(batch.Guide[i][f]) {
				return fmt.Errorf("sample %d frame %d: target width %d vs guide width %d",
					i, f, len(batch.Y[i][f]), len(batch.Guide[i][f]))
			}
		}
	}
	return nil
}
