package config

import "flag"

type Config struct {
	ModelPath   string
	Duration    float64
	FrameStep   float64
	MaxSpeakers int
	MaxOverlap  int
	Freedom     float64
	Seed        int64
	BatchSize   int
	Steps       int
}

func Load() *Config {
	modelPath := flag.String("model", "", "Path to segmentation ONNX model (optional)")
	duration := flag.Float64("duration", 10.0, "Chunk duration in seconds")
	frameStep := flag.Float64("step", 0.02, "Model output frame step in seconds")
	maxSpeakers := flag.Int("max-speakers", 3, "Speaker budget per chunk")
	maxOverlap := flag.Int("max-overlap", 2, "Maximum simultaneously active speakers per frame")
	freedom := flag.Float64("freedom", 0.5, "Loss blending: 0 = follow guide exactly, 1 = ignore guide")
	seed := flag.Int64("seed", 1, "Random seed")
	batchSize := flag.Int("batch", 8, "Batch size")
	steps := flag.Int("steps", 5, "Number of training steps to run")
	flag.Parse()

	return &Config{
		ModelPath:   *modelPath,
		Duration:    *duration,
		FrameStep:   *frameStep,
		MaxSpeakers: *maxSpeakers,
		MaxOverlap:  *maxOverlap,
		Freedom:     *freedom,
		Seed:        *seed,
		BatchSize:   *batchSize,
		Steps:       *steps,
	}
}
