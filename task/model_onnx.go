package task

import (
	"fmt"
	"log"
	"math"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	onnxInitialized bool
	onnxInitMu      sync.Mutex
)

// initONNXRuntime инициализирует ONNX Runtime (один раз на процесс)
func initONNXRuntime() error {
	onnxInitMu.Lock()
	defer onnxInitMu.Unlock()

	if onnxInitialized {
		return nil
	}

	// Путь к библиотеке можно задать через переменную окружения
	libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")

	if libPath == "" {
		searchPaths := []string{
			"./libonnxruntime.so",
			"./libonnxruntime.dylib",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.dylib",
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				libPath = path
				break
			}
		}
	}

	if libPath != "" {
		log.Printf("Using ONNX Runtime library: %s", libPath)
		ort.SetSharedLibraryPath(libPath)
	} else {
		return fmt.Errorf("ONNX Runtime library not found")
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return err
	}

	onnxInitialized = true
	log.Println("ONNX Runtime initialized successfully")
	return nil
}

// ONNXModelConfig конфигурация ONNX-модели сегментации
type ONNXModelConfig struct {
	ModelPath   string
	SampleRate  int
	NumFrames   int  // Число фреймов на выходе модели
	NumClasses  int  // Число powerset-классов на выходе
	NumSpeakers int  // Ширина входа-подсказки (бюджет спикеров)
	WithGuide   bool // Модель принимает второй вход с подсказкой
}

// DefaultONNXModelConfig возвращает стандартную конфигурацию
func DefaultONNXModelConfig(modelPath string) ONNXModelConfig {
	return ONNXModelConfig{
		ModelPath:  modelPath,
		SampleRate: 16000,
		WithGuide:  true,
	}
}

// ONNXModel выполняет прямой проход модели сегментации через ONNX Runtime.
// Вход: [batch, 1, samples] аудио и опционально [batch, frames, speakers]
// подсказка; выход приводится к лог-вероятностям log-softmax по классам
type ONNXModel struct {
	config      ONNXModelConfig
	session     *ort.DynamicAdvancedSession
	mu          sync.Mutex
	initialized bool
}

// NewONNXModel создаёт модель
func NewONNXModel(config ONNXModelConfig) (*ONNXModel, error) {
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", config.ModelPath)
	}
	if config.NumFrames < 1 || config.NumClasses < 1 {
		return nil, fmt.Errorf("model output shape %dx%d is invalid", config.NumFrames, config.NumClasses)
	}

	if err := initONNXRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	m := &ONNXModel{config: config}
	if err := m.loadModel(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ONNXModel) loadModel() error {
	inputInfo, outputInfo, err := ort.GetInputOutputInfo(m.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to get model info: %w", err)
	}

	inputNames := make([]string, len(inputInfo))
	for i, info := range inputInfo {
		inputNames[i] = info.Name
	}
	outputNames := make([]string, len(outputInfo))
	for i, info := range outputInfo {
		outputNames[i] = info.Name
	}

	log.Printf("ONNXModel inputs: %v, outputs: %v", inputNames, outputNames)

	if m.config.WithGuide && len(inputNames) < 2 {
		return fmt.Errorf("model has %d inputs, guide input expected", len(inputNames))
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		m.config.ModelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	m.session = session
	m.initialized = true
	return nil
}

// Forward выполняет прямой проход. guide может быть nil (режим без подсказки)
func (m *ONNXModel) Forward(waveforms [][]float32, guide [][][]float64) ([][][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("model not initialized")
	}
	if len(waveforms) == 0 {
		return nil, fmt.Errorf("empty waveform batch")
	}

	batchSize := len(waveforms)
	numSamples := len(waveforms[0])
	for i, w := range waveforms {
		if len(w) != numSamples {
			return nil, fmt.Errorf("waveform %d has %d samples, expected %d", i, len(w), numSamples)
		}
	}

	// Аудио: [batch, 1, samples]
	flatAudio := make([]float32, batchSize*numSamples)
	for b, w := range waveforms {
		copy(flatAudio[b*numSamples:], w)
	}
	audioTensor, err := ort.NewTensor(ort.NewShape(int64(batchSize), 1, int64(numSamples)), flatAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio tensor: %w", err)
	}
	defer audioTensor.Destroy()

	inputs := []ort.Value{audioTensor}

	// Подсказка: [batch, frames, speakers]. Нулевая, если подсказки нет
	if m.config.WithGuide {
		flatGuide := make([]float32, batchSize*m.config.NumFrames*m.config.NumSpeakers)
		if guide != nil {
			if len(guide) != batchSize {
				return nil, fmt.Errorf("guide batch size %d does not match %d waveforms", len(guide), batchSize)
			}
			for b := range guide {
				for f := range guide[b] {
					for s := range guide[b][f] {
						flatGuide[(b*m.config.NumFrames+f)*m.config.NumSpeakers+s] = float32(guide[b][f][s])
					}
				}
			}
		}
		guideTensor, err := ort.NewTensor(
			ort.NewShape(int64(batchSize), int64(m.config.NumFrames), int64(m.config.NumSpeakers)),
			flatGuide,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create guide tensor: %w", err)
		}
		defer guideTensor.Destroy()
		inputs = append(inputs, guideTensor)
	}

	outputs := []ort.Value{nil}
	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	outputTensor := outputs[0].(*ort.Tensor[float32])
	data := outputTensor.GetData()

	expected := batchSize * m.config.NumFrames * m.config.NumClasses
	if len(data) != expected {
		return nil, fmt.Errorf("model output has %d values, expected %d", len(data), expected)
	}

	// Разбираем [batch, frames, classes] и приводим к лог-вероятностям
	predictions := make([][][]float64, batchSize)
	for b := 0; b < batchSize; b++ {
		predictions[b] = make([][]float64, m.config.NumFrames)
		for f := 0; f < m.config.NumFrames; f++ {
			row := make([]float64, m.config.NumClasses)
			base := (b*m.config.NumFrames + f) * m.config.NumClasses
			for c := 0; c < m.config.NumClasses; c++ {
				row[c] = float64(data[base+c])
			}
			predictions[b][f] = logSoftmax(row)
		}
	}
	return predictions, nil
}

// Close освобождает ONNX-сессию
func (m *ONNXModel) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	m.initialized = false
}

// logSoftmax численно устойчивый log-softmax по одной строке
func logSoftmax(row []float64) []float64 {
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(v - max)
	}
	logSum := max + math.Log(sum)

	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = v - logSum
	}
	return out
}
