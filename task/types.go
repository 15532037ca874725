// Package task реализует подготовку обучающих целей и расчёт потерь
// для направляемой (guided) диаризации спикеров: дискретизацию аннотаций,
// ограничение бюджета спикеров, сэмплирование подсказок и двойную
// функцию потерь (сегментация + подсказка)
package task

// Scope определяет пространство идентичностей меток спикеров
type Scope int

const (
	ScopeFile     Scope = iota // Метки уникальны в пределах файла
	ScopeDatabase              // Метки уникальны в пределах базы
	ScopeGlobal                // Метки глобально уникальны
)

func (s Scope) String() string {
	switch s {
	case ScopeFile:
		return "file"
	case ScopeDatabase:
		return "database"
	case ScopeGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Annotation один речевой фрагмент одного спикера в одном файле
type Annotation struct {
	Start float64 // Время начала в секундах
	End   float64 // Время окончания в секундах
	Label string  // Метка спикера в пространстве Scope
	Scope Scope   // Пространство идентичностей метки
}

// Chunk окно фиксированной длительности внутри одного файла
type Chunk struct {
	Start    float64 // Время начала в секундах
	Duration float64 // Длительность в секундах
}

// End возвращает время окончания чанка
func (c Chunk) End() float64 { return c.Start + c.Duration }

// ChunkTarget дискретизированная многометочная цель одного чанка.
// Y имеет NumFrames строк; число столбцов равно числу уникальных меток,
// пересекающихся с чанком (может быть и больше, и меньше бюджета спикеров —
// усечение здесь не выполняется)
type ChunkTarget struct {
	Y      [][]float64 // [frame][label] активность 0/1
	Labels []string    // Метки в порядке столбцов Y
}

// SampleMeta метаданные одного сэмпла
type SampleMeta struct {
	FileID   int    // Индекс файла в источнике данных
	Database string // Имя базы (опционально)
	Scope    Scope  // Пространство меток файла
}

// Sample один подготовленный обучающий пример
type Sample struct {
	Waveform []float32 // Аудио чанка (заполняется источником данных)
	Target   ChunkTarget
	Meta     SampleMeta
}

// Batch собранный батч. Ширина Y и Guide всегда равна бюджету спикеров
type Batch struct {
	Waveforms [][]float32   // [sample][sample_idx]
	Y         [][][]float64 // [sample][frame][slot] активность 0/1
	Guide     [][][]float64 // [sample][frame][slot] значения {-1, 0, +1}
	Meta      []SampleMeta
}

// PowersetCodec кодек между multilabel-пространством и powerset-пространством
// ("не более K одновременных спикеров из N"). Должен быть биекцией на
// допустимом подмножестве powerset-пространства
type PowersetCodec interface {
	// ToMultilabel декодирует предсказание (frames × classes) в бинарную
	// активность спикеров (frames × speakers)
	ToMultilabel(prediction [][]float64) [][]float64
	// ToPowerset кодирует активность спикеров в one-hot по классам
	ToPowerset(multilabel [][]float64) [][]float64
	// NumClasses число powerset-классов
	NumClasses() int
}

// Permutator решает задачу оптимального сопоставления столбцов:
// возвращает перестановку столбцов candidate, минимизирующую расстояние
// до reference (опционально взвешенное по фреймам), и саму перестановку
type Permutator interface {
	Permutate(reference, candidate [][]float64, weight []float64) ([][]float64, []int)
}

// Model прямой проход модели сегментации: принимает батч аудио и
// опциональную подсказку, возвращает лог-вероятности в powerset-пространстве
// (frames × classes) для каждого сэмпла
type Model interface {
	Forward(waveforms [][]float32, guide [][][]float64) ([][][]float64, error)
}

// Sink приёмник именованных скалярных метрик (лосс-логирование)
type Sink interface {
	Log(name string, value float64)
}

// Metric внешняя валидационная метрика
type Metric interface {
	Update(prediction, target [][]float64)
}
