package task

import "log"

// LogSink пишет именованные скаляры в стандартный лог
type LogSink struct {
	Prefix string
}

func (s LogSink) Log(name string, value float64) {
	log.Printf("%s%s = %.6f", s.Prefix, name, value)
}

// NopSink отбрасывает все значения
type NopSink struct{}

func (NopSink) Log(string, float64) {}
