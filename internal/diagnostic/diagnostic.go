// Package diagnostic provides core.Sink implementations: an in-memory
// collector for per-file results and a slog-backed sink for the console.
package diagnostic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Collector accumulates warnings in emission order. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	warnings []core.Warning
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Warn appends w.
func (c *Collector) Warn(w core.Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Warnings returns a copy of the collected warnings.
func (c *Collector) Warnings() []core.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len returns the number of collected warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// Count returns the number of collected warnings with the given code.
func (c *Collector) Count(code core.WarningCode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

// LogSink writes warnings to a structured logger at warn level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger (nil uses a discard logger).
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

// Warn logs w.
func (s *LogSink) Warn(w core.Warning) {
	attrs := []slog.Attr{
		slog.String("file", w.File),
		slog.String("code", string(w.Code)),
	}
	if w.Line > 0 {
		attrs = append(attrs, slog.Int("line", w.Line))
	}
	if w.Field != "" {
		attrs = append(attrs, slog.String("field", w.Field))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, w.Message, attrs...)
}

// Tee fans a warning out to every non-nil sink.
func Tee(sinks ...core.Sink) core.Sink {
	live := make([]core.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return core.SinkFunc(func(w core.Warning) {
		for _, s := range live {
			s.Warn(w)
		}
	})
}

// Discard is a sink that drops every warning.
var Discard core.Sink = core.SinkFunc(func(core.Warning) {})
