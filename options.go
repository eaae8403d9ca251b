package nbbook

import (
	"log/slog"

	"github.com/alnah/go-nbbook/internal/logfields"
)

// CombineOption configures CombineNotebooks.
type CombineOption interface {
	applyCombine(*combineConfig)
}

// ExporterOption configures an Exporter.
type ExporterOption interface {
	applyExporter(*Exporter)
}

// SharedOption applies to both CombineNotebooks and NewExporter.
type SharedOption interface {
	CombineOption
	ExporterOption
}

type exporterOptionFunc func(*Exporter)

func (f exporterOptionFunc) applyExporter(e *Exporter) { f(e) }

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) applyCombine(c *combineConfig) { c.logger = o.logger }
func (o loggerOption) applyExporter(e *Exporter)     { e.logger = o.logger }

// WithLogger sets the logger. A nil logger discards records.
func WithLogger(l *slog.Logger) SharedOption {
	if l == nil {
		l = logfields.Discard()
	}
	return loggerOption{logger: l}
}
