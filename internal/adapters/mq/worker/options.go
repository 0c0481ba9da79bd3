package worker

import (
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/pkg/logger"
)

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithName sets the writer name for identification and logging.
func WithName(name string) Option {
	return func(w *Writer) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the writer.
func WithLogger(logger logger.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRegistry sets the competitor registry used to validate rows.
func WithRegistry(reg model.Registry) Option {
	return func(w *Writer) {
		if reg.Len() > 0 {
			w.registry = reg
		}
	}
}

// WithInitialTable seeds the writer with the loaded history.
func WithInitialTable(t model.Table) Option {
	return func(w *Writer) {
		w.initial = t
	}
}
