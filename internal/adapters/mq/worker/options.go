package worker

import (
	"sync/atomic"

	"github.com/okian/fairway/pkg/logger"
)

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker in its log lines.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the worker's logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withActiveCounter makes workers of one pool report a shared in-flight count.
func withActiveCounter(active *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		if active != nil {
			w.active = active
		}
	}
}
