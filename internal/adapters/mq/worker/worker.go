// Package worker drains the shot queue, analyses each shot and stores the
// result.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Store records finished analyses.
type Store interface {
	Add(ctx context.Context, id string, res analysis.Result) error
}

// Queue defines how workers receive shots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Shot
}

// Worker processes shots until its queue closes or it is told to stop.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	engine analysis.Engine
	store  Store
	name   string
	active *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, engine analysis.Engine, store Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		engine:   engine,
		store:    store,
		name:     "worker",
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes shots until ctx is done, Shutdown is called or the queue
// closes. A shot that has been picked up is always finished.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	shots := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-shots:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing shot", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current shot.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, s queue.Shot) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
	}()

	res := w.engine.Analyze(ctx, analysis.Input{
		Measurement: s.Shot.Measurement(),
		Handedness:  s.Shot.Handedness,
	})

	log := w.logger.With(logger.String("shot_id", s.ID))
	if n := len(res.Derived.TrajectoryNotes); n > 0 {
		log.Debug(ctx, "trajectory skipped or partial", logger.Int("notes", n))
	}

	// Storing is not cancellable: the analysis already happened.
	if err := w.store.Add(context.WithoutCancel(ctx), s.ID, res); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("store shot %s: %w", s.ID, err)
	}

	log.Debug(ctx, "shot analysed", logger.Any("shape", res.Inferred.ShotShape))
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, engine analysis.Engine, store Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	active := &atomic.Int64{}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i)), withActiveCounter(active)}, opts...)
		p.workers[i] = NewInMemoryWorker(q, engine, store, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue so workers drain what is left, then waits for
// them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	return nil
}
