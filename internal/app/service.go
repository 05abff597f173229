// Package service wires the shot analysis engine to the queue, workers,
// dedupe set and history store, and implements the HTTP API dependencies.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	shotqueue "github.com/okian/fairway/internal/adapters/mq/queue"
	workerpool "github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/refdata"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const (
	defaultQueueSize      = 10_000
	defaultHistorySize    = 1_000
	defaultSampleInterval = 10 * time.Second
	stopTimeout           = 30 * time.Second
)

// Service implements the API dependencies for the shot service.
type Service struct {
	mu sync.RWMutex

	engine  analysis.Engine
	deduper dedupe.Deduper
	queue   *shotqueue.InMemoryQueue
	pool    *workerpool.Pool
	history *repository.HistoryStore

	workerCount    int
	queueSize      int
	dedupeSize     int
	historySize    int
	sampleInterval time.Duration
	loader         *refdata.Loader
	analysisOpts   []analysis.Option

	started bool
	cancel  context.CancelFunc
	sampler sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued shots.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many shot keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize sets how many analyses are kept.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithEngine replaces the reference-data backed engine.
func WithEngine(e analysis.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithReferenceLoader sets where reference tables come from.
func WithReferenceLoader(l *refdata.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithAnalysisOptions passes options to the engine built at Start.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(s *Service) {
		s.analysisOpts = append(s.analysisOpts, opts...)
	}
}

// WithSystemSampleInterval sets how often memory and goroutine gauges are sampled.
func WithSystemSampleInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sampleInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		dedupeSize:     dedupe.DefaultMaxSize,
		historySize:    defaultHistorySize,
		sampleInterval: defaultSampleInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = refdata.NewLoader()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.history = repository.NewHistoryStore(repository.WithCapacity(s.historySize))
	return s
}

// Start loads reference data, builds the engine and starts the workers.
// Unparseable reference data is returned as an error.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting shot service...")

	if s.engine == nil {
		data, err := s.loader.Load()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStart, err)
		}
		s.engine = analysis.New(data.Benchmarks, data.Tips, s.analysisOpts...)
		s.logger.Info(ctx, "reference data loaded",
			logger.Int("categories", len(data.Benchmarks.Categories)),
			logger.Int("tips", len(data.Tips)),
			logger.Bool("sanitized", data.Sanitized),
		)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = shotqueue.NewInMemoryQueue(shotqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, analysis.Instrument(s.engine), s.history)
	s.pool.Start(runCtx)

	s.sampler.Add(1)
	go s.sampleSystem(runCtx)

	s.started = true
	s.logger.Info(ctx, "shot service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("historySize", s.historySize),
	)
	return nil
}

// Stop closes the queue, waits for queued shots to be analysed and stops
// background work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping shot service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.cancel()
	s.sampler.Wait()

	s.started = false
	s.logger.Info(ctx, "shot service stopped")
}

func (s *Service) sampleSystem(ctx context.Context) {
	defer s.sampler.Done()

	ticker := time.NewTicker(s.sampleInterval)
	defer ticker.Stop()

	sample := func() {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		metrics.UpdateSystemMemoryUsage(m.HeapInuse)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	}
	sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

// Analyze runs the engine synchronously without storing the result.
func (s *Service) Analyze(ctx context.Context, in analysis.Input) analysis.Result {
	s.mu.RLock()
	e := s.engine
	s.mu.RUnlock()

	if e == nil {
		// Not started: analyse against empty reference tables.
		e = analysis.New(nil, nil, s.analysisOpts...)
	}
	return analysis.Instrument(e).Analyze(ctx, in)
}

// SeenAndRecord atomically checks if a shot key was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	return s.deduper.SeenAndRecord(ctx, key)
}

// Unrecord forgets a shot key.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the number of remembered shot keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a shot for asynchronous analysis.
func (s *Service) Enqueue(ctx context.Context, shot shotqueue.Shot) error { //nolint:gocritic // hugeParam: passed by value into the queue
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if err := s.queue.Enqueue(ctx, shot); err != nil {
		s.logger.Debug(ctx, "enqueue rejected", logger.String("shot_id", shot.ID), logger.Error(err))
		return fmt.Errorf("enqueue %s: %w", shot.ID, err)
	}
	return nil
}

// Latest returns the most recently stored analysis.
func (s *Service) Latest(ctx context.Context) (repository.Record, error) {
	return s.history.Latest(ctx)
}

// Get returns the stored analysis for a shot id.
func (s *Service) Get(ctx context.Context, id string) (repository.Record, error) {
	return s.history.Get(ctx, id)
}

// TopN returns the longest stored carries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.history.TopN(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"version":        analysis.Version,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"historySize":    s.historySize,
		"trackedShotIDs": s.deduper.Size(),
		"history":        s.history.Stats(ctx),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["workerCount"] = s.pool.Size()
	}
	return stats
}
