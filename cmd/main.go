package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fairway/internal/adapters/http/api"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/internal/domain/shape"
	"github.com/okian/fairway/internal/refdata"
	"github.com/okian/fairway/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: nothing has started yet
	}
	defer svc.Stop()

	srv := newHTTPServer(cfg, svc)

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newService builds the shot service from configuration. Reference table
// paths that are empty fall back to the embedded copies.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	classifier := shape.NewClassifier(
		shape.WithCenterThreshold(cfg.CenterThresholdDeg),
		shape.WithMildThreshold(cfg.MildThresholdDeg),
		shape.WithSevereThreshold(cfg.SevereThresholdDeg),
	)

	return service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithHistorySize(cfg.HistorySize),
		service.WithReferenceLoader(refdata.NewLoader(
			refdata.WithBenchmarksPath(cfg.BenchmarksPath),
			refdata.WithTipsPath(cfg.TipsPath),
		)),
		service.WithAnalysisOptions(
			analysis.WithClassifier(classifier),
			analysis.WithDefaultHandedness(shape.ParseHandedness(cfg.DefaultHandedness)),
		),
	)
}

// newHTTPServer serves the API routes for svc.
func newHTTPServer(cfg *config.Config, svc *service.Service) *http.Server {
	handler := api.NewServer(svc, svc, svc, svc,
		api.WithMaxTopLimit(cfg.MaxTopLimit),
		api.WithCORSOrigins(cfg.CORSOrigins...),
	).Handler()

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
