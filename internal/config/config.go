// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory shot queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the set of remembered shot identities.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize bounds the number of stored analyses.
	HistorySize int `koanf:"history_size"`

	// MaxTopLimit caps GET /shots/top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins"`

	// DefaultHandedness applies to shots that carry no handedness flag.
	DefaultHandedness string `koanf:"default_handedness"`

	// BenchmarksPath and TipsPath override the embedded reference tables.
	BenchmarksPath string `koanf:"benchmarks_path"`
	TipsPath       string `koanf:"tips_path"`

	// Shot shape thresholds in degrees.
	CenterThresholdDeg float64 `koanf:"center_threshold_deg"`
	MildThresholdDeg   float64 `koanf:"mild_threshold_deg"`
	SevereThresholdDeg float64 `koanf:"severe_threshold_deg"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         50_000,
		HistorySize:        1_000,
		MaxTopLimit:        100,
		DefaultHandedness:  "RH",
		CenterThresholdDeg: 1.0,
		MildThresholdDeg:   3.0,
		SevereThresholdDeg: 8.0,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	case c.MaxTopLimit <= 0:
		return fmt.Errorf("%w: max_top_limit must be positive", ErrInvalidConfig)
	}

	switch strings.ToUpper(c.DefaultHandedness) {
	case "RH", "LH":
	default:
		return fmt.Errorf("%w: default_handedness must be RH or LH, got %q", ErrInvalidConfig, c.DefaultHandedness)
	}

	if c.CenterThresholdDeg <= 0 || c.MildThresholdDeg <= 0 || c.SevereThresholdDeg <= 0 {
		return fmt.Errorf("%w: %w: all must be positive", ErrInvalidConfig, ErrShapeThresholds)
	}
	if c.MildThresholdDeg >= c.SevereThresholdDeg {
		return fmt.Errorf("%w: %w: mild_threshold_deg must be below severe_threshold_deg", ErrInvalidConfig, ErrShapeThresholds)
	}
	return nil
}
