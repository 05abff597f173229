// Package refdata loads the benchmark and coaching tables the analysis engine
// reads. Tables are loaded once per Loader and never change afterwards, so
// any number of goroutines may share the result without locking.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/okian/fairway/internal/domain/benchmark"
	"github.com/okian/fairway/internal/domain/coaching"
	"github.com/okian/fairway/pkg/metrics"
)

//go:embed data/benchmarks.json
var embeddedBenchmarks []byte

//go:embed data/tips.json
var embeddedTips []byte

// Data is the parsed reference set.
type Data struct {
	Benchmarks *benchmark.Table
	Tips       []coaching.Tip
	// Sanitized is true when either source needed cleanup before parsing.
	Sanitized bool
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithBenchmarksPath reads benchmarks from a file instead of the embedded copy.
func WithBenchmarksPath(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.benchmarksPath = path
		}
	}
}

// WithTipsPath reads coaching tips from a file instead of the embedded copy.
func WithTipsPath(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.tipsPath = path
		}
	}
}

// Loader reads the reference set at most once.
type Loader struct {
	benchmarksPath string
	tipsPath       string
	load           func() (*Data, error)
}

// NewLoader creates a loader. Nothing is read until Load is called.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	l.load = sync.OnceValues(l.read)
	return l
}

// Load returns the reference set, reading it on first use. A failed first
// load is remembered and returned to every later caller.
func (l *Loader) Load() (*Data, error) {
	return l.load()
}

var defaultLoader = NewLoader()

// Load returns the embedded reference set.
func Load() (*Data, error) {
	return defaultLoader.Load()
}

func (l *Loader) read() (*Data, error) {
	benchRaw, err := source(l.benchmarksPath, embeddedBenchmarks)
	if err != nil {
		metrics.RecordReferenceDataLoad("benchmarks", false)
		return nil, err
	}
	table, benchSanitized, err := ParseBenchmarks(benchRaw)
	metrics.RecordReferenceDataLoad("benchmarks", err == nil)
	if err != nil {
		return nil, err
	}

	tipsRaw, err := source(l.tipsPath, embeddedTips)
	if err != nil {
		metrics.RecordReferenceDataLoad("tips", false)
		return nil, err
	}
	tips, tipsSanitized, err := ParseTips(tipsRaw)
	metrics.RecordReferenceDataLoad("tips", err == nil)
	if err != nil {
		return nil, err
	}

	if benchSanitized || tipsSanitized {
		metrics.RecordReferenceDataSanitized()
	}
	return &Data{Benchmarks: table, Tips: tips, Sanitized: benchSanitized || tipsSanitized}, nil
}

func source(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return b, nil
}

// ParseBenchmarks sanitizes and parses a benchmarks document.
func ParseBenchmarks(raw []byte) (*benchmark.Table, bool, error) {
	clean, sanitized, err := Sanitize(raw)
	if err != nil {
		return nil, false, fmt.Errorf("benchmarks: %w", err)
	}
	table, err := benchmark.Parse(clean)
	if err != nil {
		return nil, false, fmt.Errorf("%w: benchmarks: %w", ErrMalformed, err)
	}
	return table, sanitized, nil
}

// ParseTips sanitizes and parses a tips document of the form {"tips": [...]}.
func ParseTips(raw []byte) ([]coaching.Tip, bool, error) {
	clean, sanitized, err := Sanitize(raw)
	if err != nil {
		return nil, false, fmt.Errorf("tips: %w", err)
	}
	var doc struct {
		Tips []coaching.Tip `json:"tips"`
	}
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, false, fmt.Errorf("%w: tips: %w", ErrMalformed, err)
	}
	return doc.Tips, sanitized, nil
}
