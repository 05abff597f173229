// Package analysis turns one launch-monitor measurement into a full shot
// analysis. It is the only package that knows every engine component.
//
// Order of work:
//
//  1. mirror horizontal launch and spin axis into the right-handed frame
//  2. classify the shape and simulate the flight from the mirrored values
//  3. estimate clubhead delivery from the mirrored values
//  4. infer the club category and band the raw values against cohorts
//  5. pick coaching by shape and the golfer's own handedness
//
// An analysis never fails. Sections whose inputs are missing are null.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/fairway/internal/domain/benchmark"
	"github.com/okian/fairway/internal/domain/clubhead"
	"github.com/okian/fairway/internal/domain/coaching"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/shape"
	"github.com/okian/fairway/internal/domain/trajectory"
)

// Version is reported in every result's metadata.
const Version = "0.1.0"

// Input is one analysis request.
type Input struct {
	Measurement model.ShotMeasurement
	// Handedness is the raw flag from the caller; empty means the engine default.
	Handedness string
}

// Engine analyses shots. Implementations must be safe for concurrent use and
// must produce identical results for identical inputs, apart from the
// timestamp of shots that carry none.
type Engine interface {
	Analyze(ctx context.Context, in Input) Result
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithClassifier replaces the default shape classifier.
func WithClassifier(c *shape.Classifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithSimulator replaces the default flight simulator.
func WithSimulator(s *trajectory.Simulator) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.simulator = s
		}
	}
}

// WithDefaultHandedness sets the handedness used when a shot carries none.
func WithDefaultHandedness(h shape.Handedness) Option {
	return func(a *Analyzer) {
		if h == shape.RightHanded || h == shape.LeftHanded {
			a.defaultHandedness = h
		}
	}
}

// WithClock sets the time source for shots without a capture timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// Analyzer is the reference Engine.
type Analyzer struct {
	table             *benchmark.Table
	tips              []coaching.Tip
	classifier        *shape.Classifier
	simulator         *trajectory.Simulator
	defaultHandedness shape.Handedness
	now               func() time.Time
}

var _ Engine = (*Analyzer)(nil)

// New creates an Analyzer over read-only reference tables. A nil table
// behaves like an empty one.
func New(table *benchmark.Table, tips []coaching.Tip, opts ...Option) *Analyzer {
	if table == nil {
		table = &benchmark.Table{}
	}
	a := &Analyzer{
		table:             table,
		tips:              tips,
		classifier:        shape.NewClassifier(),
		simulator:         trajectory.NewSimulator(),
		defaultHandedness: shape.RightHanded,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline on one measurement.
func (a *Analyzer) Analyze(_ context.Context, in Input) Result {
	m := in.Measurement
	hand := a.defaultHandedness
	if in.Handedness != "" {
		hand = shape.ParseHandedness(in.Handedness)
	}

	hla, axis := shape.Normalize(m.HorizontalLaunch, m.SpinAxis, hand)

	res := Result{
		Measured: Measured{
			BallSpeed:             m.BallSpeed,
			VerticalLaunchAngle:   m.VerticalLaunchAngle,
			HorizontalLaunchAngle: m.HorizontalLaunch,
			Spin:                  m.TotalSpin,
			SpinAxis:              m.SpinAxis,
		},
		Derived:  a.derive(m, hla, axis),
		Inferred: Inferred{Handedness: string(hand)},
		Coaching: coaching.Empty(),
		Metadata: Metadata{TimestampUTC: a.timestamp(m), Version: Version},
	}

	if hla != nil && axis != nil {
		c := a.classifier.Classify(*hla, *axis)
		shapeName := string(c.Shape)
		severity := string(c.Severity)
		if c.Severity == shape.SeverityStraight {
			severity = string(shape.SeverityMild)
		}
		res.Inferred.ShotShape = &shapeName
		res.Inferred.Severity = &severity
		res.Coaching = coaching.Select(a.tips, shapeName, string(hand))
	}

	// Category and banding use raw values: none of them depend on handedness.
	vals := benchmark.ValuesOf(m)
	category, ok := a.table.InferCategory(vals)
	if ok {
		res.Inferred.ClubCategory = &category
	}
	res.Inferred.Metrics = clubhead.Estimate(m.BallSpeed, hla, axis, category)
	res.Benchmarks = a.table.Compare(vals, category)

	return res
}

func (a *Analyzer) derive(m model.ShotMeasurement, hla, axis *float64) Derived {
	if !m.Complete() {
		return Derived{TrajectoryNotes: []string{NoteMissingInputs}}
	}
	points := a.simulator.Simulate(trajectory.Launch{
		BallSpeed:           *m.BallSpeed,
		VerticalLaunchAngle: *m.VerticalLaunchAngle,
		HorizontalLaunch:    *hla,
		SpinRPM:             *m.TotalSpin,
		SpinAxis:            *axis,
	})
	return Derived{Trajectory: trajectory.Analyze(points), TrajectoryNotes: []string{}}
}

func (a *Analyzer) timestamp(m model.ShotMeasurement) string {
	t := m.CapturedAt
	if t.IsZero() {
		t = a.now()
	}
	return FormatTimestamp(t)
}

// FormatTimestamp renders t as an ISO 8601 UTC time with a "+00:00" offset
// and microseconds, omitting the fraction when it is zero. Microseconds come
// from the float seconds since the epoch, rounded half to even, so device
// timestamps render the same as the host integration shows them.
func FormatTimestamp(t time.Time) string {
	secs, frac := math.Modf(float64(t.UnixNano()) / 1e9)
	us := int64(math.RoundToEven(frac * 1e6))
	if us < 0 {
		secs--
		us += 1_000_000
	}
	if us >= 1_000_000 {
		secs++
		us -= 1_000_000
	}

	base := time.Unix(int64(secs), 0).UTC().Format("2006-01-02T15:04:05")
	if us == 0 {
		return base + "+00:00"
	}
	return fmt.Sprintf("%s.%06d+00:00", base, us)
}
