// Package shape classifies a shot by start direction and curvature and owns
// the handedness sign convention.
//
// All classification happens in the right-handed reference frame. A
// left-handed shot is mirrored into that frame once, by Normalize, before it
// reaches Classify.
package shape

import "math"

// Shape names the start-line/curvature combination of a shot.
type Shape string

// Shot shapes.
const (
	Straight  Shape = "Straight"
	Fade      Shape = "Fade"
	Slice     Shape = "Slice"
	Draw      Shape = "Draw"
	Hook      Shape = "Hook"
	Push      Shape = "Push"
	PushFade  Shape = "PushFade"
	PushSlice Shape = "PushSlice"
	PushDraw  Shape = "PushDraw"
	Pull      Shape = "Pull"
	PullDraw  Shape = "PullDraw"
	PullHook  Shape = "PullHook"
	PullFade  Shape = "PullFade"
	PullSlice Shape = "PullSlice"
)

// Severity grades how much a shot curved.
type Severity string

// Severities. SeverityStraight is reserved for the centred, uncurved case.
const (
	SeverityStraight Severity = "straight"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Default thresholds, in degrees.
const (
	DefaultCenterThreshold = 1.0
	DefaultMildThreshold   = 3.0
	DefaultSevereThreshold = 8.0
)

// Classification is the result of Classify.
type Classification struct {
	Shape    Shape
	Severity Severity
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithCenterThreshold sets the start-line band treated as on target.
func WithCenterThreshold(deg float64) Option {
	return func(c *Classifier) {
		if deg > 0 {
			c.center = deg
		}
	}
}

// WithMildThreshold sets the curvature up to which a shot counts as mild.
func WithMildThreshold(deg float64) Option {
	return func(c *Classifier) {
		if deg > 0 {
			c.mild = deg
		}
	}
}

// WithSevereThreshold sets the curvature beyond which a shot is severe.
func WithSevereThreshold(deg float64) Option {
	return func(c *Classifier) {
		if deg > 0 {
			c.severe = deg
		}
	}
}

// Classifier maps start direction and curvature to a shape. It is immutable
// after construction.
type Classifier struct {
	center float64
	mild   float64
	severe float64
}

// NewClassifier creates a classifier with the default thresholds.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		center: DefaultCenterThreshold,
		mild:   DefaultMildThreshold,
		severe: DefaultSevereThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// severity grades curvature magnitude alone, independent of shape.
func (c *Classifier) severity(absCurve float64) Severity {
	switch {
	case absCurve <= c.mild:
		return SeverityMild
	case absCurve <= c.severe:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// Classify grades a shot from its start direction (horizontal launch angle)
// and curvature (spin axis), both in the right-handed frame.
//
// The push branch has no hook counterpart: every leftward curve on a push
// is a PushDraw at the curvature's severity, while the pull branch splits
// rightward curves into PullFade and PullSlice. This matches observed
// device behaviour and is kept as-is.
func (c *Classifier) Classify(start, curvature float64) Classification {
	absStart := math.Abs(start)
	absCurve := math.Abs(curvature)
	sev := c.severity(absCurve)
	curved := absCurve > c.mild
	extreme := absCurve > c.severe

	switch {
	case absStart <= c.center:
		switch {
		case !curved:
			return Classification{Straight, SeverityStraight}
		case curvature > 0 && extreme:
			return Classification{Slice, sev}
		case curvature > 0:
			return Classification{Fade, sev}
		case extreme:
			return Classification{Hook, sev}
		default:
			return Classification{Draw, sev}
		}

	case start > 0:
		switch {
		case !curved:
			return Classification{Push, SeverityMild}
		case curvature > 0 && extreme:
			return Classification{PushSlice, sev}
		case curvature > 0:
			return Classification{PushFade, sev}
		default:
			return Classification{PushDraw, sev}
		}

	default:
		switch {
		case !curved:
			return Classification{Pull, SeverityMild}
		case curvature < 0 && extreme:
			return Classification{PullHook, sev}
		case curvature < 0:
			return Classification{PullDraw, sev}
		case extreme:
			return Classification{PullSlice, sev}
		default:
			return Classification{PullFade, sev}
		}
	}
}

var defaultClassifier = NewClassifier()

// Classify grades a shot with the default thresholds.
func Classify(start, curvature float64) Classification {
	return defaultClassifier.Classify(start, curvature)
}
