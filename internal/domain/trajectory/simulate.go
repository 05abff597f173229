// Package trajectory integrates a simplified ball flight and reduces it to
// summary metrics.
//
// The model is deliberately low fidelity: constant gravity, quadratic drag
// and a spin-proportional lift term, integrated with forward Euler. Its job
// is consistent relative comparison between shots, not ballistic accuracy.
package trajectory

import (
	"math"

	"github.com/okian/fairway/internal/domain/units"
	"github.com/okian/fairway/internal/domain/vector"
)

// Flight model constants.
const (
	Gravity         = 9.80665 // m/s²
	DragCoefficient = 0.0025
	LiftCoefficient = 0.0006
	MaxLift         = 20.0 // m/s², applied to both signs

	DefaultTimeStep = 0.02 // s
	DefaultMaxTime  = 10.0 // s

	// groundFloor bounds how far below ground a single step may overshoot.
	groundFloor = -0.5
)

// Point is one integration sample.
type Point struct {
	Time     float64     // seconds since launch
	Position vector.Vec3 // metres
	Velocity vector.Vec3 // metres per second
}

// Launch holds the launch conditions. Angles must already be in the
// right-handed reference frame.
type Launch struct {
	BallSpeed           float64 // m/s
	VerticalLaunchAngle float64 // degrees
	HorizontalLaunch    float64 // degrees, + right of target
	SpinRPM             float64
	SpinAxis            float64 // degrees, + curves right
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithTimeStep sets the integration step in seconds.
func WithTimeStep(dt float64) Option {
	return func(s *Simulator) {
		if dt > 0 {
			s.timeStep = dt
		}
	}
}

// WithMaxTime caps the simulated flight time in seconds.
func WithMaxTime(limit float64) Option {
	return func(s *Simulator) {
		if limit > 0 {
			s.maxTime = limit
		}
	}
}

// Simulator integrates launch conditions into a point sequence. It holds no
// mutable state and is safe for concurrent use.
type Simulator struct {
	timeStep float64
	maxTime  float64
}

// NewSimulator creates a simulator with the default step and time cap.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		timeStep: DefaultTimeStep,
		maxTime:  DefaultMaxTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// initialVelocity decomposes ball speed along the two launch angles.
func initialVelocity(speed, vlaDeg, hlaDeg float64) vector.Vec3 {
	vla := units.DegToRad(vlaDeg)
	hla := units.DegToRad(hlaDeg)
	horizontal := speed * math.Cos(vla)
	return vector.New(
		horizontal*math.Cos(hla),
		horizontal*math.Sin(hla),
		speed*math.Sin(vla),
	)
}

// Simulate runs the flight until the ball lands, stops or the time cap is
// reached. A launch with no speed yields exactly one point. Identical
// launches always produce identical sequences.
func (s *Simulator) Simulate(l Launch) []Point {
	velocity := initialVelocity(l.BallSpeed, l.VerticalLaunchAngle, l.HorizontalLaunch)
	position := vector.Vec3{}
	spin := units.RPMToRadPerSec(l.SpinRPM)
	axis := units.DegToRad(l.SpinAxis)
	sinAxis, cosAxis := math.Sin(axis), math.Cos(axis)

	points := make([]Point, 0, int(s.maxTime/s.timeStep)+1)
	t := 0.0
	for t <= s.maxTime {
		points = append(points, Point{Time: t, Position: position, Velocity: velocity})

		if t > 0 && position.Z <= 0 {
			break
		}

		speed := velocity.Magnitude()
		if speed <= 0 {
			break
		}

		drag := velocity.Normalize().Scale(-DragCoefficient * speed * speed)

		lift := LiftCoefficient * spin * speed
		lift = math.Max(math.Min(lift, MaxLift), -MaxLift)
		liftVec := vector.New(0, lift*sinAxis, lift*cosAxis)

		accel := drag.Add(liftVec).Add(vector.New(0, 0, -Gravity))

		velocity = velocity.Add(accel.Scale(s.timeStep))
		next := position.Add(velocity.Scale(s.timeStep))
		position = vector.New(next.X, next.Y, math.Max(next.Z, groundFloor))

		t += s.timeStep
	}
	return points
}

// Simulate runs the default simulator.
func Simulate(l Launch) []Point {
	return defaultSimulator.Simulate(l)
}

var defaultSimulator = NewSimulator()
