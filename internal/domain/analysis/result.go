package analysis

import (
	"github.com/okian/fairway/internal/domain/benchmark"
	"github.com/okian/fairway/internal/domain/clubhead"
	"github.com/okian/fairway/internal/domain/coaching"
	"github.com/okian/fairway/internal/domain/trajectory"
)

// NoteMissingInputs marks a result whose trajectory could not be simulated.
const NoteMissingInputs = "missing_inputs"

// Result is the full analysis of one shot. The JSON layout is consumed by
// dashboards that index by key path, so tags must not change.
type Result struct {
	Measured   Measured             `json:"measured"`
	Derived    Derived              `json:"derived"`
	Inferred   Inferred             `json:"inferred"`
	Benchmarks benchmark.Comparison `json:"benchmarks"`
	Coaching   coaching.Guidance    `json:"coaching"`
	Metadata   Metadata             `json:"metadata"`
}

// Measured echoes the raw, unnormalized input.
type Measured struct {
	BallSpeed             *float64 `json:"ball_speed_mps"`
	VerticalLaunchAngle   *float64 `json:"vertical_launch_angle_deg"`
	HorizontalLaunchAngle *float64 `json:"horizontal_launch_angle_deg"`
	Spin                  *float64 `json:"spin_rpm"`
	SpinAxis              *float64 `json:"spin_axis_deg"`
}

// Derived holds simulated flight values.
type Derived struct {
	Trajectory      *trajectory.Summary `json:"trajectory"`
	TrajectoryNotes []string            `json:"trajectory_notes"`
}

// Inferred holds everything the engine guessed about the shot.
type Inferred struct {
	Handedness   string  `json:"handedness"`
	ClubCategory *string `json:"club_category"`
	ShotShape    *string `json:"shot_shape"`
	Severity     *string `json:"severity"`
	clubhead.Metrics
}

// Metadata describes the analysis itself.
type Metadata struct {
	TimestampUTC string `json:"timestamp_utc"`
	Version      string `json:"version"`
}
