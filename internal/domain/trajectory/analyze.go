package trajectory

import (
	"math"

	"github.com/okian/fairway/internal/domain/units"
)

// Roll model constants.
const (
	rollFraction       = 0.08
	rollMinFactor      = 0.2
	rollDescentRefDeg  = 60.0
	minHorizontalSpeed = 0.01 // m/s, keeps the descent angle finite
)

// Summary is the reduction of a flight to the values a golfer cares about.
// Distances are metres, times seconds, angles degrees, all rounded to two
// decimals.
type Summary struct {
	CarryDistance   float64 `json:"carry_distance_m"`
	TotalDistance   float64 `json:"total_distance_m"`
	OfflineDistance float64 `json:"offline_distance_m"`
	ApexHeight      float64 `json:"apex_height_m"`
	HangTime        float64 `json:"hang_time_s"`
	DescentAngle    float64 `json:"descent_angle_deg"`
}

// Analyze reduces a point sequence to a Summary. It returns nil for an
// empty sequence and for a degenerate one that never left the launch point.
func Analyze(points []Point) *Summary {
	if len(points) < 2 {
		return nil
	}

	apex := math.Inf(-1)
	for _, p := range points {
		apex = math.Max(apex, p.Position.Z)
	}

	landing := points[len(points)-1]
	carry := math.Max(landing.Position.X, 0)
	offline := landing.Position.Y

	horizontal := math.Max(landing.Velocity.HorizontalMagnitude(), minHorizontalSpeed)
	descent := units.RadToDeg(math.Atan2(-landing.Velocity.Z, horizontal))

	rollFactor := math.Max(rollMinFactor, 1-math.Abs(descent)/rollDescentRefDeg)
	roll := math.Max(0, carry*rollFraction*rollFactor)

	return &Summary{
		CarryDistance:   units.Round2(carry),
		TotalDistance:   units.Round2(carry + roll),
		OfflineDistance: units.Round2(offline),
		ApexHeight:      units.Round2(apex),
		HangTime:        units.Round2(landing.Time),
		DescentAngle:    units.Round2(descent),
	}
}
