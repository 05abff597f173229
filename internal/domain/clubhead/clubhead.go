// Package clubhead estimates club delivery from ball flight. The numbers are
// heuristics tuned for relative comparison, not a model of impact.
package clubhead

import "github.com/okian/fairway/internal/domain/units"

// Assumed smash factor per club category.
var smashFactors = map[string]float64{
	"woods":     1.48,
	"mid_irons": 1.35,
	"wedges":    1.25,
}

// DefaultSmashFactor applies to unknown or missing categories.
const DefaultSmashFactor = 1.4

// Face and path weights on horizontal launch and spin axis.
const (
	faceLaunchWeight = 0.8
	faceAxisWeight   = 0.1
	pathLaunchWeight = 0.5
	pathAxisWeight   = 0.1
)

// Metrics holds the clubhead estimates. A nil field means the inputs it
// depends on were missing.
type Metrics struct {
	ClubSpeed  *float64 `json:"estimated_club_speed_mps"`
	Smash      *float64 `json:"smash_factor"`
	FaceAngle  *float64 `json:"estimated_face_angle_deg"`
	PathAngle  *float64 `json:"estimated_path_angle_deg"`
	FaceToPath *float64 `json:"estimated_face_to_path_deg"`
}

// SmashFactor returns the assumed smash factor for a category.
func SmashFactor(category string) float64 {
	if f, ok := smashFactors[category]; ok {
		return f
	}
	return DefaultSmashFactor
}

// Estimate derives club metrics from ball speed and, when both are known, the
// handedness-normalized horizontal launch and spin axis. A zero ball speed
// yields no speed estimate.
func Estimate(ballSpeed, horizontalLaunch, spinAxis *float64, category string) Metrics {
	var e Metrics

	if ballSpeed != nil && *ballSpeed != 0 {
		clubSpeed := *ballSpeed / SmashFactor(category)
		smash := *ballSpeed / clubSpeed
		e.ClubSpeed = round(clubSpeed)
		e.Smash = round(smash)
	}

	if horizontalLaunch != nil && spinAxis != nil {
		face := *horizontalLaunch*faceLaunchWeight + *spinAxis*faceAxisWeight
		path := *horizontalLaunch*pathLaunchWeight - *spinAxis*pathAxisWeight
		e.FaceAngle = round(face)
		e.PathAngle = round(path)
		e.FaceToPath = round(face - path)
	}

	return e
}

func round(v float64) *float64 {
	r := units.Round2(v)
	return &r
}
