package shape

import "strings"

// Handedness of the golfer.
type Handedness string

// Supported handedness values. Both is only meaningful on coaching tips.
const (
	RightHanded Handedness = "RH"
	LeftHanded  Handedness = "LH"
	Both        Handedness = "BOTH"
)

// ParseHandedness normalizes a user-supplied flag. Anything other than a
// case-insensitive "LH" is treated as right-handed.
func ParseHandedness(s string) Handedness {
	if strings.EqualFold(strings.TrimSpace(s), string(LeftHanded)) {
		return LeftHanded
	}
	return RightHanded
}

// Normalize mirrors direction-sensitive values into the right-handed frame.
// Only horizontal launch angle and spin axis depend on handedness; nil
// inputs stay nil.
func Normalize(horizontalLaunch, spinAxis *float64, h Handedness) (*float64, *float64) {
	if h != LeftHanded {
		return horizontalLaunch, spinAxis
	}
	return negate(horizontalLaunch), negate(spinAxis)
}

func negate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := -*v
	return &n
}
