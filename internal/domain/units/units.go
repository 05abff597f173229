// Package units holds the unit conversions used across the analysis engine.
package units

import (
	"math"
	"strconv"
)

// Conversion factors.
const (
	MPSToMPH     = 2.2369362920544
	MPHToMPS     = 1.0 / MPSToMPH
	MetresToYard = 1.0 / 0.9144
	secPerMinute = 60.0
)

// MPSToMPHSpeed converts metres per second to miles per hour.
func MPSToMPHSpeed(mps float64) float64 { return mps * MPSToMPH }

// MPHToMPSSpeed converts miles per hour to metres per second.
func MPHToMPSSpeed(mph float64) float64 { return mph * MPHToMPS }

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// RPMToRadPerSec converts revolutions per minute to angular speed.
func RPMToRadPerSec(rpm float64) float64 { return rpm / secPerMinute * 2 * math.Pi }

// MetresToYards converts a distance in metres to yards.
func MetresToYards(m float64) float64 { return m * MetresToYard }

// Round2 rounds the exact binary value to two decimals, ties to even, so
// 0.625 becomes 0.62. Negative zero is folded to zero so it never
// serializes as "-0".
func Round2(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if r == 0 {
		return 0
	}
	return r
}
