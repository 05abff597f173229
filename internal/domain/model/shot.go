// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ShotMeasurement is one launch-monitor reading. Every field is optional;
// a nil pointer means the device did not report it.
type ShotMeasurement struct {
	BallSpeed           *float64  // m/s
	VerticalLaunchAngle *float64  // degrees
	HorizontalLaunch    *float64  // degrees, positive = right for a right-hander
	TotalSpin           *float64  // rpm
	SpinAxis            *float64  // degrees, positive = fade/slice for a right-hander
	CapturedAt          time.Time // zero when the device sent no timestamp
}

// Complete reports whether every field needed for a flight simulation is present.
func (m ShotMeasurement) Complete() bool {
	return m.BallSpeed != nil && m.VerticalLaunchAngle != nil && m.HorizontalLaunch != nil &&
		m.TotalSpin != nil && m.SpinAxis != nil
}

// ShotMessage is the device-layer record for one shot. Field names mirror
// the launch monitor's JSON.
type ShotMessage struct {
	ShotNumber          *int64   `json:"shot_number,omitempty"`
	TimestampNS         *int64   `json:"timestamp_ns,omitempty"`
	BallSpeed           *float64 `json:"ball_speed_meters_per_second,omitempty"`
	VerticalLaunchAngle *float64 `json:"vertical_launch_angle_degrees,omitempty"`
	HorizontalLaunch    *float64 `json:"horizontal_launch_angle_degrees,omitempty"`
	TotalSpin           *float64 `json:"total_spin_rpm,omitempty"`
	SpinAxis            *float64 `json:"spin_axis_degrees,omitempty"`
	Handedness          string   `json:"handedness,omitempty"`
}

// Measurement converts the device record into a ShotMeasurement.
func (s ShotMessage) Measurement() ShotMeasurement {
	m := ShotMeasurement{
		BallSpeed:           s.BallSpeed,
		VerticalLaunchAngle: s.VerticalLaunchAngle,
		HorizontalLaunch:    s.HorizontalLaunch,
		TotalSpin:           s.TotalSpin,
		SpinAxis:            s.SpinAxis,
	}
	if s.TimestampNS != nil {
		m.CapturedAt = time.Unix(0, *s.TimestampNS).UTC()
	}
	return m
}

// Key returns the identity of the shot: the shot number if present, then the
// device timestamp, then a random UUID. Only the first two are stable across
// re-deliveries.
func (s ShotMessage) Key() string {
	switch {
	case s.ShotNumber != nil:
		return "shot-" + strconv.FormatInt(*s.ShotNumber, 10)
	case s.TimestampNS != nil:
		return "ts-" + strconv.FormatInt(*s.TimestampNS, 10)
	default:
		return uuid.NewString()
	}
}

// Float returns a pointer to v. Handy for building measurements in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Submission is a shot accepted for asynchronous analysis. ID is fixed at
// acceptance so a generated key survives the trip through the queue.
type Submission struct {
	ID         string
	Shot       ShotMessage
	ReceivedAt time.Time
}
