// Package repository stores recent shot analyses.
package repository

import (
	"context"
	"time"

	"github.com/okian/fairway/internal/domain/analysis"
)

// Record is one stored analysis.
type Record struct {
	ID       string          `json:"id"`
	StoredAt time.Time       `json:"stored_at"`
	Result   analysis.Result `json:"result"`
}

// Entry is a Record ranked by carry distance.
type Entry struct {
	Rank  int     `json:"rank"`
	Carry float64 `json:"carry_distance_m"`
	Record
}

// Stats summarises the stored shots. Carry figures cover only shots with a
// trajectory.
type Stats struct {
	Count         int            `json:"count"`
	WithCarry     int            `json:"with_carry"`
	MeanCarry     float64        `json:"mean_carry_m"`
	StdDevCarry   float64        `json:"stddev_carry_m"`
	MedianCarry   float64        `json:"median_carry_m"`
	LongestCarry  float64        `json:"longest_carry_m"`
	MeanBallSpeed float64        `json:"mean_ball_speed_mps"`
	Shapes        map[string]int `json:"shapes"`
	Categories    map[string]int `json:"club_categories"`
}

// Store provides read/write access to the shot history.
type Store interface {
	// Add stores an analysis under id, replacing any earlier one.
	Add(ctx context.Context, id string, res analysis.Result) error

	// Latest returns the most recently added record, ErrNotFound when empty.
	Latest(ctx context.Context) (Record, error)

	// Get returns the record for id, ErrNotFound when unknown.
	Get(ctx context.Context, id string) (Record, error)

	// TopN returns up to n shots ordered by carry distance desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	Count(ctx context.Context) int

	Stats(ctx context.Context) Stats
}
