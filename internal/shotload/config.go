// Package shotload drives a running shot service with synthetic launch
// monitor shots and checks what comes back.
package shotload

import (
	"time"

	"github.com/okian/fairway/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumShots    int           // Number of shots to generate
	FirstShot   int64         // Shot number of the first generated shot
	Resend      float64       // Fraction of shots sent a second time
	TopN        int           // Number of top entries to fetch
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // How long to wait for the history to catch up
	Seed        uint64        // Generator seed; the same seed yields the same shots
	OutputFile  string        // Optional file the generated shots are written to
	Verbose     bool
}

// Shot is one generated shot and the club profile it was drawn from.
type Shot struct {
	Club string
	Msg  model.ShotMessage
}

// Entry is one row of GET /shots/top.
type Entry struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"id"`
	Carry float64 `json:"carry_distance_m"`
}

// AckResponse is the body of POST /shots.
type AckResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	ShotsGenerated int
	ShotsSubmitted int
	ShotsAccepted  int
	ShotsDuplicate int
	ShotsRejected  int
	ShotsFailed    int
	HistoryCount   int
	TopEntries     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
