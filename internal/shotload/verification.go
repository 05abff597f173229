package shotload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/fairway/pkg/logger"
)

// ErrInconsistent is returned when the service's answers contradict each other.
var ErrInconsistent = errors.New("inconsistent results")

// verifyResults checks the top list is ordered and dense-ranked, and that
// its leader can be fetched by id with the carry the list reported.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, shots []Shot, top []Entry) error {
	if err := verifyTopOrder(top); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(shots))
	for _, s := range shots {
		known[s.Msg.Key()] = struct{}{}
	}
	ours := 0
	for _, e := range top {
		if _, ok := known[e.ID]; ok {
			ours++
		}
	}

	if len(top) > 0 {
		if err := verifyLeader(ctx, client, config.BaseURL, top[0]); err != nil {
			return err
		}
	}

	logger.Get().Info(ctx, "results verified",
		logger.Int("topEntries", len(top)),
		logger.Int("fromThisRun", ours))
	if config.Verbose {
		for _, e := range top[:min(10, len(top))] {
			logger.Get().Info(ctx, "top shot", logger.Int("rank", e.Rank), logger.String("id", e.ID), logger.Float64("carry_m", e.Carry))
		}
	}
	return nil
}

func verifyTopOrder(top []Entry) error {
	for i, e := range top {
		switch {
		case i == 0 && e.Rank != 1:
			return fmt.Errorf("%w: first entry has rank %d", ErrInconsistent, e.Rank)
		case i == 0:
			continue
		case e.Carry > top[i-1].Carry:
			return fmt.Errorf("%w: entry %d carries further than entry %d", ErrInconsistent, i, i-1)
		case e.Carry == top[i-1].Carry && e.Rank != top[i-1].Rank:
			return fmt.Errorf("%w: tied entries %d and %d ranked apart", ErrInconsistent, i-1, i)
		case e.Carry < top[i-1].Carry && e.Rank != top[i-1].Rank+1:
			return fmt.Errorf("%w: entry %d skips a rank", ErrInconsistent, i)
		}
	}
	return nil
}

func verifyLeader(ctx context.Context, client *HTTPClient, baseURL string, leader Entry) error {
	status, body, err := client.Get(ctx, baseURL+"/shots/"+leader.ID)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", leader.ID, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: top shot %s answered HTTP %d", ErrInconsistent, leader.ID, status)
	}

	var rec struct {
		ID     string `json:"id"`
		Result struct {
			Derived struct {
				Trajectory *struct {
					Carry float64 `json:"carry_distance_m"`
				} `json:"trajectory"`
			} `json:"derived"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return fmt.Errorf("parse %s: %w", leader.ID, err)
	}
	if rec.Result.Derived.Trajectory == nil {
		return fmt.Errorf("%w: top shot %s has no trajectory", ErrInconsistent, leader.ID)
	}
	if diff := rec.Result.Derived.Trajectory.Carry - leader.Carry; diff > 0.01 || diff < -0.01 {
		return fmt.Errorf("%w: top shot %s carry %.2f, listed %.2f", ErrInconsistent, leader.ID, rec.Result.Derived.Trajectory.Carry, leader.Carry)
	}
	return nil
}
