package shotload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/valyala/fastjson"

	"github.com/okian/fairway/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	pollInterval        = 100 * time.Millisecond
	defaultWaitTimeout  = time.Minute
)

// ErrNotCaughtUp is returned when the history never reached the expected size.
var ErrNotCaughtUp = errors.New("history did not catch up")

// Run executes a complete load run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("shotload")
	stats := &Stats{StartTime: time.Now()}
	config.Workers = max(config.Workers, 1)
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = defaultWaitTimeout
	}

	log.Info(ctx, "starting shot load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("shots", config.NumShots),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Float64("resend", config.Resend))

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	shots := generateShots(ctx, config, stats)
	submitShots(ctx, config, shots, stats)

	if err := waitForHistory(ctx, client, config, stats); err != nil {
		return stats, err
	}

	top, err := getTop(ctx, client, config, stats)
	if err != nil {
		return stats, fmt.Errorf("top shots retrieval failed: %w", err)
	}

	if err := verifyResults(ctx, client, config, shots, top); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveShotsToFile(ctx, config.OutputFile, shots); err != nil {
			log.Warn(ctx, "failed to save shots to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	status, _, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// Any 200 is healthy; the body is the Prometheus exposition.
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}

// waitForHistory polls /stats until the queue is empty and the history holds
// every accepted shot, or as many as it can keep.
func waitForHistory(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	ctx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var p fastjson.Parser
	for {
		status, body, err := client.Get(ctx, config.BaseURL+"/stats")
		if err == nil && status == http.StatusOK {
			if v, perr := p.ParseBytes(body); perr == nil {
				count := v.GetInt("history", "count")
				want := min(stats.ShotsAccepted, v.GetInt("historySize"))
				stats.HistoryCount = count
				if v.GetInt("queueLength") == 0 && count >= want {
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d stored, %d accepted", ErrNotCaughtUp, stats.HistoryCount, stats.ShotsAccepted)
		case <-ticker.C:
		}
	}
}

func getTop(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) ([]Entry, error) {
	status, body, err := client.Get(ctx, fmt.Sprintf("%s/shots/top?limit=%d", config.BaseURL, config.TopN))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", status, string(body))
	}

	var top []Entry
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	stats.TopEntries = len(top)
	return top, nil
}

func saveShotsToFile(ctx context.Context, filename string, shots []Shot) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	msgs := make([]any, len(shots))
	for i, s := range shots {
		msgs[i] = s.Msg
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal shots: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "shots saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var shotsPerSecond float64
	if stats.Duration > 0 {
		shotsPerSecond = float64(stats.ShotsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("shotsGenerated", stats.ShotsGenerated),
		logger.Int("shotsSubmitted", stats.ShotsSubmitted),
		logger.Int("shotsAccepted", stats.ShotsAccepted),
		logger.Int("shotsDuplicate", stats.ShotsDuplicate),
		logger.Int("shotsRejected", stats.ShotsRejected),
		logger.Int("shotsFailed", stats.ShotsFailed),
		logger.Int("historyCount", stats.HistoryCount),
		logger.Int("topEntries", stats.TopEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("shotsPerSecond", shotsPerSecond))
}
