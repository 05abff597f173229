package shotload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request and returns the status code and body.
func (c *HTTPClient) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeRejected
	outcomeFailed
)

// submitShots posts shots concurrently. Resent shots go through the same
// workers after all first deliveries.
func submitShots(ctx context.Context, config *Config, shots []Shot, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting shots", logger.Int("shots", len(shots)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/shots"

	var counts [4]atomic.Int64
	var submitted atomic.Int64

	resend := min(max(int(float64(len(shots))*config.Resend), 0), len(shots))
	work := make(chan Shot, config.Workers*2)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for shot := range work {
				if ctx.Err() != nil {
					return
				}
				o := submitSingleShot(ctx, client, url, shot)
				counts[o].Add(1)
				n := submitted.Add(1)
				if config.Verbose && n%1000 == 0 {
					log.Info(ctx, "submission progress",
						logger.Int64("submitted", n),
						logger.Int64("accepted", counts[outcomeAccepted].Load()),
						logger.Int64("duplicate", counts[outcomeDuplicate].Load()))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, batch := range [][]Shot{shots, shots[:resend]} {
			for _, s := range batch {
				select {
				case <-ctx.Done():
					return
				case work <- s:
				}
			}
		}
	}()

	wg.Wait()

	stats.ShotsSubmitted = int(submitted.Load())
	stats.ShotsAccepted = int(counts[outcomeAccepted].Load())
	stats.ShotsDuplicate = int(counts[outcomeDuplicate].Load())
	stats.ShotsRejected = int(counts[outcomeRejected].Load())
	stats.ShotsFailed = int(counts[outcomeFailed].Load())

	log.Info(ctx, "shot submission completed",
		logger.Int("accepted", stats.ShotsAccepted),
		logger.Int("duplicate", stats.ShotsDuplicate),
		logger.Int("rejected", stats.ShotsRejected),
		logger.Int("failed", stats.ShotsFailed))
}

func submitSingleShot(ctx context.Context, client *HTTPClient, url string, shot Shot) outcome {
	status, body, err := client.Post(ctx, url, shot.Msg)
	if err != nil {
		return outcomeFailed
	}

	switch status {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && !ack.Duplicate {
			return outcomeAccepted
		}
		return outcomeDuplicate
	case http.StatusTooManyRequests:
		return outcomeRejected
	default:
		return outcomeFailed
	}
}
