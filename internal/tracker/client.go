// Package tracker pulls daily step totals from a fitness tracker's export
// API and turns them into activity entries.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/fluxdiary/fluxdiary/internal/engine"
)

const (
	httpTimeout = 10 * time.Second
	dateLayout  = "2006-01-02"
)

// ErrNotConfigured is returned by New when no base URL is set.
var ErrNotConfigured = errors.New("tracker URL not configured")

// Client talks to the tracker export API.
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	source   string
	logger   *slog.Logger
	attempts uint
	delay    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithRetry sets the attempt count and base backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(cl *Client) {
		cl.attempts = attempts
		cl.delay = delay
	}
}

// New creates a tracker client. Samples are tagged with source.
func New(baseURL, token, source string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if source == "" {
		source = "tracker"
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		http:     &http.Client{Timeout: httpTimeout},
		baseURL:  baseURL,
		token:    token,
		source:   source,
		logger:   logger,
		attempts: 5,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DaySteps is one day of the tracker's export.
type DaySteps struct {
	Date           string   `json:"date"`
	Steps          int      `json:"steps"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty"`
}

// FetchDailySteps returns the tracker's daily totals for [start, end].
func (c *Client) FetchDailySteps(ctx context.Context, start, end time.Time) ([]DaySteps, error) {
	q := url.Values{}
	q.Set("start", start.Format(dateLayout))
	q.Set("end", end.Format(dateLayout))
	apiURL := c.baseURL + "/v1/activity/steps?" + q.Encode()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			if c.token != "" {
				req.Header.Set("Authorization", "Bearer "+c.token)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()

			data, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
			if err != nil {
				return fmt.Errorf("reading body: %w", err)
			}
			// Retry on server errors and rate limiting
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(data, 256))
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(data, 256)))
			}
			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(2*time.Minute),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying tracker fetch", "attempt", n+1, "url", apiURL, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching steps: %w", err)
	}

	var days []DaySteps
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	c.logger.Debug("tracker steps fetched", "days", len(days), "start", start.Format(dateLayout), "end", end.Format(dateLayout))
	return days, nil
}

// Entries converts tracker days into activity entries timestamped at local
// noon, so that a day never slides across a date boundary. Ids are stable
// per source and date; a re-sync of the same day is skipped by the store.
func (c *Client) Entries(days []DaySteps, loc *time.Location) []engine.RawEntry {
	if loc == nil {
		loc = time.UTC
	}
	entries := make([]engine.RawEntry, 0, len(days))
	for _, d := range days {
		day, err := time.ParseInLocation(dateLayout, d.Date, loc)
		if err != nil {
			c.logger.Warn("skipping tracker day with bad date", "date", d.Date, "error", err)
			continue
		}
		steps := d.Steps
		entries = append(entries, engine.RawEntry{
			ID:             fmt.Sprintf("%s:%s:%d", c.source, d.Date, steps),
			Type:           string(engine.KindActivity),
			Timestamp:      day.Add(12 * time.Hour).Format("2006-01-02T15:04:05"),
			Steps:          &steps,
			CaloriesBurned: d.CaloriesBurned,
			Source:         c.source,
		})
	}
	return entries
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
