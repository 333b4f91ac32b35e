package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/logger"
	"github.com/raykavin/stocklens/pkg/logger/zerolog"
	"github.com/xhit/go-str2duration/v2"
)

const (
	DefaultBaseURL  = "https://query1.finance.yahoo.com"
	DefaultLookback = "365d"
	DefaultRetries  = 3
	DefaultTimeout  = 30 * time.Second

	userAgent = "Mozilla/5.0 (compatible; stocklens)"
)

var errRetryable = errors.New("retryable response")

// Client fetches daily history from the Yahoo Finance chart API
type Client struct {
	baseURL  string
	lookback time.Duration
	retries  int
	http     *http.Client
	backoff  *backoff.Backoff
	now      func() time.Time
	log      logger.Logger
}

// Option configures a Client
type Option func(*Client) error

// WithBaseURL points the client at another host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithLookback sets how far back the history reaches, e.g. "365d" or "26w"
func WithLookback(lookback string) Option {
	return func(c *Client) error {
		duration, err := str2duration.ParseDuration(lookback)
		if err != nil {
			return fmt.Errorf("invalid lookback %q: %w", lookback, err)
		}
		if duration <= 0 {
			return fmt.Errorf("invalid lookback %q: must be positive", lookback)
		}
		c.lookback = duration
		return nil
	}
}

// WithRetries sets how many extra attempts follow a transient failure
func WithRetries(retries int) Option {
	return func(c *Client) error {
		if retries < 0 {
			return fmt.Errorf("invalid retries %d", retries)
		}
		c.retries = retries
		return nil
	}
}

// WithTimeout sets the timeout of a single HTTP request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.http.Timeout = timeout
		return nil
	}
}

// WithBackoff replaces the delay policy between attempts
func WithBackoff(min, max time.Duration) Option {
	return func(c *Client) error {
		c.backoff = &backoff.Backoff{Min: min, Max: max}
		return nil
	}
}

// WithLogger sets the client logger
func WithLogger(log logger.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithClock overrides the time source used for the request window
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		c.now = now
		return nil
	}
}

// NewClient creates a Yahoo Finance client
func NewClient(options ...Option) (*Client, error) {
	client := &Client{
		baseURL: DefaultBaseURL,
		retries: DefaultRetries,
		http:    &http.Client{Timeout: DefaultTimeout},
		backoff: &backoff.Backoff{
			Min: 100 * time.Millisecond,
			Max: 1 * time.Second,
		},
		now: time.Now,
		log: zerolog.Nop(),
	}

	if err := WithLookback(DefaultLookback)(client); err != nil {
		return nil, err
	}

	for _, option := range options {
		if err := option(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// History returns the daily bars of ticker within the lookback window
func (c *Client) History(ctx context.Context, ticker string) (core.History, error) {
	ticker, err := core.NormalizeTicker(ticker)
	if err != nil {
		return core.History{}, err
	}

	var payload chartResponse
	c.backoff.Reset()

	for attempt := 0; ; attempt++ {
		payload, err = c.fetch(ctx, ticker)
		if err == nil || !errors.Is(err, errRetryable) || attempt >= c.retries {
			break
		}

		delay := c.backoff.Duration()
		c.log.WithFields(map[string]interface{}{
			"ticker":  ticker,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).WithError(err).Warn("history request failed, retrying")

		select {
		case <-ctx.Done():
			return core.History{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return core.History{}, err
	}

	return payload.history(ticker)
}

func (c *Client) fetch(ctx context.Context, ticker string) (chartResponse, error) {
	end := c.now().UTC()
	start := end.Add(-c.lookback)

	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("period1", fmt.Sprint(start.Unix()))
	query.Set("period2", fmt.Sprint(end.Unix()))
	query.Set("events", "history")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return chartResponse{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return chartResponse{}, ctx.Err()
		}
		return chartResponse{}, fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return chartResponse{}, fmt.Errorf("%w: %s", core.ErrNotFound, ticker)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return chartResponse{}, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return chartResponse{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, ticker)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return chartResponse{}, fmt.Errorf("decode chart of %s: %w", ticker, err)
	}

	return payload, nil
}
