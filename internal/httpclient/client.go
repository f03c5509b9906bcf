// Package httpclient wraps an http.Client with adaptive rate limiting and
// automatic retries tuned for the Discogs API.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/calvares/digger/internal/constants"
)

// ErrRateLimited indicates the retry budget was exhausted on throttling
// responses. The caller should back off before trying again.
var ErrRateLimited = errors.New("rate limited by server")

// TransportError indicates the retry budget was exhausted on transport
// failures. It carries the last underlying error.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", constants.DefaultRetryCount, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError indicates a non-retryable HTTP error status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Code)
}

// Client executes requests against a rate-limited API. Pacing starts at one
// request per second and floats with the quota telemetry headers the server
// returns. A single ingestion worker per process is assumed; the limiter is
// not meant to be shared by concurrent callers racing for the same quota.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter

	mu           sync.Mutex
	baseInterval time.Duration
}

// New creates a rate-limited, retrying client. A nil httpClient gets sane
// defaults.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	return &Client{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Every(constants.DefaultRequestInterval), 1),
		baseInterval: constants.DefaultRequestInterval,
	}
}

// Do executes req, pacing it against the current request interval and
// retrying transient failures. On success the response has a 2xx status and
// the caller owns the body. Throttling exhaustion surfaces ErrRateLimited,
// transport exhaustion *TransportError, and any other HTTP error status
// *StatusError with no retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < constants.DefaultRetryCount-1 {
				// Exponential backoff: 1s, 2s, 4s...
				wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				if err := sleep(ctx, wait); err != nil {
					return nil, err
				}
			}
			continue
		}

		c.adjustFromHeaders(resp)

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp)
			_ = resp.Body.Close()
			lastErr = ErrRateLimited
			if attempt < constants.DefaultRetryCount-1 {
				if err := sleep(ctx, retryAfter); err != nil {
					return nil, err
				}
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}

		return resp, nil
	}

	if errors.Is(lastErr, ErrRateLimited) {
		return nil, ErrRateLimited
	}
	return nil, &TransportError{Err: lastErr}
}

// adjustFromHeaders recomputes the request interval from the
// X-Discogs-Ratelimit telemetry headers. Invalid or absent headers leave the
// current pacing untouched.
func (c *Client) adjustFromHeaders(resp *http.Response) {
	quotaHeader := resp.Header.Get("X-Discogs-Ratelimit")
	remainingHeader := resp.Header.Get("X-Discogs-Ratelimit-Remaining")
	if quotaHeader == "" {
		return
	}

	quota, err := strconv.Atoi(quotaHeader)
	if err != nil || quota <= 0 {
		return
	}

	// Interval for the full window plus a safety buffer.
	interval := time.Duration(float64(constants.RateLimitWindow) / float64(quota) * constants.RateLimitBuffer)

	// Nearly out of quota: slow down before the server forces it.
	if remaining, err := strconv.Atoi(remainingHeader); err == nil && remaining < constants.RateLimitLowWater {
		interval *= 2
	}

	c.mu.Lock()
	if interval != c.baseInterval {
		c.baseInterval = interval
		c.limiter.SetLimit(rate.Every(interval))
	}
	c.mu.Unlock()
}

// Interval returns the current pacing interval between requests.
func (c *Client) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseInterval
}

// parseRetryAfter reads a Retry-After header; a missing or malformed value
// falls back to the default throttling delay.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return constants.DefaultRetryAfter
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return constants.DefaultRetryAfter
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
