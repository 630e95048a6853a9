package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter rate-limits outbound calls per hostname so one provider's
// quota does not starve another's.
type hostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func newHostLimiter(reqPerSec float64, burst int) *hostLimiter {
	return &hostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *hostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *hostLimiter) waitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// Config holds the HTTP behavior shared by every collaborator client.
type Config struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RatePerSecond  float64
	RateBurst      int
}

// client wraps http.Client with bounded exponential-backoff retries and a
// per-host rate limiter. Retries live at this boundary; the pipeline never
// retries a failed unit of work.
type client struct {
	http      *http.Client
	limiter   *hostLimiter
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

func newClient(cfg Config, logger *slog.Logger) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	perSec := cfg.RatePerSecond
	if perSec <= 0 {
		perSec = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}
	return &client{
		http:      &http.Client{Timeout: timeout},
		limiter:   newHostLimiter(perSec, burst),
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger,
	}
}

// getJSON performs a GET with retries and decodes the response body into dest.
// When dest is a *json.RawMessage the raw body is kept verbatim.
func (c *client) getJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, dest interface{}) error {
	return c.doJSON(ctx, http.MethodGet, rawURL, params, headers, nil, dest)
}

// postJSON performs a POST with a JSON body, with retries.
func (c *client) postJSON(ctx context.Context, rawURL string, headers map[string]string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, rawURL, nil, headers, payload, dest)
}

func (c *client) doJSON(ctx context.Context, method, rawURL string, params url.Values, headers map[string]string, body []byte, dest interface{}) error {
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay * time.Duration(uint(1)<<uint(attempt-1))
			c.logger.Warn("Retrying collaborator call",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.waitURL(ctx, target); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, method, target, headers, body, dest)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("request failed after %d attempts: %w", c.attempts, lastErr)
}

func (c *client) doOnce(ctx context.Context, method, target string, headers map[string]string, body []byte, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if dest == nil {
		return nil
	}
	if raw, ok := dest.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
