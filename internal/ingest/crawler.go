// Package ingest fetches job postings from company career boards and feeds
// them through the classifier. Each supported applicant tracking system has
// its own adapter; all adapters share one rate-limited HTTP crawler.
package ingest

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
)

// Crawler is an HTTP client with per-host rate limiting and retry with
// exponential backoff on 429 and 5xx responses.
type Crawler struct {
	client     *http.Client
	userAgent  string
	delay      time.Duration
	maxRetries int
	backoff    time.Duration

	mu          sync.Mutex
	lastRequest map[string]time.Time
}

// CrawlerOptions configures a Crawler. Zero values get sensible defaults.
type CrawlerOptions struct {
	RequestDelay time.Duration
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// NewCrawler returns a Crawler ready for use across goroutine-safe calls.
func NewCrawler(opts CrawlerOptions) *Crawler {
	if opts.RequestDelay == 0 {
		opts.RequestDelay = 2 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "JobSeekersShovel/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Second
	}
	return &Crawler{
		client:      &http.Client{Timeout: opts.Timeout},
		userAgent:   opts.UserAgent,
		delay:       opts.RequestDelay,
		maxRetries:  opts.MaxRetries,
		backoff:     opts.RetryBackoff,
		lastRequest: make(map[string]time.Time),
	}
}

// Get fetches rawURL and returns the response body. Non-2xx responses other
// than the retryable set fail immediately.
func (c *Crawler) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, "")
}

// PostJSON sends payload as a JSON body and returns the response body.
func (c *Crawler) PostJSON(ctx context.Context, rawURL string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, rawURL, body, "application/json")
}

func (c *Crawler) do(ctx context.Context, method, rawURL string, body []byte, contentType string) ([]byte, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			slog.Debug("retrying request", "url", rawURL, "attempt", attempt, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.waitForHost(ctx, host); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.client.Do(req)
		c.markRequest(host)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, rawURL, err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read body: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case retryableStatus(resp.StatusCode):
			lastErr = fmt.Errorf("%s %s returned %d", method, rawURL, resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("%s %s returned %d: %s", method, rawURL, resp.StatusCode, truncate(data, 200))
		}
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// waitForHost sleeps until delay has elapsed since the last request to host.
func (c *Crawler) waitForHost(ctx context.Context, host string) error {
	c.mu.Lock()
	last, ok := c.lastRequest[host]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	elapsed := time.Since(last)
	if elapsed >= c.delay {
		return nil
	}
	select {
	case <-time.After(c.delay - elapsed):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Crawler) markRequest(host string) {
	c.mu.Lock()
	c.lastRequest[host] = time.Now()
	c.mu.Unlock()
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return u.Host, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
