// Package feed implements the fetch strategies for configured article
// sources: RSS feeds with HTML page fallback for the AWS News Blog and the
// Microsoft Purview Blog, plus a local file source for offline runs.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ContentAgent/pkg/fn"
)

const (
	userAgent    = "ContentAgent/1.0 (Blog Scraper)"
	acceptHeader = "application/rss+xml, application/xml, text/html"

	requestTimeout = 30 * time.Second
)

// Client wraps HTTP access for all strategies: shared headers, timeout,
// pacing between requests, and retry with exponential backoff.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	retry   fn.RetryOpts
	logger  *slog.Logger
}

// NewClient builds a client pacing requests at most one per delay interval
// and retrying failed requests up to attempts times.
func NewClient(delay time.Duration, attempts int, logger *slog.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	retry := fn.DefaultRetry
	if attempts > 0 {
		retry.Attempts = attempts
	}

	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		limiter: limiter,
		retry:   retry,
		logger:  logger,
	}
}

// Get downloads a URL honoring the pacing and retry policy. Non-200
// responses count as failures and are retried.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	result := fn.Retry(ctx, c.retry, func(ctx context.Context) fn.Result[[]byte] {
		if err := c.limiter.Wait(ctx); err != nil {
			return fn.Err[[]byte](err)
		}
		return fn.FromPair(c.fetchOnce(ctx, rawURL))
	})
	return result.Unwrap()
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("read body: %w", err)
	}
	if closeErr := resp.Body.Close(); closeErr != nil {
		return nil, fmt.Errorf("close body: %w", closeErr)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}

	c.debug("fetched", "url", rawURL, "bytes", len(body))
	return body, nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
