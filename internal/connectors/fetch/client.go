// Package fetch is the HTTP plumbing shared by the source connectors:
// rate limiting, status classification and size-capped bodies.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// MaxBodySize caps response bodies. Result sheets are a few MB.
const MaxBodySize = 64 << 20

// UserAgent identifies drawsync to upstream sites.
const UserAgent = "drawsync/1.0 (+https://github.com/vittaya051733-boop/tungtong1)"

// Client performs rate limited requests against one upstream.
type Client struct {
	http    *http.Client
	limiter *RateLimiter
}

// NewClient creates a client. A nil httpClient gets one with DefaultTimeout.
func NewClient(httpClient *http.Client, limiter *RateLimiter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit)
	}
	return &Client{http: httpClient, limiter: limiter}
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, op, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", accept)
	return c.Do(op, req)
}

// PostJSON posts body as JSON and returns the response body.
func (c *Client) PostJSON(ctx context.Context, op, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.Do(op, req)
}

// Do sends req after waiting on the rate limiter. Non-2xx answers become
// *domain.UpstreamHTTPError; a 429 also pauses the limiter.
func (c *Client) Do(op string, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", op, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamHTTPError{Op: op, StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("%s: response larger than %d bytes", op, MaxBodySize)
	}
	return body, nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
