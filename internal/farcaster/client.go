// Package farcaster talks to the Farcaster hub (identity lookup) and the
// Warpcast API (channel invites).
package farcaster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultRateLimit  = 5 // requests per second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 250 * time.Millisecond
	maxResponseBytes  = 1 << 20
)

// NewLimiter returns a limiter shared by the hub and invite clients so
// the process stays under the platform's request budget.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// transport holds what the hub and invite clients share.
type transport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

func newTransport(baseURL, apiKey string, limiter *rate.Limiter) transport {
	if limiter == nil {
		limiter = NewLimiter(DefaultRateLimit)
	}
	return transport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: limiter,
	}
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

// do sends one request. A non-nil error means no response was received.
func (t *transport) do(ctx context.Context, method, path string, body interface{}) (*response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &response{status: resp.StatusCode, body: data}, nil
}

// retryableStatus reports whether status signals a transient server condition.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
