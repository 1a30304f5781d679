package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"token-gate/internal/domain"
)

// HubClient resolves wallet addresses to Farcaster identities via a hub.
type HubClient struct {
	transport
	maxRetries int
	retryDelay time.Duration
}

// HubOption configures HubClient.
type HubOption func(*HubClient)

// WithHubRetries sets how many times an unavailable hub is retried.
func WithHubRetries(n int, delay time.Duration) HubOption {
	return func(c *HubClient) {
		c.maxRetries = n
		c.retryDelay = delay
	}
}

// WithHubHTTPClient sets a custom http.Client.
func WithHubHTTPClient(client *http.Client) HubOption {
	return func(c *HubClient) {
		c.client = client
	}
}

// NewHubClient creates a hub client. The limiter may be shared with other clients.
func NewHubClient(baseURL string, limiter *rate.Limiter, opts ...HubOption) *HubClient {
	c := &HubClient{
		transport:  newTransport(baseURL, "", limiter),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveIdentity returns the identity currently linked to wallet.
// It returns domain.ErrIdentityNotFound when nothing is linked,
// domain.ErrResolverUnavailable when the hub cannot answer and
// domain.ErrResolverRejected when the hub refuses the lookup.
func (c *HubClient) ResolveIdentity(ctx context.Context, wallet domain.WalletAddress) (domain.SocialIdentity, error) {
	path := "/v1/user-by-address?address=" + url.QueryEscape(wallet.String())

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.SocialIdentity{}, fmt.Errorf("%w: %v", domain.ErrResolverUnavailable, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		id, retry, err := c.resolveOnce(ctx, path)
		if err == nil {
			return id, nil
		}
		if !retry || ctx.Err() != nil {
			return domain.SocialIdentity{}, err
		}
		lastErr = err
	}

	return domain.SocialIdentity{}, lastErr
}

// resolveOnce performs a single lookup; retry reports whether a failure is worth repeating.
func (c *HubClient) resolveOnce(ctx context.Context, path string) (id domain.SocialIdentity, retry bool, err error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.SocialIdentity{}, true, fmt.Errorf("%w: %v", domain.ErrResolverUnavailable, err)
	}

	switch {
	case resp.status == http.StatusNotFound:
		return domain.SocialIdentity{}, false, domain.ErrIdentityNotFound
	case retryableStatus(resp.status):
		return domain.SocialIdentity{}, true, fmt.Errorf("%w: hub status %d", domain.ErrResolverUnavailable, resp.status)
	case resp.status >= 400:
		// Hubs answer lookup misses with 400 and errCode "not_found".
		var hubErr hubErrorResponse
		msg := truncate(string(resp.body), 200)
		if json.Unmarshal(resp.body, &hubErr) == nil && hubErr.ErrCode != "" {
			if hubErr.ErrCode == hubErrNotFound {
				return domain.SocialIdentity{}, false, domain.ErrIdentityNotFound
			}
			msg = hubErr.message()
		}
		return domain.SocialIdentity{}, false, fmt.Errorf("%w: hub status %d: %s",
			domain.ErrResolverRejected, resp.status, msg)
	}

	if len(resp.body) == 0 || string(resp.body) == "null" {
		return domain.SocialIdentity{}, false, domain.ErrIdentityNotFound
	}

	var user userByAddressResponse
	if err := json.Unmarshal(resp.body, &user); err != nil {
		return domain.SocialIdentity{}, true, fmt.Errorf("%w: decode hub response: %v", domain.ErrResolverUnavailable, err)
	}
	if user.FID == 0 {
		return domain.SocialIdentity{}, false, domain.ErrIdentityNotFound
	}

	return domain.SocialIdentity{FID: user.FID}, false, nil
}
