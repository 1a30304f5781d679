package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"token-gate/internal/domain"
)

// InviteClient issues channel invites through the Warpcast API.
// Requests are never retried: a blind retry after a lost response could
// produce a duplicate invite.
type InviteClient struct {
	transport
	now func() time.Time
}

// InviteOption configures InviteClient.
type InviteOption func(*InviteClient)

// WithInviteHTTPClient sets a custom http.Client.
func WithInviteHTTPClient(client *http.Client) InviteOption {
	return func(c *InviteClient) {
		c.client = client
	}
}

// WithClock overrides the receipt timestamp source.
func WithClock(now func() time.Time) InviteOption {
	return func(c *InviteClient) {
		c.now = now
	}
}

// NewInviteClient creates an invite client authenticated with apiKey.
func NewInviteClient(baseURL, apiKey string, limiter *rate.Limiter, opts ...InviteOption) *InviteClient {
	c := &InviteClient{
		transport: newTransport(baseURL, apiKey, limiter),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueInvite asks the platform to add req.InviteeFID to req.ChannelID.
// Platform refusals map to domain.ErrInviteRejected; transport failures,
// 429 and 5xx map to domain.ErrPlatformUnavailable.
func (c *InviteClient) IssueInvite(ctx context.Context, req domain.InviteRequest) (*domain.InviteReceipt, error) {
	body := channelInviteRequest{
		ChannelID:  req.ChannelID,
		InviterFID: req.InviterFID,
		InviteFID:  req.InviteeFID,
		Role:       req.Role,
	}

	resp, err := c.do(ctx, http.MethodPost, "/fc/channel-invites", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlatformUnavailable, err)
	}

	if retryableStatus(resp.status) {
		return nil, fmt.Errorf("%w: status %d", domain.ErrPlatformUnavailable, resp.status)
	}

	if resp.status >= 400 {
		var apiErr apiErrorResponse
		msg := truncate(string(resp.body), 200)
		if json.Unmarshal(resp.body, &apiErr) == nil && apiErr.message() != "" {
			msg = apiErr.message()
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrInviteRejected, resp.status, msg)
	}

	var ok channelInviteResponse
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &ok); err != nil {
			// The invite may have been created; report unavailability so the
			// caller resubmits rather than assuming failure.
			return nil, fmt.Errorf("%w: decode invite response: %v", domain.ErrPlatformUnavailable, err)
		}
		if ok.rejected() {
			return nil, fmt.Errorf("%w: platform reported success=false", domain.ErrInviteRejected)
		}
	}

	return &domain.InviteReceipt{
		ChannelID:  req.ChannelID,
		InviteeFID: req.InviteeFID,
		Role:       req.Role,
		IssuedAt:   c.now().UnixMilli(),
	}, nil
}
