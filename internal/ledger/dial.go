package ledger

import (
	"context"
	"fmt"
	"net/url"
)

// Dial returns an RPCClient for endpoint, choosing the transport by scheme:
// http/https use HTTPClient, ws/wss use WSClient.
func Dial(ctx context.Context, endpoint string, opts ...ClientOption) (RPCClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse ledger endpoint: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPClient(endpoint, opts...), nil
	case "ws", "wss":
		return NewWSClient(ctx, endpoint, nil)
	default:
		return nil, fmt.Errorf("unsupported ledger endpoint scheme %q", u.Scheme)
	}
}
