package farcaster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-gate/internal/domain"
)

const testWallet = domain.WalletAddress("0xabcdef0123456789abcdef0123456789abcdef01")

func newTestHub(t *testing.T, handler http.HandlerFunc) (*HubClient, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewHubClient(server.URL, NewLimiter(0), WithHubRetries(2, time.Millisecond)), &calls
}

func TestHubClient_ResolveIdentity(t *testing.T) {
	hub, _ := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/user-by-address", r.URL.Path)
		assert.Equal(t, testWallet.String(), r.URL.Query().Get("address"))
		w.Write([]byte(`{"fid": 4021}`))
	})

	id, err := hub.ResolveIdentity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(4021), id.FID)
}

func TestHubClient_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, `{"errCode":"not_found"}`},
		{"400 not_found", http.StatusBadRequest, `{"errCode":"not_found","presentable":false,"name":"HubError","code":3,"details":"no fid for address"}`},
		{"empty body", http.StatusOK, ``},
		{"null body", http.StatusOK, `null`},
		{"missing fid", http.StatusOK, `{}`},
		{"zero fid", http.StatusOK, `{"fid":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, calls := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := hub.ResolveIdentity(context.Background(), testWallet)
			assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
			assert.Equal(t, int32(1), calls.Load(), "not found must not be retried")
		})
	}
}

func TestHubClient_RetriesUnavailable(t *testing.T) {
	var n atomic.Int32
	hub, calls := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"fid": 7}`))
	})

	id, err := hub.ResolveIdentity(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id.FID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHubClient_Unavailable(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{"429", http.StatusTooManyRequests, ``, 3},
		{"500", http.StatusInternalServerError, `oops`, 3},
		{"bad json", http.StatusOK, `{"fid":`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, calls := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := hub.ResolveIdentity(context.Background(), testWallet)
			assert.ErrorIs(t, err, domain.ErrResolverUnavailable)
			assert.False(t, errors.Is(err, domain.ErrIdentityNotFound))
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestHubClient_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"400 plain", http.StatusBadRequest, `bad address`, "bad address"},
		{"400 hub error", http.StatusBadRequest, `{"errCode":"bad_request.validation_failure","details":"address is invalid"}`, "bad_request.validation_failure: address is invalid"},
		{"403", http.StatusForbidden, `{"errCode":"unauthorized"}`, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, calls := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := hub.ResolveIdentity(context.Background(), testWallet)
			assert.ErrorIs(t, err, domain.ErrResolverRejected)
			assert.False(t, errors.Is(err, domain.ErrResolverUnavailable))
			assert.False(t, errors.Is(err, domain.ErrIdentityNotFound))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, int32(1), calls.Load(), "rejected lookups must not be retried")
		})
	}
}

func TestHubClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	hub := NewHubClient(url, nil, WithHubRetries(0, 0))
	_, err := hub.ResolveIdentity(context.Background(), testWallet)
	assert.ErrorIs(t, err, domain.ErrResolverUnavailable)
}

func TestHubClient_ContextCancelled(t *testing.T) {
	hub, _ := newTestHub(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := hub.ResolveIdentity(ctx, testWallet)
	assert.ErrorIs(t, err, domain.ErrResolverUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}
