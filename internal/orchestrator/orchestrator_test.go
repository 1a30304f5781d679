package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-gate/internal/config"
	"token-gate/internal/domain"
)

const (
	contract = "0x1111111111111111111111111111111111111111"
	holder   = "0xabcdef0123456789abcdef0123456789abcdef01"
)

// upstreams fakes the ledger RPC, the hub and the Warpcast API in one server.
type upstreams struct {
	server  *httptest.Server
	balance string // whole tokens, 18 decimals
	fid     uint64
	invites atomic.Int32
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{balance: "100", fid: 4021}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int             `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result string
		switch req.Method {
		case "eth_call":
			raw := decimal.RequireFromString(u.balance).Shift(18).BigInt()
			result = fmt.Sprintf("0x%064x", raw)
		case "eth_blockNumber":
			result = "0x10"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	})
	mux.HandleFunc("/v1/user-by-address", func(w http.ResponseWriter, r *http.Request) {
		if u.fid == 0 {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"fid": %d}`, u.fid)
	})
	mux.HandleFunc("/fc/channel-invites", func(w http.ResponseWriter, r *http.Request) {
		u.invites.Add(1)
		w.Write([]byte(`{"result":{"success":true}}`))
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstreams) config() *config.Config {
	return &config.Config{
		TokenContractAddress: contract,
		TokenDecimals:        18,
		TokenSymbol:          "DEPE",
		EligibilityThreshold: decimal.NewFromInt(50),
		ChannelID:            "depe",
		InviteRole:           domain.RoleMember,
		InviterFID:           1,
		LedgerRPCURL:         u.server.URL + "/rpc",
		HubURL:               u.server.URL,
		WarpcastAPIURL:       u.server.URL,
		WarpcastAPIKey:       "secret",
		BalanceTimeout:       2 * time.Second,
		ResolveTimeout:       2 * time.Second,
		InviteTimeout:        2 * time.Second,
		UseMemory:            true,
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestBuild_EndToEndWithAudit(t *testing.T) {
	up := newUpstreams(t)
	ctx := context.Background()

	c, err := Build(ctx, up.config(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	out := c.Checker.Check(ctx, "0x"+strings.ToUpper(holder[2:]))
	require.Equal(t, domain.OutcomeInviteSent, out.Code)
	assert.Equal(t, int32(1), up.invites.Load())

	checks, err := c.Checks.GetByWallet(ctx, holder)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, domain.OutcomeInviteSent, checks[0].Outcome)

	records, err := c.Invites.GetByWallet(ctx, holder)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(4021), records[0].InviteeFID)
	assert.Equal(t, uint64(1), records[0].InviterFID)
}

func TestBuild_Ineligible(t *testing.T) {
	up := newUpstreams(t)
	up.balance = "49.999999999999999999"
	ctx := context.Background()

	c, err := Build(ctx, up.config(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	out := c.Checker.Check(ctx, holder)
	require.Equal(t, domain.OutcomeIneligible, out.Code)
	require.NotNil(t, out.Balance)
	assert.Equal(t, "49.999999999999999999", out.Balance.String())
	assert.Zero(t, up.invites.Load())
}

func TestBuild_NoLinkedIdentity(t *testing.T) {
	up := newUpstreams(t)
	up.fid = 0
	ctx := context.Background()

	c, err := Build(ctx, up.config(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, domain.OutcomeNoLinkedIdentity, c.Checker.Check(ctx, holder).Code)
	assert.Zero(t, up.invites.Load())
}

func TestBuild_SkipAudit(t *testing.T) {
	up := newUpstreams(t)
	ctx := context.Background()

	c, err := Build(ctx, up.config(), Options{SkipAudit: true, Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Checks)
	assert.Nil(t, c.Invites)
	assert.Same(t, c.Gate, c.Checker)
}

func TestBuild_LedgerHealthCheck(t *testing.T) {
	up := newUpstreams(t)
	ctx := context.Background()

	c, err := Build(ctx, up.config(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer c.Close()

	check, ok := c.HealthChecks["ledger"]
	require.True(t, ok)
	assert.NoError(t, check(ctx))
}

func TestBuild_InvalidConfig(t *testing.T) {
	up := newUpstreams(t)
	ctx := context.Background()

	cfg := up.config()
	cfg.LedgerRPCURL = "ftp://nowhere"
	_, err := Build(ctx, cfg, Options{Logger: quietLogger()})
	assert.Error(t, err)

	cfg = up.config()
	cfg.TokenContractAddress = "0x1234"
	_, err = Build(ctx, cfg, Options{Logger: quietLogger()})
	assert.Error(t, err)

	cfg = up.config()
	cfg.InviterFID = 0
	_, err = Build(ctx, cfg, Options{Logger: quietLogger()})
	assert.Error(t, err)
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	_, err := OpenStores(ctx, &config.Config{})
	assert.Error(t, err)

	c, err := OpenStores(ctx, &config.Config{UseMemory: true})
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Checks)
	assert.NotNil(t, c.Invites)
	assert.Nil(t, c.Gate)
}
