package stub

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"token-gate/internal/ledger"
)

// RPCClient implements ledger.RPCClient for testing.
// Balances are keyed by the lowercase 40-char hex address.
type RPCClient struct {
	mu       sync.Mutex
	Balances map[string]*big.Int
	Head     uint64
	Err      error // returned by every call when set

	Calls atomic.Int32
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances: make(map[string]*big.Int),
	}
}

// SetBalance registers the balanceOf result for a 0x-prefixed address.
func (c *RPCClient) SetBalance(addr string, raw *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[strings.ToLower(strings.TrimPrefix(addr, "0x"))] = raw
}

// EthCall decodes balanceOf calldata and answers from the stub store.
func (c *RPCClient) EthCall(ctx context.Context, msg ledger.CallMsg, _ string) (string, error) {
	c.Calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Err != nil {
		return "", c.Err
	}

	data := strings.TrimPrefix(msg.Data, "0x")
	if len(data) != 8+64 || !strings.HasPrefix(data, "70a08231") {
		return "", fmt.Errorf("unsupported calldata %q", msg.Data)
	}
	addr := data[8+24:]

	c.mu.Lock()
	raw, ok := c.Balances[addr]
	c.mu.Unlock()
	if !ok {
		raw = new(big.Int)
	}

	return fmt.Sprintf("0x%064x", raw), nil
}

// BlockNumber returns the configured head.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Head, ctx.Err()
}

// Close is a no-op.
func (c *RPCClient) Close() error {
	return nil
}

var _ ledger.RPCClient = (*RPCClient)(nil)
