package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
)

// RPCClient defines the ledger JSON-RPC interface used by the balance oracle.
type RPCClient interface {
	// EthCall executes a read-only contract call at the given block tag
	// and returns the hex-encoded return data.
	EthCall(ctx context.Context, msg CallMsg, block string) (string, error)

	// BlockNumber returns the current chain head.
	BlockNumber(ctx context.Context) (uint64, error)

	// Close releases the underlying transport.
	Close() error
}

// CallMsg is the transaction object passed to eth_call.
type CallMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// BlockLatest is the block tag for the current chain head.
const BlockLatest = "latest"

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// caller performs one JSON-RPC method call and decodes the result.
type caller func(ctx context.Context, method string, params []interface{}, result interface{}) error

func ethCall(ctx context.Context, call caller, msg CallMsg, block string) (string, error) {
	if block == "" {
		block = BlockLatest
	}
	var result string
	if err := call(ctx, "eth_call", []interface{}{msg, block}, &result); err != nil {
		return "", err
	}
	return result, nil
}

func blockNumber(ctx context.Context, call caller) (uint64, error) {
	var result string
	if err := call(ctx, "eth_blockNumber", []interface{}{}, &result); err != nil {
		return 0, err
	}
	n, err := parseHexQuantity(result)
	if err != nil {
		return 0, fmt.Errorf("parse block number: %w", err)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("block number overflows uint64: %s", result)
	}
	return n.Uint64(), nil
}

// parseHexQuantity decodes a 0x-prefixed hex quantity or word.
func parseHexQuantity(s string) (*big.Int, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("missing 0x prefix: %q", s)
	}
	digits := s[2:]
	if digits == "" {
		return nil, fmt.Errorf("empty hex value")
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value: %q", s)
	}
	return n, nil
}
