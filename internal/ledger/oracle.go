// Package ledger reads fungible-token balances from an EVM-compatible chain
// over JSON-RPC.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"token-gate/internal/domain"
)

// balanceOfSelector is the 4-byte selector of balanceOf(address).
const balanceOfSelector = "70a08231"

// Oracle queries the token contract for a wallet's balance at the chain head.
type Oracle struct {
	rpc      RPCClient
	contract domain.WalletAddress
	decimals int32
}

// NewOracle creates an Oracle for a token contract with a fixed decimal exponent.
func NewOracle(rpc RPCClient, contract domain.WalletAddress, decimals int32) *Oracle {
	return &Oracle{
		rpc:      rpc,
		contract: contract,
		decimals: decimals,
	}
}

// Balance returns the wallet's current balance.
// The address is validated before any network call; every other failure is
// reported as domain.ErrChainUnavailable.
func (o *Oracle) Balance(ctx context.Context, wallet domain.WalletAddress) (domain.TokenBalance, error) {
	addr, err := domain.ParseWalletAddress(string(wallet))
	if err != nil {
		return domain.TokenBalance{}, err
	}

	msg := CallMsg{
		To:   o.contract.String(),
		Data: EncodeBalanceOf(addr),
	}

	out, err := o.rpc.EthCall(ctx, msg, BlockLatest)
	if err != nil {
		return domain.TokenBalance{}, fmt.Errorf("%w: eth_call balanceOf: %v", domain.ErrChainUnavailable, err)
	}

	// A uint256 return value is exactly one 32-byte word.
	if len(strings.TrimPrefix(out, "0x")) != 64 {
		return domain.TokenBalance{}, fmt.Errorf("%w: unexpected balanceOf result %q", domain.ErrChainUnavailable, out)
	}

	raw, err := parseHexQuantity(out)
	if err != nil {
		return domain.TokenBalance{}, fmt.Errorf("%w: decode balanceOf result: %v", domain.ErrChainUnavailable, err)
	}

	return domain.NewTokenBalance(raw, o.decimals), nil
}

// Head returns the current block number; used for readiness checks.
func (o *Oracle) Head(ctx context.Context) (uint64, error) {
	n, err := o.rpc.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrChainUnavailable, err)
	}
	return n, nil
}

// EncodeBalanceOf returns the calldata for balanceOf(addr):
// selector followed by the address left-padded to 32 bytes.
func EncodeBalanceOf(addr domain.WalletAddress) string {
	return "0x" + balanceOfSelector + strings.Repeat("0", 24) + addr.Hex()
}
