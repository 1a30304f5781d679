package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenBalance is a balance in minor units plus the token's decimal exponent.
type TokenBalance struct {
	Raw      *big.Int // minor units
	Decimals int32    // fixed for a deployed token
}

// NewTokenBalance builds a TokenBalance. A nil raw value is treated as zero.
func NewTokenBalance(raw *big.Int, decimals int32) TokenBalance {
	if raw == nil {
		raw = new(big.Int)
	}
	return TokenBalance{Raw: new(big.Int).Set(raw), Decimals: decimals}
}

// Amount returns the exact decimal quantity Raw * 10^-Decimals.
func (b TokenBalance) Amount() decimal.Decimal {
	if b.Raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(b.Raw, -b.Decimals)
}

// MeetsThreshold reports whether the balance is at least threshold.
func (b TokenBalance) MeetsThreshold(threshold decimal.Decimal) bool {
	return b.Amount().GreaterThanOrEqual(threshold)
}

// String formats the amount with the token's full precision trimmed of trailing zeros.
func (b TokenBalance) String() string {
	return b.Amount().String()
}
