package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int %q", s)
	}
	return v
}

func TestTokenBalance_Amount(t *testing.T) {
	b := NewTokenBalance(mustBig(t, "50000000000000000000"), 18)
	if !b.Amount().Equal(decimal.RequireFromString("50")) {
		t.Errorf("expected 50, got %s", b.Amount())
	}

	b = NewTokenBalance(mustBig(t, "1"), 18)
	if b.String() != "0.000000000000000001" {
		t.Errorf("unexpected string: %s", b.String())
	}

	var zero TokenBalance
	if !zero.Amount().IsZero() {
		t.Errorf("expected zero amount for empty balance")
	}
}

func TestTokenBalance_MeetsThreshold(t *testing.T) {
	threshold := decimal.RequireFromString("50")

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "exactly threshold", raw: "50000000000000000000", want: true},
		{name: "one minor unit below", raw: "49999999999999999999", want: false},
		{name: "one minor unit above", raw: "50000000000000000001", want: true},
		{name: "zero", raw: "0", want: false},
		{name: "huge", raw: "115792089237316195423570985008687907853269984665640564039457584007913129639935", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTokenBalance(mustBig(t, tt.raw), 18)
			if got := b.MeetsThreshold(threshold); got != tt.want {
				t.Errorf("MeetsThreshold(%s) = %v, want %v", b, got, tt.want)
			}
		})
	}
}

func TestNewTokenBalance_CopiesRaw(t *testing.T) {
	raw := big.NewInt(10)
	b := NewTokenBalance(raw, 0)
	raw.SetInt64(99)

	if b.Raw.Int64() != 10 {
		t.Error("balance should hold its own copy of raw value")
	}
}

func TestOutcomeCode_Retryable(t *testing.T) {
	for _, code := range AllOutcomeCodes {
		if !code.IsValid() {
			t.Errorf("%s should be valid", code)
		}
		if code.Retryable() != (code == OutcomeTransientError) {
			t.Errorf("unexpected Retryable for %s", code)
		}
	}
	if OutcomeCode("BOGUS").IsValid() {
		t.Error("unknown code should be invalid")
	}
}

func TestMessages_Render(t *testing.T) {
	m := Messages{TokenSymbol: "DEPE", Threshold: decimal.RequireFromString("50")}
	bal := decimal.RequireFromString("12.5")

	got := m.Render(OutcomeIneligible, &bal)
	want := "You need 50+ DEPE to join. Current balance: 12.5 DEPE"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	seen := make(map[string]OutcomeCode)
	for _, code := range AllOutcomeCodes {
		msg := m.Render(code, &bal)
		if prev, ok := seen[msg]; ok {
			t.Errorf("%s and %s share message %q", prev, code, msg)
		}
		seen[msg] = code
	}
}
