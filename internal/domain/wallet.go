package domain

import (
	"fmt"
	"strings"
)

// WalletAddressHexLen is the number of hex characters after the 0x prefix.
const WalletAddressHexLen = 40

// WalletAddress is a normalized (lowercase, 0x-prefixed) ledger account address.
type WalletAddress string

// ParseWalletAddress validates s and returns its lowercase form.
// Mixed-case input is accepted; EIP-55 checksums are not enforced.
func ParseWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if len(s) != 2+WalletAddressHexLen || !(s[:2] == "0x" || s[:2] == "0X") {
		return "", fmt.Errorf("%w: %q must be 0x followed by %d hex characters", ErrInvalidAddress, s, WalletAddressHexLen)
	}
	for i := 2; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return "", fmt.Errorf("%w: %q contains non-hex character", ErrInvalidAddress, s)
		}
	}
	return WalletAddress("0x" + strings.ToLower(s[2:])), nil
}

// String returns the normalized address.
func (a WalletAddress) String() string {
	return string(a)
}

// Hex returns the 40 hex characters without the 0x prefix.
func (a WalletAddress) Hex() string {
	return strings.TrimPrefix(string(a), "0x")
}

// Short returns a shortened form for logs, e.g. 0x1234...abcd.
func (a WalletAddress) Short() string {
	s := string(a)
	if len(s) < 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
