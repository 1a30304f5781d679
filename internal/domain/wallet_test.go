package domain

import (
	"errors"
	"testing"
)

func TestParseWalletAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    WalletAddress
		wantErr bool
	}{
		{
			name:  "lowercase",
			input: "0x00000000000000000000000000000000000000ab",
			want:  "0x00000000000000000000000000000000000000ab",
		},
		{
			name:  "mixed case is normalized",
			input: "0xAbCdEf0123456789aBcDeF0123456789ABCDEF01",
			want:  "0xabcdef0123456789abcdef0123456789abcdef01",
		},
		{
			name:  "uppercase prefix and surrounding space",
			input: "  0XABCDEF0123456789ABCDEF0123456789ABCDEF01 ",
			want:  "0xabcdef0123456789abcdef0123456789abcdef01",
		},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "0x123", wantErr: true},
		{name: "missing prefix", input: "abcdef0123456789abcdef0123456789abcdef0123", wantErr: true},
		{name: "non hex", input: "0xzzcdef0123456789abcdef0123456789abcdef01", wantErr: true},
		{name: "too long", input: "0xabcdef0123456789abcdef0123456789abcdef0123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWalletAddress(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Fatalf("expected ErrInvalidAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWalletAddress_HexAndShort(t *testing.T) {
	addr, err := ParseWalletAddress("0xabcdef0123456789abcdef0123456789abcdef01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if addr.Hex() != "abcdef0123456789abcdef0123456789abcdef01" {
		t.Errorf("unexpected hex: %s", addr.Hex())
	}
	if addr.Short() != "0xabcd...ef01" {
		t.Errorf("unexpected short form: %s", addr.Short())
	}
}
