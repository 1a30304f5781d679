// Package config loads process configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"token-gate/internal/domain"
	"token-gate/internal/gate"
)

// Config holds every setting the binaries read from the environment.
type Config struct {
	// Token
	TokenContractAddress string          `env:"TOKEN_CONTRACT_ADDRESS"`
	TokenDecimals        int32           `env:"TOKEN_DECIMALS" envDefault:"18"`
	TokenSymbol          string          `env:"TOKEN_SYMBOL" envDefault:"DEPE"`
	EligibilityThreshold decimal.Decimal `env:"ELIGIBILITY_THRESHOLD" envDefault:"50"`

	// Channel
	ChannelID              string `env:"CHANNEL_ID" envDefault:"depe"`
	InviteRole             string `env:"INVITE_ROLE" envDefault:"member"`
	InviterFID             uint64 `env:"INVITER_FID"`
	InviterSignerPublicKey string `env:"INVITER_SIGNER_PUBLIC_KEY"`

	// Upstreams
	LedgerRPCURL      string  `env:"LEDGER_RPC_URL"`
	HubURL            string  `env:"HUB_URL" envDefault:"https://nemes.farcaster.xyz:2281"`
	WarpcastAPIURL    string  `env:"WARPCAST_API_URL" envDefault:"https://api.warpcast.com"`
	WarpcastAPIKey    string  `env:"WARPCAST_API_KEY"`
	PlatformRateLimit float64 `env:"PLATFORM_RATE_LIMIT" envDefault:"5"`

	// Timeouts
	BalanceTimeout time.Duration `env:"BALANCE_TIMEOUT" envDefault:"10s"`
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"10s"`
	InviteTimeout  time.Duration `env:"INVITE_TIMEOUT" envDefault:"10s"`

	// Server
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3000"`
	MetricsAddr string `env:"METRICS_ADDR"`

	// Storage
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickHouseDSN string `env:"CLICKHOUSE_DSN"`
	UseMemory     bool   `env:"USE_MEMORY"`
}

// Load reads .env files (if any) and then the environment.
// Variables already set in the environment take precedence over .env.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.TokenContractAddress == "" {
		errs = append(errs, errors.New("TOKEN_CONTRACT_ADDRESS is required"))
	} else if _, err := domain.ParseWalletAddress(c.TokenContractAddress); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_CONTRACT_ADDRESS: %w", err))
	}
	if c.TokenDecimals < 0 || c.TokenDecimals > 77 {
		errs = append(errs, fmt.Errorf("TOKEN_DECIMALS out of range: %d", c.TokenDecimals))
	}
	if c.EligibilityThreshold.IsNegative() {
		errs = append(errs, fmt.Errorf("ELIGIBILITY_THRESHOLD must not be negative: %s", c.EligibilityThreshold))
	}
	if c.ChannelID == "" {
		errs = append(errs, errors.New("CHANNEL_ID is required"))
	}
	if c.InviterFID == 0 {
		errs = append(errs, errors.New("INVITER_FID is required"))
	}
	if c.InviterSignerPublicKey != "" {
		if err := validateSignerKey(c.InviterSignerPublicKey); err != nil {
			errs = append(errs, fmt.Errorf("INVITER_SIGNER_PUBLIC_KEY: %w", err))
		}
	}

	if c.LedgerRPCURL == "" {
		errs = append(errs, errors.New("LEDGER_RPC_URL is required"))
	} else if err := validateURL(c.LedgerRPCURL, "http", "https", "ws", "wss"); err != nil {
		errs = append(errs, fmt.Errorf("LEDGER_RPC_URL: %w", err))
	}
	if err := validateURL(c.HubURL, "http", "https"); err != nil {
		errs = append(errs, fmt.Errorf("HUB_URL: %w", err))
	}
	if err := validateURL(c.WarpcastAPIURL, "http", "https"); err != nil {
		errs = append(errs, fmt.Errorf("WARPCAST_API_URL: %w", err))
	}
	if c.WarpcastAPIKey == "" {
		errs = append(errs, errors.New("WARPCAST_API_KEY is required"))
	}
	if c.PlatformRateLimit < 0 {
		errs = append(errs, fmt.Errorf("PLATFORM_RATE_LIMIT must not be negative: %v", c.PlatformRateLimit))
	}

	for name, d := range map[string]time.Duration{
		"BALANCE_TIMEOUT": c.BalanceTimeout,
		"RESOLVE_TIMEOUT": c.ResolveTimeout,
		"INVITE_TIMEOUT":  c.InviteTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive: %s", name, d))
		}
	}

	if !c.UseMemory && (c.PostgresDSN == "") != (c.ClickHouseDSN == "") {
		errs = append(errs, errors.New("POSTGRES_DSN and CLICKHOUSE_DSN must be set together"))
	}

	return errors.Join(errs...)
}

// AuditEnabled reports whether audit storage is configured.
func (c *Config) AuditEnabled() bool {
	return c.UseMemory || (c.PostgresDSN != "" && c.ClickHouseDSN != "")
}

// GateConfig converts to the immutable gate configuration.
func (c *Config) GateConfig() gate.Config {
	return gate.Config{
		Threshold:      c.EligibilityThreshold,
		TokenSymbol:    c.TokenSymbol,
		ChannelID:      c.ChannelID,
		InviterFID:     c.InviterFID,
		Role:           c.InviteRole,
		BalanceTimeout: c.BalanceTimeout,
		ResolveTimeout: c.ResolveTimeout,
		InviteTimeout:  c.InviteTimeout,
	}
}

// validateSignerKey checks that s is a 0x-hex encoded ed25519 public key.
func validateSignerKey(s string) error {
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
		return fmt.Errorf("not a valid ed25519 point: %w", err)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q", u.Scheme)
}
