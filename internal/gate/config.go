package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"token-gate/internal/domain"
)

// Default per-call timeouts.
const (
	DefaultBalanceTimeout = 10 * time.Second
	DefaultResolveTimeout = 10 * time.Second
	DefaultInviteTimeout  = 10 * time.Second
)

// Config is the immutable configuration of a Gate.
type Config struct {
	Threshold   decimal.Decimal
	TokenSymbol string
	ChannelID   string
	InviterFID  uint64
	Role        string // Default: member

	BalanceTimeout time.Duration
	ResolveTimeout time.Duration
	InviteTimeout  time.Duration
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold.IsNegative() {
		errs = append(errs, fmt.Errorf("threshold must not be negative: %s", c.Threshold))
	}
	if c.ChannelID == "" {
		errs = append(errs, errors.New("channel id is required"))
	}
	if c.InviterFID == 0 {
		errs = append(errs, errors.New("inviter fid is required"))
	}
	return errors.Join(errs...)
}

func (c Config) withDefaults() Config {
	if c.Role == "" {
		c.Role = domain.RoleMember
	}
	if c.BalanceTimeout <= 0 {
		c.BalanceTimeout = DefaultBalanceTimeout
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = DefaultResolveTimeout
	}
	if c.InviteTimeout <= 0 {
		c.InviteTimeout = DefaultInviteTimeout
	}
	return c
}

func (c Config) messages() domain.Messages {
	return domain.Messages{TokenSymbol: c.TokenSymbol, Threshold: c.Threshold}
}
