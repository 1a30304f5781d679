// Package orchestrator wires configuration into a ready-to-serve gate.
// It coordinates: ledger → resolver → issuer → gate → audit
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"token-gate/internal/audit"
	"token-gate/internal/config"
	"token-gate/internal/domain"
	"token-gate/internal/farcaster"
	"token-gate/internal/gate"
	"token-gate/internal/httpapi"
	"token-gate/internal/keylock"
	"token-gate/internal/ledger"
	"token-gate/internal/storage"
	chstore "token-gate/internal/storage/clickhouse"
	"token-gate/internal/storage/memory"
	"token-gate/internal/storage/migrations"
	pgstore "token-gate/internal/storage/postgres"
)

// Components holds everything built from a Config.
type Components struct {
	Gate         *gate.Gate
	Checker      audit.Checker // Gate, audited when storage is configured
	Oracle       *ledger.Oracle
	Checks       storage.EligibilityCheckStore
	Invites      storage.InviteRecordStore
	HealthChecks map[string]httpapi.HealthCheck

	closers []func() error
}

// Options for building Components.
type Options struct {
	// SkipAudit disables audit storage even when it is configured.
	SkipAudit bool

	// Logger receives component logs. Each component gets its own prefix.
	Logger *log.Logger
}

// Build dials the upstreams, opens storage and assembles the gate.
// The caller must Close the result.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	base := opts.Logger
	if base == nil {
		base = log.New(os.Stdout, "", log.LstdFlags)
	}
	named := func(name string) *log.Logger {
		return log.New(base.Writer(), "["+name+"] ", base.Flags())
	}

	c := &Components{HealthChecks: make(map[string]httpapi.HealthCheck)}

	rpc, err := ledger.Dial(ctx, cfg.LedgerRPCURL, ledger.WithTimeout(cfg.BalanceTimeout))
	if err != nil {
		return nil, fmt.Errorf("dial ledger: %w", err)
	}
	c.closers = append(c.closers, rpc.Close)

	contract, err := domain.ParseWalletAddress(cfg.TokenContractAddress)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("token contract: %w", err)
	}
	c.Oracle = ledger.NewOracle(rpc, contract, cfg.TokenDecimals)
	c.HealthChecks["ledger"] = func(ctx context.Context) error {
		_, err := c.Oracle.Head(ctx)
		return err
	}

	limiter := farcaster.NewLimiter(cfg.PlatformRateLimit)
	hub := farcaster.NewHubClient(cfg.HubURL, limiter)
	inviter := farcaster.NewInviteClient(cfg.WarpcastAPIURL, cfg.WarpcastAPIKey, limiter)

	c.Gate, err = gate.New(cfg.GateConfig(), gate.Options{
		Oracle:   c.Oracle,
		Resolver: hub,
		Issuer:   inviter,
		Guard:    keylock.New(),
		Logger:   named("gate"),
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create gate: %w", err)
	}
	c.Checker = c.Gate

	if opts.SkipAudit || !cfg.AuditEnabled() {
		return c, nil
	}

	if err := c.openStores(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}

	c.Checker = audit.Wrap(c.Gate, audit.NewRecorder(audit.RecorderOptions{
		Checks:     c.Checks,
		Invites:    c.Invites,
		InviterFID: cfg.InviterFID,
		Logger:     named("audit"),
	}))
	return c, nil
}

// OpenStores opens only the audit stores, for tools that read the audit trail.
// The caller must Close the result.
func OpenStores(ctx context.Context, cfg *config.Config) (*Components, error) {
	if !cfg.AuditEnabled() {
		return nil, errors.New("no audit storage configured")
	}
	c := &Components{HealthChecks: make(map[string]httpapi.HealthCheck)}
	if err := c.openStores(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// openStores creates audit stores. Memory stores win when UseMemory is set.
func (c *Components) openStores(ctx context.Context, cfg *config.Config) error {
	if cfg.UseMemory {
		c.Checks = memory.NewEligibilityCheckStore()
		c.Invites = memory.NewInviteRecordStore()
		return nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	c.closers = append(c.closers, func() error { pool.Close(); return nil })

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	c.closers = append(c.closers, chConn.Close)

	c.Invites = pgstore.NewInviteRecordStore(pool)
	c.Checks = chstore.NewEligibilityCheckStore(chConn)
	c.HealthChecks["postgres"] = pool.Healthy
	c.HealthChecks["clickhouse"] = chConn.Healthy
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
