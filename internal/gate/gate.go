// Package gate decides whether a wallet may join the channel and, if so,
// issues the invite.
package gate

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"token-gate/internal/domain"
	"token-gate/internal/keylock"
	"token-gate/internal/observability"
)

const tracerName = "token-gate/internal/gate"

const msgInProgress = "A request for this wallet is already in progress. Please try again shortly."

// BalanceOracle reads token balances.
type BalanceOracle interface {
	Balance(ctx context.Context, wallet domain.WalletAddress) (domain.TokenBalance, error)
}

// IdentityResolver maps a wallet to its linked social identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, wallet domain.WalletAddress) (domain.SocialIdentity, error)
}

// InviteIssuer issues channel invites.
type InviteIssuer interface {
	IssueInvite(ctx context.Context, req domain.InviteRequest) (*domain.InviteReceipt, error)
}

// Gate runs the eligibility check and invite pipeline.
type Gate struct {
	cfg      Config
	msgs     domain.Messages
	oracle   BalanceOracle
	resolver IdentityResolver
	issuer   InviteIssuer
	guard    *keylock.KeyLock
	tracer   trace.Tracer
	logger   *log.Logger
}

// Options contains the collaborators for creating a Gate.
type Options struct {
	Oracle   BalanceOracle
	Resolver IdentityResolver
	Issuer   InviteIssuer
	Guard    *keylock.KeyLock // Default: a new KeyLock owned by the gate
	Logger   *log.Logger
}

// New creates a Gate. It fails if cfg is invalid or a collaborator is missing.
func New(cfg Config, opts Options) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Oracle == nil || opts.Resolver == nil || opts.Issuer == nil {
		return nil, errors.New("gate: oracle, resolver and issuer are required")
	}

	guard := opts.Guard
	if guard == nil {
		guard = keylock.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg = cfg.withDefaults()
	return &Gate{
		cfg:      cfg,
		msgs:     cfg.messages(),
		oracle:   opts.Oracle,
		resolver: opts.Resolver,
		issuer:   opts.Issuer,
		guard:    guard,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}, nil
}

// Config returns the gate configuration.
func (g *Gate) Config() Config {
	return g.cfg
}

// Check validates rawAddress, verifies the token balance and issues an
// invite to the linked identity. It never returns an error: every failure
// is folded into the outcome code.
func (g *Gate) Check(ctx context.Context, rawAddress string) domain.Outcome {
	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "gate.Check")
	defer span.End()

	out := g.check(ctx, rawAddress)

	span.SetAttributes(attribute.String("outcome", out.Code.String()))
	observability.RecordCheck(out.Code.String(), time.Since(start).Seconds())
	return out
}

func (g *Gate) check(ctx context.Context, rawAddress string) domain.Outcome {
	wallet, err := domain.ParseWalletAddress(rawAddress)
	if err != nil {
		g.logger.Printf("invalid address %q: %v", truncate(rawAddress, 64), err)
		return g.outcome(domain.OutcomeInvalidInput)
	}

	balance, err := g.readBalance(ctx, wallet)
	if err != nil {
		g.logger.Printf("%s: balance unavailable: %v", wallet.Short(), err)
		return g.outcome(domain.OutcomeTransientError)
	}

	amount := balance.Amount()
	if !balance.MeetsThreshold(g.cfg.Threshold) {
		g.logger.Printf("%s: ineligible, balance %s below %s", wallet.Short(), amount, g.cfg.Threshold)
		out := g.outcome(domain.OutcomeIneligible)
		out.Balance = &amount
		out.Message = g.msgs.Render(domain.OutcomeIneligible, &amount)
		return out
	}
	g.logger.Printf("%s: eligible with %s %s", wallet.Short(), amount, g.cfg.TokenSymbol)

	release, ok := g.guard.TryAcquire(wallet.String())
	if !ok {
		observability.RecordGuardContention()
		g.logger.Printf("%s: check already in progress", wallet.Short())
		out := g.outcome(domain.OutcomeTransientError)
		out.Message = msgInProgress
		return out
	}
	defer release()

	identity, err := g.resolveIdentity(ctx, wallet)
	switch {
	case errors.Is(err, domain.ErrIdentityNotFound):
		g.logger.Printf("%s: no linked identity", wallet.Short())
		return g.outcome(domain.OutcomeNoLinkedIdentity)
	case err != nil:
		g.logger.Printf("%s: identity lookup failed: %v", wallet.Short(), err)
		return g.outcome(domain.OutcomeTransientError)
	}
	g.logger.Printf("%s: resolved to fid %d", wallet.Short(), identity.FID)

	receipt, err := g.issueInvite(ctx, identity)
	switch {
	case errors.Is(err, domain.ErrInviteRejected):
		g.logger.Printf("%s: invite rejected: %v", wallet.Short(), err)
		return g.outcome(domain.OutcomeAlreadyMemberOrRejected)
	case err != nil:
		g.logger.Printf("%s: invite failed: %v", wallet.Short(), err)
		return g.outcome(domain.OutcomeTransientError)
	case receipt == nil:
		g.logger.Printf("%s: invite returned no receipt", wallet.Short())
		return g.outcome(domain.OutcomeTransientError)
	}

	g.logger.Printf("%s: invite sent to fid %d for channel %s", wallet.Short(), receipt.InviteeFID, receipt.ChannelID)
	observability.RecordInviteIssued(float64(time.Now().Unix()))
	out := g.outcome(domain.OutcomeInviteSent)
	out.Receipt = receipt
	return out
}

func (g *Gate) readBalance(ctx context.Context, wallet domain.WalletAddress) (domain.TokenBalance, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenBalance{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.BalanceTimeout)
	defer cancel()
	ctx, span := g.tracer.Start(ctx, "gate.Balance")
	defer span.End()

	start := time.Now()
	balance, err := g.oracle.Balance(ctx, wallet)
	observability.RecordExternalCall(observability.ComponentLedger, time.Since(start).Seconds(), err)
	endSpan(span, err)
	return balance, err
}

func (g *Gate) resolveIdentity(ctx context.Context, wallet domain.WalletAddress) (domain.SocialIdentity, error) {
	if err := ctx.Err(); err != nil {
		return domain.SocialIdentity{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.ResolveTimeout)
	defer cancel()
	ctx, span := g.tracer.Start(ctx, "gate.ResolveIdentity")
	defer span.End()

	start := time.Now()
	identity, err := g.resolver.ResolveIdentity(ctx, wallet)
	if err == nil && identity.IsZero() {
		err = domain.ErrIdentityNotFound
	}
	observability.RecordExternalCall(observability.ComponentResolver, time.Since(start).Seconds(), err)
	endSpan(span, err)
	return identity, err
}

func (g *Gate) issueInvite(ctx context.Context, identity domain.SocialIdentity) (*domain.InviteReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.InviteTimeout)
	defer cancel()
	ctx, span := g.tracer.Start(ctx, "gate.IssueInvite")
	defer span.End()

	req := domain.InviteRequest{
		ChannelID:  g.cfg.ChannelID,
		InviterFID: g.cfg.InviterFID,
		InviteeFID: identity.FID,
		Role:       g.cfg.Role,
	}

	start := time.Now()
	receipt, err := g.issuer.IssueInvite(ctx, req)
	observability.RecordExternalCall(observability.ComponentInviter, time.Since(start).Seconds(), err)
	endSpan(span, err)
	return receipt, err
}

func (g *Gate) outcome(code domain.OutcomeCode) domain.Outcome {
	return domain.Outcome{Code: code, Message: g.msgs.Render(code, nil)}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
