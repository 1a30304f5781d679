// Package reporting renders audit summaries from the check and invite stores.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-gate/internal/domain"
	"token-gate/internal/storage"
)

// ErrInvalidWindow is returned when the window end precedes its start.
var ErrInvalidWindow = errors.New("invalid report window")

// Generator produces reports from stored data.
type Generator struct {
	checkStore  storage.EligibilityCheckStore
	inviteStore storage.InviteRecordStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(checks storage.EligibilityCheckStore, invites storage.InviteRecordStore) *Generator {
	return &Generator{
		checkStore:  checks,
		inviteStore: invites,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for checks and invites within [start, end] (Unix ms, inclusive).
func (g *Generator) Generate(ctx context.Context, start, end int64) (*Report, error) {
	if end < start {
		return nil, fmt.Errorf("%w: end %d before start %d", ErrInvalidWindow, end, start)
	}

	counts, err := g.checkStore.CountByOutcome(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count checks: %w", err)
	}

	records, err := g.inviteStore.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load invites: %w", err)
	}

	outcomes, total := outcomeRows(counts)
	invites, wallets := inviteRows(records)

	return &Report{
		GeneratedAt: g.now(),
		WindowStart: start,
		WindowEnd:   end,
		Summary: Summary{
			TotalChecks:   total,
			InvitesIssued: len(invites),
			UniqueWallets: wallets,
			EligibleRate:  eligibleRate(counts),
			InviteRate:    ratio(counts[domain.OutcomeInviteSent], total),
		},
		Outcomes: outcomes,
		Invites:  invites,
	}, nil
}

// WalletHistory loads every check and invite recorded for rawWallet, regardless of window.
func (g *Generator) WalletHistory(ctx context.Context, rawWallet string) (*WalletHistory, error) {
	wallet, err := domain.ParseWalletAddress(rawWallet)
	if err != nil {
		return nil, err
	}

	checks, err := g.checkStore.GetByWallet(ctx, wallet.String())
	if err != nil {
		return nil, fmt.Errorf("load checks: %w", err)
	}

	records, err := g.inviteStore.GetByWallet(ctx, wallet.String())
	if err != nil {
		return nil, fmt.Errorf("load invites: %w", err)
	}

	rows := make([]CheckRow, len(checks))
	for i, c := range checks {
		rows[i] = CheckRow{
			CheckID:   c.CheckID,
			Outcome:   c.Outcome,
			CheckedAt: c.CheckedAt,
			LatencyMs: c.LatencyMs,
		}
		if c.Balance != nil {
			rows[i].Balance = *c.Balance
		}
	}
	invites, _ := inviteRows(records)

	return &WalletHistory{
		Wallet:  wallet.String(),
		Checks:  rows,
		Invites: invites,
	}, nil
}

// outcomeRows lists every known outcome, including zero counts.
func outcomeRows(counts map[domain.OutcomeCode]uint64) ([]OutcomeRow, uint64) {
	var total uint64
	for _, code := range domain.AllOutcomeCodes {
		total += counts[code]
	}

	rows := make([]OutcomeRow, len(domain.AllOutcomeCodes))
	for i, code := range domain.AllOutcomeCodes {
		rows[i] = OutcomeRow{
			Outcome:   code,
			Count:     counts[code],
			Share:     ratio(counts[code], total),
			Retryable: code.Retryable(),
		}
	}
	return rows, total
}

func inviteRows(records []*domain.InviteRecord) ([]InviteRow, int) {
	wallets := make(map[string]struct{}, len(records))
	rows := make([]InviteRow, len(records))
	for i, r := range records {
		wallets[r.Wallet] = struct{}{}
		rows[i] = InviteRow{
			RecordID:   r.RecordID,
			Wallet:     r.Wallet,
			InviteeFID: r.InviteeFID,
			ChannelID:  r.ChannelID,
			Role:       r.Role,
			IssuedAt:   r.IssuedAt,
		}
	}
	return rows, len(wallets)
}

func eligibleRate(counts map[domain.OutcomeCode]uint64) float64 {
	eligible := counts[domain.OutcomeNoLinkedIdentity] +
		counts[domain.OutcomeAlreadyMemberOrRejected] +
		counts[domain.OutcomeInviteSent]
	return ratio(eligible, eligible+counts[domain.OutcomeIneligible])
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
