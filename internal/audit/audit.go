// Package audit records eligibility checks and issued invites.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"token-gate/internal/domain"
	"token-gate/internal/idhash"
	"token-gate/internal/observability"
	"token-gate/internal/storage"
)

// Store names used in metrics.
const (
	storeChecks  = "eligibility_checks"
	storeInvites = "invite_records"
)

const defaultWriteTimeout = 5 * time.Second

// Checker runs an eligibility check.
type Checker interface {
	Check(ctx context.Context, rawAddress string) domain.Outcome
}

// Recorder writes audit rows. Failures are logged and counted, never returned.
type Recorder struct {
	checks       storage.EligibilityCheckStore
	invites      storage.InviteRecordStore
	inviterFID   uint64
	writeTimeout time.Duration
	now          func() time.Time
	newID        func() string
	logger       *log.Logger
}

// RecorderOptions contains configuration for creating a Recorder.
type RecorderOptions struct {
	Checks       storage.EligibilityCheckStore // optional
	Invites      storage.InviteRecordStore     // optional
	InviterFID   uint64
	WriteTimeout time.Duration // Default: 5s
	Now          func() time.Time
	Logger       *log.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(opts RecorderOptions) *Recorder {
	writeTimeout := opts.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Recorder{
		checks:       opts.Checks,
		invites:      opts.Invites,
		inviterFID:   opts.InviterFID,
		writeTimeout: writeTimeout,
		now:          now,
		newID:        func() string { return uuid.NewString() },
		logger:       logger,
	}
}

// Record stores one completed check and, for sent invites, the invite.
// It detaches from ctx cancellation so a disconnected caller still leaves a trail.
func (r *Recorder) Record(ctx context.Context, rawAddress string, out domain.Outcome, latency time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
	defer cancel()

	wallet := ""
	if w, err := domain.ParseWalletAddress(rawAddress); err == nil {
		wallet = w.String()
	}
	checkedAt := r.now().UnixMilli()

	if r.checks != nil {
		check := &domain.EligibilityCheck{
			CheckID:   r.newID(),
			Wallet:    wallet,
			Outcome:   out.Code,
			CheckedAt: checkedAt,
			LatencyMs: latency.Milliseconds(),
		}
		if out.Balance != nil {
			b := out.Balance.String()
			check.Balance = &b
		}

		err := r.checks.Insert(ctx, check)
		observability.RecordAuditWrite(storeChecks, err)
		if err != nil {
			r.logger.Printf("write eligibility check %s: %v", check.CheckID, err)
		}
	}

	if r.invites != nil && out.Code == domain.OutcomeInviteSent && out.Receipt != nil {
		rec := out.Receipt
		record := &domain.InviteRecord{
			RecordID:   idhash.ComputeInviteRecordID(wallet, rec.InviteeFID, rec.ChannelID, rec.IssuedAt),
			Wallet:     wallet,
			InviteeFID: rec.InviteeFID,
			InviterFID: r.inviterFID,
			ChannelID:  rec.ChannelID,
			Role:       rec.Role,
			IssuedAt:   rec.IssuedAt,
			CreatedAt:  checkedAt,
		}

		err := r.invites.Insert(ctx, record)
		if errors.Is(err, storage.ErrDuplicateKey) {
			err = r.confirmRecorded(ctx, record)
		}
		observability.RecordAuditWrite(storeInvites, err)
		if err != nil {
			r.logger.Printf("write invite record %s: %v", record.RecordID, err)
		}
	}
}

// confirmRecorded accepts a duplicate record id when the stored row is the same invite.
func (r *Recorder) confirmRecorded(ctx context.Context, record *domain.InviteRecord) error {
	existing, err := r.invites.GetByID(ctx, record.RecordID)
	if err != nil {
		return fmt.Errorf("load existing invite record: %w", err)
	}
	if existing.Wallet != record.Wallet ||
		existing.InviteeFID != record.InviteeFID ||
		existing.ChannelID != record.ChannelID ||
		existing.IssuedAt != record.IssuedAt {
		return fmt.Errorf("%w: stored record differs", storage.ErrDuplicateKey)
	}
	r.logger.Printf("invite record %s already recorded", record.RecordID)
	return nil
}

// Gate wraps a Checker and records every outcome it returns.
type Gate struct {
	next     Checker
	recorder *Recorder
}

// Wrap returns a Checker that audits next. A nil recorder disables auditing.
func Wrap(next Checker, recorder *Recorder) Checker {
	if recorder == nil {
		return next
	}
	return &Gate{next: next, recorder: recorder}
}

// Check runs the wrapped check and records the outcome.
func (g *Gate) Check(ctx context.Context, rawAddress string) domain.Outcome {
	start := time.Now()
	out := g.next.Check(ctx, rawAddress)
	g.recorder.Record(ctx, rawAddress, out, time.Since(start))
	return out
}
