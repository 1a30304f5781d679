package storage

import (
	"context"

	"token-gate/internal/domain"
)

// InviteRecordStore provides access to invite_records storage.
type InviteRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.InviteRecord) error

	// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, recordID string) (*domain.InviteRecord, error)

	// GetByWallet retrieves all records for a wallet, ordered by issued_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.InviteRecord, error)

	// GetByTimeRange retrieves records issued within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.InviteRecord, error)
}

// EligibilityCheckStore provides access to eligibility_checks storage.
type EligibilityCheckStore interface {
	// Insert adds a new check. Returns ErrDuplicateKey if check_id exists.
	Insert(ctx context.Context, c *domain.EligibilityCheck) error

	// GetByWallet retrieves all checks for a wallet, ordered by checked_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.EligibilityCheck, error)

	// CountByOutcome counts checks within [start, end] (inclusive) per outcome.
	CountByOutcome(ctx context.Context, start, end int64) (map[domain.OutcomeCode]uint64, error)
}
