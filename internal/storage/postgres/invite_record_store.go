package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"token-gate/internal/domain"
	"token-gate/internal/storage"
)

// InviteRecordStore implements storage.InviteRecordStore using PostgreSQL.
type InviteRecordStore struct {
	pool *Pool
}

// NewInviteRecordStore creates a new InviteRecordStore.
func NewInviteRecordStore(pool *Pool) *InviteRecordStore {
	return &InviteRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InviteRecordStore = (*InviteRecordStore)(nil)

const inviteRecordColumns = `record_id, wallet, invitee_fid, inviter_fid, channel_id, role, issued_at, created_at`

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
// A zero CreatedAt is stamped by the database.
func (s *InviteRecordStore) Insert(ctx context.Context, r *domain.InviteRecord) error {
	args, err := insertArgs(r)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invite_records (
			` + inviteRecordColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7,
			COALESCE($8, (EXTRACT(EPOCH FROM now()) * 1000)::BIGINT))
	`

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert invite record: %w", err)
	}
	return nil
}

// insertArgs validates r and returns the Insert parameters in column order.
func insertArgs(r *domain.InviteRecord) ([]any, error) {
	if r == nil || r.RecordID == "" || r.Wallet == "" {
		return nil, storage.ErrInvalidInput
	}
	// FIDs are stored as BIGINT.
	if r.InviteeFID > math.MaxInt64 || r.InviterFID > math.MaxInt64 {
		return nil, fmt.Errorf("%w: fid exceeds BIGINT range", storage.ErrInvalidInput)
	}

	var createdAt *int64
	if r.CreatedAt != 0 {
		createdAt = &r.CreatedAt
	}

	return []any{
		r.RecordID,
		r.Wallet,
		int64(r.InviteeFID),
		int64(r.InviterFID),
		r.ChannelID,
		r.Role,
		r.IssuedAt,
		createdAt,
	}, nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *InviteRecordStore) GetByID(ctx context.Context, recordID string) (*domain.InviteRecord, error) {
	query := `SELECT ` + inviteRecordColumns + ` FROM invite_records WHERE record_id = $1`

	r, err := scanInviteRecord(s.pool.QueryRow(ctx, query, recordID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get invite record by id: %w", err)
	}
	return r, nil
}

// GetByWallet retrieves all records for a wallet, ordered by issued_at ASC.
func (s *InviteRecordStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.InviteRecord, error) {
	query := `
		SELECT ` + inviteRecordColumns + `
		FROM invite_records
		WHERE wallet = $1
		ORDER BY issued_at ASC, record_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get invite records by wallet: %w", err)
	}
	defer rows.Close()

	return scanInviteRecords(rows)
}

// GetByTimeRange retrieves records issued within [start, end] (inclusive).
func (s *InviteRecordStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.InviteRecord, error) {
	query := `
		SELECT ` + inviteRecordColumns + `
		FROM invite_records
		WHERE issued_at >= $1 AND issued_at <= $2
		ORDER BY issued_at ASC, record_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get invite records by time range: %w", err)
	}
	defer rows.Close()

	return scanInviteRecords(rows)
}

// scanInviteRecord scans a single row into an InviteRecord.
func scanInviteRecord(row pgx.Row) (*domain.InviteRecord, error) {
	var r domain.InviteRecord
	var inviteeFID, inviterFID int64

	err := row.Scan(
		&r.RecordID,
		&r.Wallet,
		&inviteeFID,
		&inviterFID,
		&r.ChannelID,
		&r.Role,
		&r.IssuedAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.InviteeFID = uint64(inviteeFID)
	r.InviterFID = uint64(inviterFID)
	return &r, nil
}

// scanInviteRecords scans multiple rows into a slice.
func scanInviteRecords(rows pgx.Rows) ([]*domain.InviteRecord, error) {
	var result []*domain.InviteRecord
	for rows.Next() {
		r, err := scanInviteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invite records: %w", err)
	}
	return result, nil
}
