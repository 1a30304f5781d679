package clickhouse

import (
	"context"
	"fmt"
	"time"

	"token-gate/internal/domain"
	"token-gate/internal/storage"
)

// EligibilityCheckStore implements storage.EligibilityCheckStore using ClickHouse.
type EligibilityCheckStore struct {
	conn *Conn
}

// NewEligibilityCheckStore creates a new EligibilityCheckStore.
func NewEligibilityCheckStore(conn *Conn) *EligibilityCheckStore {
	return &EligibilityCheckStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EligibilityCheckStore = (*EligibilityCheckStore)(nil)

// Insert adds a new check. Returns ErrDuplicateKey if check_id exists.
func (s *EligibilityCheckStore) Insert(ctx context.Context, c *domain.EligibilityCheck) error {
	if c == nil || c.CheckID == "" || !c.Outcome.IsValid() {
		return storage.ErrInvalidInput
	}

	// MergeTree does not enforce uniqueness.
	exists, err := s.exists(ctx, c.CheckID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO eligibility_checks (
			check_id, wallet, outcome, balance, checked_at, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		c.CheckID,
		c.Wallet,
		string(c.Outcome),
		c.Balance,
		uint64(c.CheckedAt),
		uint64(c.LatencyMs),
	)
	if err != nil {
		return fmt.Errorf("insert eligibility check: %w", err)
	}
	return nil
}

// GetByWallet retrieves all checks for a wallet, ordered by checked_at ASC.
func (s *EligibilityCheckStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.EligibilityCheck, error) {
	query := `
		SELECT check_id, wallet, outcome, balance, checked_at, latency_ms
		FROM eligibility_checks
		WHERE wallet = ?
		ORDER BY checked_at ASC, check_id ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query eligibility checks: %w", err)
	}
	defer rows.Close()

	var result []*domain.EligibilityCheck
	for rows.Next() {
		var (
			c         domain.EligibilityCheck
			outcome   string
			checkedAt uint64
			latencyMs uint64
		)
		if err := rows.Scan(&c.CheckID, &c.Wallet, &outcome, &c.Balance, &checkedAt, &latencyMs); err != nil {
			return nil, fmt.Errorf("scan eligibility check: %w", err)
		}
		c.Outcome = domain.OutcomeCode(outcome)
		c.CheckedAt = int64(checkedAt)
		c.LatencyMs = int64(latencyMs)
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligibility checks: %w", err)
	}

	return result, nil
}

// CountByOutcome counts checks within [start, end] (inclusive) per outcome.
func (s *EligibilityCheckStore) CountByOutcome(ctx context.Context, start, end int64) (map[domain.OutcomeCode]uint64, error) {
	query := `
		SELECT outcome, count(*)
		FROM eligibility_checks
		WHERE checked_at >= ? AND checked_at <= ?
		GROUP BY outcome
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("count eligibility checks: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OutcomeCode]uint64)
	for rows.Next() {
		var outcome string
		var n uint64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[domain.OutcomeCode(outcome)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}

	return counts, nil
}

func (s *EligibilityCheckStore) exists(ctx context.Context, checkID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM eligibility_checks WHERE check_id = ?`, checkID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
