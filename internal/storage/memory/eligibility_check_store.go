package memory

import (
	"context"
	"sort"
	"sync"

	"token-gate/internal/domain"
	"token-gate/internal/storage"
)

// EligibilityCheckStore is an in-memory implementation of storage.EligibilityCheckStore.
type EligibilityCheckStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EligibilityCheck // keyed by check_id
}

// NewEligibilityCheckStore creates a new in-memory eligibility check store.
func NewEligibilityCheckStore() *EligibilityCheckStore {
	return &EligibilityCheckStore{
		data: make(map[string]*domain.EligibilityCheck),
	}
}

// Insert adds a new check. Returns ErrDuplicateKey if check_id exists.
func (s *EligibilityCheckStore) Insert(_ context.Context, c *domain.EligibilityCheck) error {
	if c == nil || c.CheckID == "" || !c.Outcome.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CheckID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[c.CheckID] = copyCheck(c)
	return nil
}

// GetByWallet retrieves all checks for a wallet, ordered by checked_at ASC.
func (s *EligibilityCheckStore) GetByWallet(_ context.Context, wallet string) ([]*domain.EligibilityCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EligibilityCheck
	for _, c := range s.data {
		if c.Wallet == wallet {
			result = append(result, copyCheck(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CheckedAt != result[j].CheckedAt {
			return result[i].CheckedAt < result[j].CheckedAt
		}
		return result[i].CheckID < result[j].CheckID
	})

	return result, nil
}

// CountByOutcome counts checks within [start, end] (inclusive) per outcome.
func (s *EligibilityCheckStore) CountByOutcome(_ context.Context, start, end int64) (map[domain.OutcomeCode]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.OutcomeCode]uint64)
	for _, c := range s.data {
		if c.CheckedAt >= start && c.CheckedAt <= end {
			counts[c.Outcome]++
		}
	}
	return counts, nil
}

// copyCheck deep-copies c including the optional balance.
func copyCheck(c *domain.EligibilityCheck) *domain.EligibilityCheck {
	checkCopy := *c
	if c.Balance != nil {
		b := *c.Balance
		checkCopy.Balance = &b
	}
	return &checkCopy
}

// Verify interface compliance at compile time.
var _ storage.EligibilityCheckStore = (*EligibilityCheckStore)(nil)
