package memory

import (
	"context"
	"sort"
	"sync"

	"token-gate/internal/domain"
	"token-gate/internal/storage"
)

// InviteRecordStore is an in-memory implementation of storage.InviteRecordStore.
type InviteRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.InviteRecord // keyed by record_id
}

// NewInviteRecordStore creates a new in-memory invite record store.
func NewInviteRecordStore() *InviteRecordStore {
	return &InviteRecordStore{
		data: make(map[string]*domain.InviteRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *InviteRecordStore) Insert(_ context.Context, r *domain.InviteRecord) error {
	if r == nil || r.RecordID == "" || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *r
	s.data[r.RecordID] = &recordCopy
	return nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *InviteRecordStore) GetByID(_ context.Context, recordID string) (*domain.InviteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[recordID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// GetByWallet retrieves all records for a wallet, ordered by issued_at ASC.
func (s *InviteRecordStore) GetByWallet(_ context.Context, wallet string) ([]*domain.InviteRecord, error) {
	return s.filter(func(r *domain.InviteRecord) bool {
		return r.Wallet == wallet
	}), nil
}

// GetByTimeRange retrieves records issued within [start, end] (inclusive).
func (s *InviteRecordStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.InviteRecord, error) {
	return s.filter(func(r *domain.InviteRecord) bool {
		return r.IssuedAt >= start && r.IssuedAt <= end
	}), nil
}

func (s *InviteRecordStore) filter(match func(*domain.InviteRecord) bool) []*domain.InviteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.InviteRecord
	for _, r := range s.data {
		if match(r) {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	// Sort by issued_at ASC, record_id ASC
	sort.Slice(result, func(i, j int) bool {
		if result[i].IssuedAt != result[j].IssuedAt {
			return result[i].IssuedAt < result[j].IssuedAt
		}
		return result[i].RecordID < result[j].RecordID
	})
	return result
}

// Verify interface compliance at compile time.
var _ storage.InviteRecordStore = (*InviteRecordStore)(nil)
