package memory

import (
	"context"
	"sync"

	"quiz-runner/internal/domain"
)

// HistoryStore keeps attempt records per user in memory.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string][]domain.AttemptRecord
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{records: make(map[string][]domain.AttemptRecord)}
}

func (s *HistoryStore) Record(_ context.Context, rec domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
	return nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *HistoryStore) List(_ context.Context, userID string, limit int) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.records[userID]
	n := len(all)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.AttemptRecord, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
