package store

import (
	"sync"
	"time"

	"fantasy-market/internal/domain"
)

// ActivityStore holds the last polled transaction feed per league.
type ActivityStore struct {
	mu        sync.RWMutex
	snapshots map[string]ActivitySnapshot
}

type ActivitySnapshot struct {
	Transactions []domain.Transaction `json:"transactions"`
	FetchedAt    time.Time            `json:"fetchedAt"`
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		snapshots: make(map[string]ActivitySnapshot),
	}
}

func (s *ActivityStore) Set(leagueID string, txs []domain.Transaction, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[leagueID] = ActivitySnapshot{Transactions: txs, FetchedAt: fetchedAt}
}

func (s *ActivityStore) Get(leagueID string) (ActivitySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[leagueID]
	return snap, ok
}
