package store

import (
	"sync"

	"fantasy-market/internal/domain"
)

// OwnerStore is the per-league denormalized ownership read-model:
// playerId -> owner username, current user excluded. It is a cache with
// no authority; Replace rebuilds it from the backend listing at any
// time.
type OwnerStore struct {
	mu     sync.RWMutex
	owners map[string]map[string]string // leagueID -> playerID -> username
}

func NewOwnerStore() *OwnerStore {
	return &OwnerStore{
		owners: make(map[string]map[string]string),
	}
}

// Replace rebuilds a league's map from an owners listing, dropping
// rows that belong to currentUserID: the user's own holdings live in
// their roster, not here.
func (s *OwnerStore) Replace(leagueID, currentUserID string, owners []domain.Owner) {
	m := make(map[string]string, len(owners))
	for _, o := range owners {
		if o.UserID == currentUserID {
			continue
		}
		m[o.PlayerID] = o.OwnerUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[leagueID] = m
}

// Owner returns the displayed name of the player's owner, if another
// user holds it.
func (s *OwnerStore) Owner(leagueID, playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.owners[leagueID][playerID]
	return name, ok
}

// Snapshot returns a copy of a league's map.
func (s *OwnerStore) Snapshot(leagueID string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := make(map[string]string, len(s.owners[leagueID]))
	for id, name := range s.owners[leagueID] {
		m[id] = name
	}
	return m
}
