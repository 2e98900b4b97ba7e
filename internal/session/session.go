package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// State is the authenticated context every backend call runs under:
// bearer token, the user it belongs to, and the currently selected
// league. It replaces ad hoc storage lookups with one injected object.
type State struct {
	Token    string `json:"-"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	LeagueID string `json:"leagueId"`
}

type Session struct {
	mu     sync.RWMutex
	state  State
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Session {
	return &Session{logger: logger}
}

func (s *Session) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.logger.Debug().
		Str("user_id", state.UserID).
		Str("league_id", state.LeagueID).
		Msg("session updated")
}

func (s *Session) SelectLeague(leagueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LeagueID = leagueID
}

// Clear drops the session. Called when the backend answers 401: the
// token is no longer valid and keeping it would only produce more
// rejected calls.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.logger.Info().Msg("session cleared")
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}
