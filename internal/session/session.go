package session

import (
	"sync"
	"time"

	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
)

// Session is one caller's server-side state. Its data is a closed set of
// optional fields: the authenticated user and the pending card-game round.
type Session struct {
	ID string

	mu      sync.RWMutex
	expires time.Time
	userID  int64
	round   *blackjack.Round
	cookie  Cookie

	play sync.Mutex

	// release frees the shoe of a round dropped before settlement.
	release func(*blackjack.Round)
}

// UserID returns the authenticated user, if any.
func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != 0
}

func (s *Session) SetUserID(id int64) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

// ClearUser drops the authenticated user and any round in progress.
func (s *Session) ClearUser() {
	s.mu.Lock()
	s.userID = 0
	dropped := s.takeRound()
	s.mu.Unlock()
	s.releaseRound(dropped)
}

func (s *Session) Round() *blackjack.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// SetRound replaces the pending round. An unsettled round it replaces is
// released.
func (s *Session) SetRound(r *blackjack.Round) {
	s.mu.Lock()
	var dropped *blackjack.Round
	if s.round != r {
		dropped = s.takeRound()
	}
	s.round = r
	s.mu.Unlock()
	s.releaseRound(dropped)
}

// takeRound detaches the pending round. s.mu must be held.
func (s *Session) takeRound() *blackjack.Round {
	r := s.round
	s.round = nil
	return r
}

func (s *Session) releaseRound(r *blackjack.Round) {
	if r == nil || r.Settled() || s.release == nil {
		return
	}
	s.release(r)
}

func (s *Session) Expires() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// IsExpired reports whether the expiry instant is at or before now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.Expires().After(now)
}

// Cookie returns the cookie that currently represents the session.
func (s *Session) Cookie() Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookie
}

// Play serialises card-game actions within the session. Call the returned
// func to release.
func (s *Session) Play() (release func()) {
	s.play.Lock()
	return s.play.Unlock
}
