// =============================================================================
// FILE: internal/session/store.go
// =============================================================================
// Process-wide session registry.
//
// Sessions live in this process only. Expired sessions behave exactly like
// missing ones; the sweeper reclaims their memory later.
//
// Usage:
//   store := session.NewStore(session.Options{Secret: cfg.SessionSecret, TTL: cfg.SessionTTL})
//   sess, err := store.Create(user.ID)
//   resp.SetCookie(sess.Cookie())
// =============================================================================

package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
)

const (
	DefaultCookieName = "casino_session"
	DefaultTTL        = 24 * time.Hour
)

// Options configures a Store.
type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool

	// ReleaseRound is called with every unsettled round a session drops on
	// logout, destroy or sweep. Optional.
	ReleaseRound func(*blackjack.Round)
}

// Store maps session ids to sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	signer     *TokenSigner
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
	release    func(*blackjack.Round)
}

// NewStore creates an empty Store. Missing cookie name and TTL take the
// package defaults.
func NewStore(opts Options) *Store {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Store{
		sessions:   make(map[string]*Session),
		signer:     NewTokenSigner(opts.Secret),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
		release:    opts.ReleaseRound,
	}
}

func (s *Store) CookieName() string { return s.cookieName }

func (s *Store) TTL() time.Duration { return s.ttl }

// Create registers a new authenticated session with the default lifetime.
func (s *Store) Create(userID int64) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	sess := &Session{ID: id.String(), userID: userID, release: s.release}
	if err := s.setExpiry(sess, s.now().Add(s.ttl)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Resolve finds the live session behind a cookie value. Unknown, forged and
// expired values all report false.
func (s *Store) Resolve(cookieValue string) (*Session, bool) {
	if cookieValue == "" {
		return nil, false
	}
	id, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.IsExpired(s.now()) {
		return nil, false
	}
	return sess, true
}

// ResolveRequest resolves the session cookie carried by r, if any.
func (s *Store) ResolveRequest(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, false
	}
	return s.Resolve(c.Value)
}

// Refresh slides the session's expiry forward and re-issues its cookie.
func (s *Store) Refresh(sess *Session, extension time.Duration) error {
	if extension <= 0 {
		extension = s.ttl
	}
	return s.setExpiry(sess, s.now().Add(extension))
}

// Destroy clears the session's data, expires its cookie and forgets it.
func (s *Store) Destroy(sess *Session) {
	sess.mu.Lock()
	sess.userID = 0
	dropped := sess.takeRound()
	sess.expires = s.now()
	sess.cookie = expiredCookie(s.cookieName, s.secure)
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	sess.releaseRound(dropped)
}

// ExpiredCookie returns a cookie that makes the client drop its session.
func (s *Store) ExpiredCookie() Cookie {
	return expiredCookie(s.cookieName, s.secure)
}

// Sweep removes expired sessions, releases their open rounds and returns
// how many sessions were removed.
func (s *Store) Sweep() int {
	now := s.now()
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.mu.Lock()
		dropped := sess.takeRound()
		sess.mu.Unlock()
		sess.releaseRound(dropped)
	}
	return len(expired)
}

// Len reports the number of registered sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) setExpiry(sess *Session, expires time.Time) error {
	// Cookies and tokens carry whole seconds.
	expires = expires.Truncate(time.Second)
	token, err := s.signer.Sign(sess.ID, expires)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	sess.mu.Lock()
	sess.expires = expires
	sess.cookie = Cookie{Name: s.cookieName, Value: token, Expires: expires, Secure: s.secure}
	sess.mu.Unlock()
	return nil
}
