// =============================================================================
// FILE: internal/web/middleware.go
// =============================================================================
// Session middleware for the router.
//
//   LoadSession   - resolve the session cookie (if any) on every request
//   RequireAuth   - 401 unless the session is authenticated; slides expiry
//   LimitBets     - per-user bet rate limit (optional)
//   RequireAPIKey - bearer key for operator routes
//
// A cookie for an unknown, forged, expired or destroyed session behaves
// exactly like no cookie at all.
// =============================================================================

package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/JoshBaneyCS/casino-wagers/internal/ratelimit"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
)

type contextKey int

const (
	sessionContextKey contextKey = iota
	refreshedContextKey
)

// SessionFrom returns the session resolved for the request, or nil.
func SessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

func refreshed(ctx context.Context) bool {
	ok, _ := ctx.Value(refreshedContextKey).(bool)
	return ok
}

// LoadSession attaches the caller's live session to the request context.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := store.ResolveRequest(r); ok {
				r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects callers without an authenticated session and extends
// the session of those with one. The refreshed cookie goes out with the
// handler's response.
func RequireAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			if sess == nil {
				NewResponse(w).Fail(ErrAuthRequired)
				return
			}
			if _, ok := sess.UserID(); !ok {
				NewResponse(w).Fail(ErrAuthRequired)
				return
			}
			if err := store.Refresh(sess, store.TTL()); err != nil {
				NewResponse(w).Fail(err)
				return
			}
			ctx := context.WithValue(r.Context(), refreshedContextKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LimitBets applies limiter to authenticated callers. A nil limiter
// disables the check. Limiter outages let the bet through.
func LimitBets(limiter ratelimit.Limiter, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFrom(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := sess.UserID()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), userID, action)
			if err != nil {
				log.Warn().Err(err).Int64("user_id", userID).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.Info().Int64("user_id", userID).Str("action", action).Msg("bet_rate_limited")
				NewResponse(w).Fail(ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey checks "Authorization: Bearer <key>" against key.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				NewResponse(w).Fail(ErrAuthRequired.WithMessage("Invalid API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
