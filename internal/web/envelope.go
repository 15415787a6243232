// =============================================================================
// FILE: internal/web/envelope.go
// =============================================================================
// Request/response envelope shared by every handler.
//
// Every reply has the body {message, payload?}. Cookies queued with
// SetCookie are emitted together when Send runs. When the auth middleware
// refreshed the caller's session, its current cookie is emitted too unless
// the handler queued a cookie with the same name (login, logout).
//
// Usage:
//   r.Post("/login", web.Handle(h.Login))
//
//   func (h *AuthHandler) Login(req *web.Request, resp *web.Response) {
//       resp.SetCookie(sess.Cookie())
//       resp.Send(http.StatusOK, "Logged in", payload)
//   }
// =============================================================================

package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/session"
)

func init() {
	// Balances and payouts go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Body is the JSON shape of every response.
type Body struct {
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// Request is an inbound call with its resolved session (nil when the caller
// has none).
type Request struct {
	*http.Request
	Session *session.Session
}

// UserID returns the authenticated user, if any.
func (r *Request) UserID() (int64, bool) {
	if r.Session == nil {
		return 0, false
	}
	return r.Session.UserID()
}

// Response is the outbound half of a call. Send must be called exactly once.
type Response struct {
	w       http.ResponseWriter
	cookies []session.Cookie
	tracked *session.Session
	sent    bool
}

// NewResponse creates a new Response writing to w.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// SetCookie queues a cookie. Calls accumulate; nothing is replaced.
func (r *Response) SetCookie(c session.Cookie) {
	r.cookies = append(r.cookies, c)
}

// Send writes status, the queued cookies and the JSON body.
func (r *Response) Send(status int, message string, payload any) {
	if r.sent {
		log.Warn().Int("status", status).Str("message", message).Msg("response already sent")
		return
	}
	r.sent = true

	h := r.w.Header()
	for _, c := range r.outgoingCookies() {
		h.Add("Set-Cookie", c.String())
	}
	h.Set("Content-Type", "application/json")
	r.w.WriteHeader(status)

	if err := json.NewEncoder(r.w).Encode(Body{Message: message, Payload: payload}); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// Sent reports whether Send has run.
func (r *Response) Sent() bool { return r.sent }

func (r *Response) outgoingCookies() []session.Cookie {
	if r.tracked == nil {
		return r.cookies
	}
	current := r.tracked.Cookie()
	for _, c := range r.cookies {
		if c.Name == current.Name {
			return r.cookies
		}
	}
	return append([]session.Cookie{current}, r.cookies...)
}

// HandlerFunc handles one call through the envelope.
type HandlerFunc func(req *Request, resp *Response)

// Handle adapts a HandlerFunc to net/http.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := NewResponse(w)
		sess := SessionFrom(r.Context())
		if sess != nil && refreshed(r.Context()) {
			resp.tracked = sess
		}
		fn(&Request{Request: r, Session: sess}, resp)
		if !resp.sent {
			log.Error().Str("path", r.URL.Path).Msg("handler returned without a response")
			resp.Send(http.StatusInternalServerError, internalMessage, nil)
		}
	}
}
