// =============================================================================
// FILE: internal/web/handlers/auth.go
// =============================================================================
// HTTP handlers for credential endpoints:
//   - POST /register      - Create an account and sign in
//   - POST /login         - Sign in
//   - POST /auth/logout   - End the current session
//   - PUT  /user/password - Change password
//
// Register and Login are the only handlers that create sessions.
// =============================================================================

package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/auth"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// UserResponse is the outward form of a user. The credential never leaves.
type UserResponse struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Balance  decimal.Decimal `json:"balance"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Balance: u.Balance}
}

// =============================================================================
// HANDLER STRUCT
// =============================================================================

// AuthHandler handles credential requests.
type AuthHandler struct {
	auth     *auth.Service
	sessions *session.Store
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc *auth.Service, sessions *session.Store) *AuthHandler {
	return &AuthHandler{auth: svc, sessions: sessions}
}

// Register creates a new account and signs it in.
// POST /register
func (h *AuthHandler) Register(req *web.Request, resp *web.Response) {
	var body RegisterRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}

	u, err := h.auth.Register(req.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		resp.Fail(err)
		return
	}
	if !h.startSession(req, resp, u) {
		return
	}
	resp.Send(http.StatusCreated, "Registered", toUserResponse(u))
}

// Login verifies credentials and starts a fresh session.
// POST /login
func (h *AuthHandler) Login(req *web.Request, resp *web.Response) {
	var body LoginRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}

	u, err := h.auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		resp.Fail(err)
		return
	}
	if !h.startSession(req, resp, u) {
		return
	}
	resp.Send(http.StatusOK, "Logged in", toUserResponse(u))
}

// Logout clears the session and tells the client to drop its cookie.
// POST /auth/logout
func (h *AuthHandler) Logout(req *web.Request, resp *web.Response) {
	h.auth.Logout(req.Session)
	h.sessions.Destroy(req.Session)
	resp.SetCookie(h.sessions.ExpiredCookie())
	resp.Send(http.StatusOK, "Logged out", nil)
}

// UpdatePassword changes the caller's password.
// PUT /user/password
func (h *AuthHandler) UpdatePassword(req *web.Request, resp *web.Response) {
	var body PasswordRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}
	userID, _ := req.UserID()
	if err := h.auth.UpdatePassword(req.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "Password updated", nil)
}

// startSession replaces any session the caller already had.
func (h *AuthHandler) startSession(req *web.Request, resp *web.Response, u *users.User) bool {
	if req.Session != nil {
		h.sessions.Destroy(req.Session)
	}
	sess, err := h.sessions.Create(u.ID)
	if err != nil {
		resp.Fail(err)
		return false
	}
	resp.SetCookie(sess.Cookie())
	return true
}
