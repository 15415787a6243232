// =============================================================================
// FILE: internal/web/handlers/user.go
// =============================================================================
// HTTP handlers for the signed-in user's account:
//   - GET  /profile      - Profile and balance
//   - PUT  /user/profile - Change display name and email
//   - POST /user/balance - Set balance
//   - GET  /user/wagers  - Recent balance movements
//   - GET  /leaderboard  - Top balances (public)
// =============================================================================

package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/auth"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
)

// WagerHistorySize is how many ledger entries /user/wagers returns.
const WagerHistorySize = 50

type ProfileRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type BalanceRequest struct {
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

type ProfileResponse struct {
	UserResponse
	CreatedAt string `json:"createdAt"`
}

type LeaderboardEntry struct {
	Rank     int             `json:"rank"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// UserHandler handles account requests.
type UserHandler struct {
	auth            *auth.Service
	engine          *wager.Engine
	repo            users.Repository
	leaderboardSize int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(svc *auth.Service, engine *wager.Engine, repo users.Repository, leaderboardSize int) *UserHandler {
	return &UserHandler{auth: svc, engine: engine, repo: repo, leaderboardSize: leaderboardSize}
}

// Profile returns the caller's profile.
// GET /profile
func (h *UserHandler) Profile(req *web.Request, resp *web.Response) {
	userID, _ := req.UserID()
	u, err := h.auth.GetProfile(req.Context(), userID)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "Profile", ProfileResponse{
		UserResponse: toUserResponse(u),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	})
}

// UpdateProfile changes name and email.
// PUT /user/profile
func (h *UserHandler) UpdateProfile(req *web.Request, resp *web.Response) {
	var body ProfileRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}
	userID, _ := req.UserID()
	u, err := h.auth.UpdateProfile(req.Context(), userID, body.Name, body.Email)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "Profile updated", ProfileResponse{
		UserResponse: toUserResponse(u),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	})
}

// SetBalance overwrites the caller's balance.
// POST /user/balance
func (h *UserHandler) SetBalance(req *web.Request, resp *web.Response) {
	var body BalanceRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}
	userID, _ := req.UserID()
	u, err := h.engine.SetBalance(req.Context(), userID, *body.Balance)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "Balance updated", map[string]decimal.Decimal{"balance": u.Balance})
}

// Wagers lists the caller's latest balance movements, newest first.
// GET /user/wagers
func (h *UserHandler) Wagers(req *web.Request, resp *web.Response) {
	userID, _ := req.UserID()
	entries, err := h.repo.ListWagers(req.Context(), userID, WagerHistorySize)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "Wagers", entries)
}

// Leaderboard lists the top balances, highest first.
// GET /leaderboard
func (h *UserHandler) Leaderboard(req *web.Request, resp *web.Response) {
	top, err := h.repo.TopByBalance(req.Context(), h.leaderboardSize)
	if err != nil {
		resp.Fail(err)
		return
	}
	out := make([]LeaderboardEntry, 0, len(top))
	for i, u := range top {
		out = append(out, LeaderboardEntry{Rank: i + 1, Username: u.Username, Balance: u.Balance})
	}
	resp.Send(http.StatusOK, "Leaderboard", out)
}
