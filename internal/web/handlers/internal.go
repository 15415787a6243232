// =============================================================================
// FILE: internal/web/handlers/internal.go
// =============================================================================
// Operator endpoints, mounted only when INTERNAL_API_KEY is configured:
//   - GET  /internal/stats - live session and user counts
//   - POST /internal/sweep - reclaim expired sessions now
// =============================================================================

package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// StatsResponse is returned by GET /internal/stats
type StatsResponse struct {
	Sessions int `json:"sessions"`
	Users    int `json:"users"`
}

// SweepResponse is returned by POST /internal/sweep
type SweepResponse struct {
	Removed int `json:"removed"`
}

// =============================================================================
// HANDLER STRUCT
// =============================================================================

// InternalHandler serves operator requests.
type InternalHandler struct {
	sessions *session.Store
	repo     users.Repository
}

// NewInternalHandler creates a new InternalHandler
func NewInternalHandler(store *session.Store, repo users.Repository) *InternalHandler {
	return &InternalHandler{sessions: store, repo: repo}
}

// Stats reports process counters.
// GET /internal/stats
//
// Response (200 OK):
//
//	{ "message": "OK", "payload": { "sessions": 3, "users": 12 } }
func (h *InternalHandler) Stats(req *web.Request, resp *web.Response) {
	count, err := h.repo.Count(req.Context())
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, "OK", StatsResponse{Sessions: h.sessions.Len(), Users: count})
}

// Sweep drops expired sessions immediately.
// POST /internal/sweep
func (h *InternalHandler) Sweep(req *web.Request, resp *web.Response) {
	removed := h.sessions.Sweep()
	log.Info().Int("removed", removed).Msg("session_sweep_forced")
	resp.Send(http.StatusOK, "Sweep complete", SweepResponse{Removed: removed})
}
