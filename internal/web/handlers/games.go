// =============================================================================
// FILE: internal/web/handlers/games.go
// =============================================================================
// GET /games - list the playable games (public).
// =============================================================================

package handlers

import (
	"net/http"

	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
)

// Game describes one playable game. ID is the path segment under /play.
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var availableGames = []Game{
	{
		ID:          "coinflip",
		Name:        "Coin Flip",
		Description: "Call heads or tails. A correct call returns 1.95x the stake.",
	},
	{
		ID:          "roulette",
		Name:        "Roulette",
		Description: "Single-zero wheel. Bet a number (35x), a colour, odd/even (1x) or a dozen (2x).",
	},
	{
		ID:          blackjack.GameName,
		Name:        "Blackjack",
		Description: "Beat the dealer without going over 21. Dealer stands on 17; blackjack pays 3:2.",
	},
}

// GamesHandler handles game listing requests.
type GamesHandler struct{}

// NewGamesHandler creates a new GamesHandler
func NewGamesHandler() *GamesHandler {
	return &GamesHandler{}
}

// ListGames returns the game catalogue.
// GET /games
func (h *GamesHandler) ListGames(req *web.Request, resp *web.Response) {
	resp.Send(http.StatusOK, "Games", availableGames)
}
