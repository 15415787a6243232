// =============================================================================
// FILE: internal/web/handlers/play.go
// =============================================================================
// HTTP handlers for wagers:
//   - POST /play/coinflip  - {guess, amount}
//   - POST /play/roulette  - {betType, amount}
//   - POST /play/blackjack - {action, amount?, insurance?}
//
// The card-game round lives in the caller's session. Actions on it are
// serialised per session so two tabs cannot act on the same round at once.
//
// Request (blackjack):
//
//	{ "action": "deal", "amount": 10 }
//	{ "action": "hit" }
//	{ "action": "insurance", "insurance": true }
// =============================================================================

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/apperr"
	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
	"github.com/JoshBaneyCS/casino-wagers/internal/web"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CoinflipRequest struct {
	Guess  string           `json:"guess" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type RouletteRequest struct {
	BetType string           `json:"betType" validate:"required"`
	Amount  *decimal.Decimal `json:"amount" validate:"required"`
}

type BlackjackRequest struct {
	Action    string           `json:"action" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Insurance bool             `json:"insurance"`
}

var errDealAmount = apperr.Validation("VALIDATION_ERROR", "amount is required to deal")

// =============================================================================
// HANDLER STRUCT
// =============================================================================

// PlayHandler settles wagers.
type PlayHandler struct {
	engine *wager.Engine
	game   *blackjack.Game
}

// NewPlayHandler creates a new PlayHandler
func NewPlayHandler(engine *wager.Engine, game *blackjack.Game) *PlayHandler {
	return &PlayHandler{engine: engine, game: game}
}

// Coinflip settles a heads/tails call.
// POST /play/coinflip
func (h *PlayHandler) Coinflip(req *web.Request, resp *web.Response) {
	var body CoinflipRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}
	userID, _ := req.UserID()
	res, err := h.engine.Coinflip(req.Context(), userID, body.Guess, *body.Amount)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, outcomeMessage(res.Win), res)
}

// Roulette settles a single roulette bet.
// POST /play/roulette
func (h *PlayHandler) Roulette(req *web.Request, resp *web.Response) {
	var body RouletteRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}
	userID, _ := req.UserID()
	res, err := h.engine.Roulette(req.Context(), userID, body.BetType, *body.Amount)
	if err != nil {
		resp.Fail(err)
		return
	}
	resp.Send(http.StatusOK, outcomeMessage(res.Win), res)
}

// Blackjack applies one action to the caller's round.
// POST /play/blackjack
func (h *PlayHandler) Blackjack(req *web.Request, resp *web.Response) {
	var body BlackjackRequest
	if err := req.Decode(&body); err != nil {
		resp.Fail(err)
		return
	}

	sess := req.Session
	release := sess.Play()
	defer release()

	userID, _ := req.UserID()
	round := sess.Round()
	if round != nil && round.UserID != userID {
		round = nil
	}

	switch action := strings.ToLower(strings.TrimSpace(body.Action)); action {
	case blackjack.ActionState:
		if round == nil {
			resp.Fail(blackjack.ErrNoRound)
			return
		}
		sendRound(resp, round, "Round state")

	case blackjack.ActionDeal:
		if body.Amount == nil {
			resp.Fail(errDealAmount)
			return
		}
		next, err := h.game.Deal(req.Context(), userID, round, *body.Amount)
		if next != nil {
			sess.SetRound(next)
		}
		if err != nil {
			switch {
			case next != nil:
				failRound(resp, err, next)
			case errors.Is(err, blackjack.ErrRoundInProgress):
				failRound(resp, err, round)
			default:
				resp.Fail(err)
			}
			return
		}
		sendRound(resp, next, "Cards dealt")

	default:
		err := h.game.Act(req.Context(), round, action, body.Insurance)
		if err != nil {
			failRound(resp, err, round)
			return
		}
		sendRound(resp, round, "OK")
	}
}

func sendRound(resp *web.Response, r *blackjack.Round, fallback string) {
	msg := r.Message
	if msg == "" {
		msg = fallback
	}
	resp.Send(http.StatusOK, msg, r.View())
}

// failRound answers with the error and, when there is one, the round the
// failed action left behind.
func failRound(resp *web.Response, err error, r *blackjack.Round) {
	if r == nil || errors.Is(err, blackjack.ErrNoRound) {
		resp.Fail(err)
		return
	}
	resp.FailWith(err, r.View())
}

func outcomeMessage(win bool) string {
	if win {
		return "You win"
	}
	return "You lose"
}
