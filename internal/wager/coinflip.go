package wager

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	Heads = "heads"
	Tails = "tails"
)

// CoinflipMultiplier is the total return on a winning flip (2.5% house edge
// against a fair 2x).
var CoinflipMultiplier = decimal.RequireFromString("1.95")

type CoinflipResult struct {
	Outcome    string          `json:"outcome"`
	Win        bool            `json:"win"`
	Payout     decimal.Decimal `json:"payout"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// Coinflip settles a heads/tails guess.
func (e *Engine) Coinflip(ctx context.Context, userID int64, guess string, amount decimal.Decimal) (*CoinflipResult, error) {
	guess = strings.ToLower(strings.TrimSpace(guess))
	if guess != Heads && guess != Tails {
		return nil, ErrInvalidGuess
	}
	if err := e.preflight(ctx, userID, amount); err != nil {
		return nil, err
	}

	outcome := Heads
	if e.rng.IntN(2) == 1 {
		outcome = Tails
	}
	win := guess == outcome
	payout := decimal.Zero
	if win {
		payout = amount.Mul(CoinflipMultiplier).Round(2)
	}

	u, err := e.Apply(ctx, userID, Movement{
		Game:    "coinflip",
		Stake:   amount,
		Payout:  payout,
		Outcome: outcome,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", userID).
		Str("game", "coinflip").
		Str("guess", guess).
		Str("outcome", outcome).
		Str("amount", amount.String()).
		Str("payout", payout.String()).
		Msg("wager_settled")

	return &CoinflipResult{Outcome: outcome, Win: win, Payout: payout, NewBalance: u.Balance}, nil
}
