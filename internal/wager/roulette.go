package wager

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	Red   = "red"
	Black = "black"
	Green = "green"
)

// Pockets is the number of pockets on a single-zero wheel.
const Pockets = 37

// redPockets is the standard single-zero wheel colouring.
var redPockets = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

const (
	straightMultiplier  = 35
	evenMoneyMultiplier = 1
	dozenMultiplier     = 2
)

// PocketColor returns the colour of pocket n.
func PocketColor(n int) string {
	switch {
	case n == 0:
		return Green
	case redPockets[n]:
		return Red
	default:
		return Black
	}
}

type RouletteResult struct {
	Result     int             `json:"result"`
	Color      string          `json:"color"`
	Win        bool            `json:"win"`
	Payout     decimal.Decimal `json:"payout"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// rouletteMultiplier matches a selector against a pocket and returns the
// payout multiplier, or 0 on a loss. Only the first matching rule applies.
func rouletteMultiplier(selector string, pocket int) int64 {
	if n, err := strconv.Atoi(selector); err == nil && strconv.Itoa(n) == selector {
		if n == pocket {
			return straightMultiplier
		}
		return 0
	}

	switch selector {
	case Red, Black, Green:
		if PocketColor(pocket) == selector {
			return evenMoneyMultiplier
		}
	case "even":
		if pocket != 0 && pocket%2 == 0 {
			return evenMoneyMultiplier
		}
	case "odd":
		if pocket%2 == 1 {
			return evenMoneyMultiplier
		}
	case "1-12":
		if pocket >= 1 && pocket <= 12 {
			return dozenMultiplier
		}
	case "13-24":
		if pocket >= 13 && pocket <= 24 {
			return dozenMultiplier
		}
	case "25-36":
		if pocket >= 25 && pocket <= 36 {
			return dozenMultiplier
		}
	}
	return 0
}

// Roulette settles a single-selector bet on one spin.
func (e *Engine) Roulette(ctx context.Context, userID int64, betType string, amount decimal.Decimal) (*RouletteResult, error) {
	selector := strings.ToLower(strings.TrimSpace(betType))
	if selector == "" {
		return nil, ErrMissingBetType
	}
	if err := e.preflight(ctx, userID, amount); err != nil {
		return nil, err
	}

	pocket := e.rng.IntN(Pockets)
	color := PocketColor(pocket)
	payout := decimal.Zero
	if m := rouletteMultiplier(selector, pocket); m > 0 {
		payout = amount.Mul(decimal.NewFromInt(m))
	}
	win := payout.IsPositive()

	u, err := e.Apply(ctx, userID, Movement{
		Game:    "roulette",
		Stake:   amount,
		Payout:  payout,
		Outcome: strconv.Itoa(pocket) + " " + color,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", userID).
		Str("game", "roulette").
		Str("bet_type", selector).
		Int("result", pocket).
		Str("amount", amount.String()).
		Str("payout", payout.String()).
		Msg("wager_settled")

	return &RouletteResult{Result: pocket, Color: color, Win: win, Payout: payout, NewBalance: u.Balance}, nil
}
