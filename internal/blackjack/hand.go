package blackjack

import (
	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
)

const (
	Blackjack      = 21
	DealerStandsOn = 17
)

// Per-hand results.
const (
	ResultWin       = "win"
	ResultLose      = "lose"
	ResultPush      = "push"
	ResultBlackjack = "blackjack"
)

// HandValue totals a hand. Every ace starts at 11 and is demoted to 1, one
// at a time, while the total is over 21.
func HandValue(cs []cards.Card) int {
	total, aces := 0, 0
	for _, c := range cs {
		total += c.Points()
		if c.IsAce() {
			aces++
		}
	}
	for total > Blackjack && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func IsNatural(cs []cards.Card) bool {
	return len(cs) == 2 && HandValue(cs) == Blackjack
}

// Hand is one player hand and the stake riding on it.
type Hand struct {
	Cards     []cards.Card    `json:"cards"`
	Bet       decimal.Decimal `json:"bet"`
	Done      bool            `json:"done"`
	Busted    bool            `json:"busted"`
	Doubled   bool            `json:"doubled"`
	FromSplit bool            `json:"fromSplit"`
	Result    string          `json:"result,omitempty"`
	Payout    decimal.Decimal `json:"payout"`
}

// Value is the best total of the hand's cards.
func (h *Hand) Value() int { return HandValue(h.Cards) }

func (h *Hand) add(c ...cards.Card) {
	h.Cards = append(h.Cards, c...)
	switch v := h.Value(); {
	case v > Blackjack:
		h.Busted = true
		h.Done = true
	case v == Blackjack:
		h.Done = true
	}
}

func (h *Hand) resolved() bool { return h.Result != "" }

func (h *Hand) resolve(result string, payout decimal.Decimal) {
	h.Result = result
	h.Payout = payout
	h.Done = true
}

func (h *Hand) canSplit() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value == h.Cards[1].Value
}
