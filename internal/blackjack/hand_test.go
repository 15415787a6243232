package blackjack

import (
	"testing"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
	"github.com/JoshBaneyCS/casino-wagers/internal/cards/cardstest"
)

func hand(ranks ...cards.Rank) []cards.Card {
	out := make([]cards.Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, cardstest.C(r))
	}
	return out
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		name    string
		cards   []cards.Card
		want    int
		natural bool
	}{
		{"ace king", hand(cards.Ace, cards.King), 21, true},
		{"two aces and nine", hand(cards.Ace, cards.Ace, cards.Nine), 21, false},
		{"pair of aces", hand(cards.Ace, cards.Ace), 12, false},
		{"soft seventeen", hand(cards.Ace, cards.Six), 17, false},
		{"hard bust", hand(cards.King, cards.Queen, cards.Five), 25, false},
		{"ace demoted", hand(cards.Ace, cards.Nine, cards.Five), 15, false},
		{"four aces", hand(cards.Ace, cards.Ace, cards.Ace, cards.Ace), 14, false},
		{"three card 21", hand(cards.Seven, cards.Seven, cards.Seven), 21, false},
		{"empty", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HandValue(tc.cards); got != tc.want {
				t.Fatalf("HandValue = %d, want %d", got, tc.want)
			}
			if got := IsNatural(tc.cards); got != tc.natural {
				t.Fatalf("IsNatural = %v, want %v", got, tc.natural)
			}
		})
	}
}

func TestHandAddMarksBustAndTwentyOne(t *testing.T) {
	h := &Hand{}
	h.add(cardstest.C(cards.King), cardstest.C(cards.Five))
	if h.Done {
		t.Fatal("15 should not close the hand")
	}
	h.add(cardstest.C(cards.Six))
	if !h.Done || h.Busted {
		t.Fatalf("21: done=%v busted=%v", h.Done, h.Busted)
	}

	b := &Hand{}
	b.add(cardstest.C(cards.King), cardstest.C(cards.Queen), cardstest.C(cards.Two))
	if !b.Done || !b.Busted {
		t.Fatalf("22: done=%v busted=%v", b.Done, b.Busted)
	}
}

func TestCanSplitNeedsIdenticalRank(t *testing.T) {
	if !(&Hand{Cards: hand(cards.Eight, cards.Eight)}).canSplit() {
		t.Fatal("8+8 should split")
	}
	if (&Hand{Cards: hand(cards.King, cards.Queen)}).canSplit() {
		t.Fatal("K+Q should not split")
	}
}
