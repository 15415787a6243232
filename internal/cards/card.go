// Package cards models playing cards and the shuffled-deck capability used by
// the card game. Rank and suit names follow the deck API vocabulary so cards
// decode directly from the upstream JSON.
package cards

import "strconv"

type Rank string

const (
	Ace   Rank = "ACE"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "JACK"
	Queen Rank = "QUEEN"
	King  Rank = "KING"
)

type Suit string

const (
	Spades   Suit = "SPADES"
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
)

var (
	allRanks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
	allSuits = []Suit{Spades, Hearts, Diamonds, Clubs}
)

// Card is a single playing card.
type Card struct {
	Code  string `json:"code"`
	Value Rank   `json:"value"`
	Suit  Suit   `json:"suit"`
}

// New builds a card and fills in its two-character code ("AS", "0H", "KD").
func New(rank Rank, suit Suit) Card {
	return Card{Code: code(rank, suit), Value: rank, Suit: suit}
}

// Points is the card's blackjack value with an ace counted high (11).
func (c Card) Points() int {
	switch c.Value {
	case Ace:
		return 11
	case Jack, Queen, King:
		return 10
	}
	n, err := strconv.Atoi(string(c.Value))
	if err != nil {
		return 0
	}
	return n
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool { return c.Value == Ace }

func (c Card) String() string {
	if c.Code != "" {
		return c.Code
	}
	return code(c.Value, c.Suit)
}

func code(rank Rank, suit Suit) string {
	var r string
	switch rank {
	case Ace, Jack, Queen, King:
		r = string(rank)[:1]
	case Ten:
		r = "0"
	default:
		r = string(rank)
	}
	if suit == "" {
		return r
	}
	return r + string(suit)[:1]
}

// Standard52 returns one ordered 52-card deck.
func Standard52() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range allSuits {
		for _, r := range allRanks {
			deck = append(deck, New(r, s))
		}
	}
	return deck
}
