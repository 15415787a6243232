package cards

import (
	"context"
	"errors"
)

var (
	// ErrUnknownDeck is returned when a deck id was never issued or was discarded.
	ErrUnknownDeck = errors.New("unknown deck")

	// ErrExhausted is returned when a draw asks for more cards than remain.
	ErrExhausted = errors.New("not enough cards remaining")
)

// Source is an opaque provider of shuffled cards.
type Source interface {
	// Shuffle creates a freshly shuffled shoe and returns its id.
	Shuffle(ctx context.Context) (string, error)

	// Draw removes count cards from the top of the shoe.
	Draw(ctx context.Context, deckID string, count int) ([]Card, error)
}

// Discarder is implemented by sources that hold shoes in memory and can
// release them once a round no longer needs them.
type Discarder interface {
	Discard(deckID string)
}
