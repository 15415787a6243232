package cards

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/oklog/ulid/v2"
)

// LocalSource deals from in-process shoes. It is the default when no
// external deck API is configured.
type LocalSource struct {
	deckCount int

	mu    sync.Mutex
	shoes map[string][]Card
}

// NewLocalSource creates a source whose shoes hold deckCount standard decks.
func NewLocalSource(deckCount int) *LocalSource {
	if deckCount < 1 {
		deckCount = 1
	}
	return &LocalSource{deckCount: deckCount, shoes: make(map[string][]Card)}
}

func (s *LocalSource) Shuffle(_ context.Context) (string, error) {
	shoe := make([]Card, 0, 52*s.deckCount)
	for i := 0; i < s.deckCount; i++ {
		shoe = append(shoe, Standard52()...)
	}
	// math/rand/v2's global generator is ChaCha8 seeded from the OS.
	rand.Shuffle(len(shoe), func(i, j int) { shoe[i], shoe[j] = shoe[j], shoe[i] })

	id := ulid.Make().String()
	s.mu.Lock()
	s.shoes[id] = shoe
	s.mu.Unlock()
	return id, nil
}

func (s *LocalSource) Draw(_ context.Context, deckID string, count int) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shoe, ok := s.shoes[deckID]
	if !ok {
		return nil, ErrUnknownDeck
	}
	if count > len(shoe) {
		return nil, fmt.Errorf("draw %d from %s: %w", count, deckID, ErrExhausted)
	}
	drawn := make([]Card, count)
	copy(drawn, shoe[:count])
	s.shoes[deckID] = shoe[count:]
	return drawn, nil
}

// Discard drops a shoe.
func (s *LocalSource) Discard(deckID string) {
	s.mu.Lock()
	delete(s.shoes, deckID)
	s.mu.Unlock()
}

// Len reports how many shoes are held.
func (s *LocalSource) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shoes)
}
