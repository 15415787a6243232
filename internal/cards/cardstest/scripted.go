// Package cardstest provides a deterministic cards.Source for tests.
package cardstest

import (
	"context"
	"errors"
	"sync"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
)

// ErrScriptExhausted is returned when the script has no cards left or a
// failure was scheduled.
var ErrScriptExhausted = errors.New("scripted source: no more cards")

// Source deals a fixed sequence of cards, in order, to every deck.
type Source struct {
	mu           sync.Mutex
	script       []cards.Card
	failShuffle  bool
	failAfter    int
	drawn        int
	shuffleCalls int
}

// New returns a source that deals the given cards in order.
func New(script ...cards.Card) *Source {
	return &Source{script: script, failAfter: -1}
}

// FailShuffle makes every Shuffle call fail.
func (s *Source) FailShuffle() *Source {
	s.failShuffle = true
	return s
}

// FailAfter makes draws fail once n cards have been dealt.
func (s *Source) FailAfter(n int) *Source {
	s.failAfter = n
	return s
}

func (s *Source) Shuffle(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffleCalls++
	if s.failShuffle {
		return "", errors.New("scripted source: shuffle failed")
	}
	return "scripted", nil
}

func (s *Source) Draw(_ context.Context, _ string, count int) ([]cards.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter >= 0 && s.drawn+count > s.failAfter {
		return nil, ErrScriptExhausted
	}
	if count > len(s.script) {
		return nil, ErrScriptExhausted
	}
	out := append([]cards.Card(nil), s.script[:count]...)
	s.script = s.script[count:]
	s.drawn += count
	return out, nil
}

// Drawn reports how many cards have been dealt.
func (s *Source) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// C is shorthand for a spades card of the given rank.
func C(rank cards.Rank) cards.Card {
	return cards.New(rank, cards.Spades)
}
