// =============================================================================
// FILE: internal/wager/engine.go
// =============================================================================
// Settlement core shared by every game.
//
// A settlement is load -> validate -> compute -> compare-and-set. The random
// outcome is drawn once by the caller; if another request moved the balance
// between load and write, the engine reloads, re-validates funds against the
// fresh balance and tries the write again. A rejected bet performs no writes.
// =============================================================================

package wager

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/users"
)

// MaxAttempts bounds compare-and-set retries before a settlement gives up
// with ErrContention.
const MaxAttempts = 5

// MaxAmount caps stakes and balances. The largest payout (35x) still fits
// the NUMERIC(20, 2) balance column.
var MaxAmount = decimal.New(1, 15)

// Amounts outside this exponent range are rejected before any arithmetic:
// Round and Cmp rescale the coefficient to 10^|exponent|.
const (
	minExponent = -18
	maxExponent = 18
)

// Randomizer draws a uniform integer in [0, n).
type Randomizer interface {
	IntN(n int) int
}

type defaultRandomizer struct{}

func (defaultRandomizer) IntN(n int) int { return rand.IntN(n) }

// DefaultRandomizer draws from the runtime's ChaCha8 generator.
var DefaultRandomizer Randomizer = defaultRandomizer{}

// Movement is one balance change: the stake leaves the balance and the
// payout enters it, in a single write.
type Movement struct {
	Game    string
	Stake   decimal.Decimal
	Payout  decimal.Decimal
	Outcome string
}

// Engine settles bets against the user repository.
type Engine struct {
	repo users.Repository
	rng  Randomizer
	now  func() time.Time
}

// NewEngine creates an Engine over repo. A nil rng uses DefaultRandomizer.
func NewEngine(repo users.Repository, rng Randomizer) *Engine {
	if rng == nil {
		rng = DefaultRandomizer
	}
	return &Engine{repo: repo, rng: rng, now: time.Now}
}

// ValidateAmount rejects non-positive amounts, sub-cent precision and
// amounts of MaxAmount or more.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !wholeCents(amount) {
		return ErrInvalidBet
	}
	return nil
}

// wholeCents reports whether a is a whole number of cents below MaxAmount.
func wholeCents(a decimal.Decimal) bool {
	if exp := a.Exponent(); exp < minExponent || exp > maxExponent {
		return false
	}
	return a.Abs().LessThan(MaxAmount) && a.Equal(a.Round(2))
}

// Apply commits m against the user's balance and records it in the ledger.
// The stake must be covered by the balance at write time.
func (e *Engine) Apply(ctx context.Context, userID int64, m Movement) (*users.User, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		u, err := e.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("load balance: %w", err)
		}
		if m.Stake.GreaterThan(u.Balance) {
			return nil, ErrInsufficientFunds
		}

		next := u.Balance.Sub(m.Stake).Add(m.Payout)
		entry := &users.WagerEntry{
			ID:        ulid.Make().String(),
			Game:      m.Game,
			Stake:     m.Stake,
			Payout:    m.Payout,
			Outcome:   m.Outcome,
			CreatedAt: e.now(),
		}
		updated, err := e.repo.CompareAndSetBalance(ctx, userID, u.Balance, next, entry)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, users.ErrBalanceChanged):
			log.Debug().Int64("user_id", userID).Str("game", m.Game).Int("attempt", attempt).Msg("balance_contention")
			continue
		case errors.Is(err, users.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, users.ErrNegative):
			return nil, ErrInsufficientFunds
		default:
			return nil, fmt.Errorf("write balance: %w", err)
		}
	}
	log.Warn().Int64("user_id", userID).Str("game", m.Game).Msg("balance_contention_exhausted")
	return nil, ErrContention
}

// SetBalance overwrites the balance. The ledger records the difference as a
// stake or payout so the entry still satisfies after = before - stake + payout.
func (e *Engine) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) (*users.User, error) {
	if balance.IsNegative() || !wholeCents(balance) {
		return nil, ErrNegativeBalance
	}
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		u, err := e.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("load balance: %w", err)
		}

		delta := balance.Sub(u.Balance)
		entry := &users.WagerEntry{
			ID:        ulid.Make().String(),
			Game:      "adjustment",
			Stake:     decimal.Zero,
			Payout:    decimal.Zero,
			Outcome:   "set",
			CreatedAt: e.now(),
		}
		if delta.IsNegative() {
			entry.Stake = delta.Neg()
		} else {
			entry.Payout = delta
		}

		updated, err := e.repo.CompareAndSetBalance(ctx, userID, u.Balance, balance, entry)
		if err == nil {
			log.Info().Int64("user_id", userID).Str("balance", balance.String()).Msg("balance_set")
			return updated, nil
		}
		if !errors.Is(err, users.ErrBalanceChanged) {
			if errors.Is(err, users.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("write balance: %w", err)
		}
	}
	return nil, ErrContention
}

// preflight loads the balance once so an unaffordable bet is rejected before
// any randomness is drawn.
func (e *Engine) preflight(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	u, err := e.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load balance: %w", err)
	}
	if amount.GreaterThan(u.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}
