// =============================================================================
// FILE: internal/blackjack/game.go
// =============================================================================
// Round state machine:
//
//   dealing -> [insurance] -> player_turn (hand i ...) -> dealer_turn -> settled
//
// Stakes leave the balance when they are placed (deal, double, split,
// insurance). Everything the round returns is credited in one write when it
// settles. If the card source fails mid-round the round is closed: busted
// hands stay lost and every other open stake is handed back.
//
// The Game itself holds no round state; callers keep the *Round (in the
// session) and serialise actions on it.
// =============================================================================

package blackjack

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
)

const GameName = "blackjack"

// Player actions.
const (
	ActionDeal      = "deal"
	ActionInsurance = "insurance"
	ActionHit       = "hit"
	ActionStand     = "stand"
	ActionDouble    = "double"
	ActionSplit     = "split"
	ActionState     = "state"
)

var (
	naturalMultiplier   = decimal.RequireFromString("2.5")
	winMultiplier       = decimal.NewFromInt(2)
	insuranceMultiplier = decimal.NewFromInt(3)
)

// Wallet commits balance movements. *wager.Engine satisfies it.
type Wallet interface {
	Apply(ctx context.Context, userID int64, m wager.Movement) (*users.User, error)
}

// Game plays rounds against a card source.
type Game struct {
	wallet Wallet
	source cards.Source
	now    func() time.Time
}

// NewGame creates a Game that settles through wallet and deals from source.
func NewGame(wallet Wallet, source cards.Source) *Game {
	return &Game{wallet: wallet, source: source, now: time.Now}
}

// InsuranceCost is half the original bet rounded down to whole units.
func InsuranceCost(bet decimal.Decimal) decimal.Decimal {
	return bet.Div(decimal.NewFromInt(2)).Floor()
}

// Deal starts a new round. current is the caller's previous round, if any;
// an unsettled one blocks the deal.
func (g *Game) Deal(ctx context.Context, userID int64, current *Round, bet decimal.Decimal) (*Round, error) {
	if current != nil && !current.Settled() {
		return nil, ErrRoundInProgress
	}
	if err := wager.ValidateAmount(bet); err != nil {
		return nil, err
	}

	deckID, err := g.source.Shuffle(ctx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("blackjack_shuffle_failed")
		return nil, ErrCardSource
	}

	r := &Round{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Phase:     PhaseDealing,
		DeckID:    deckID,
		BaseBet:   bet,
		Hands:     []*Hand{{Bet: bet}},
		CreatedAt: g.now(),
	}
	if err := g.debit(ctx, r, bet, ActionDeal); err != nil {
		g.discard(r)
		return nil, err
	}

	dealt, err := g.source.Draw(ctx, deckID, 4)
	if err != nil {
		return r, g.abort(ctx, r, err)
	}
	r.Hands[0].add(dealt[0], dealt[2])
	r.Dealer = []cards.Card{dealt[1], dealt[3]}

	log.Info().Str("round_id", r.ID).Int64("user_id", userID).Str("bet", bet.String()).Msg("blackjack_deal")

	if r.Dealer[0].IsAce() && InsuranceCost(bet).IsPositive() {
		r.Phase = PhaseInsurance
		r.Message = "Dealer shows an ace. Take insurance?"
		return r, nil
	}
	return r, g.peek(ctx, r)
}

// Insurance answers the insurance offer.
func (g *Game) Insurance(ctx context.Context, r *Round, take bool) error {
	if r == nil {
		return ErrNoRound
	}
	r.balance = nil
	if r.Phase != PhaseInsurance {
		return ErrActionNotAllowed
	}
	if take {
		cost := InsuranceCost(r.BaseBet)
		if err := g.debit(ctx, r, cost, ActionInsurance); err != nil {
			return err
		}
		r.Insurance = cost
	}
	return g.peek(ctx, r)
}

// peek checks the dealer for a natural once the insurance decision is made.
func (g *Game) peek(ctx context.Context, r *Round) error {
	hand := r.Hands[0]
	dealerNatural := IsNatural(r.Dealer)

	if r.Insurance.IsPositive() {
		if dealerNatural {
			r.InsurancePayout = r.Insurance.Mul(insuranceMultiplier)
		}
	}

	switch {
	case dealerNatural && IsNatural(hand.Cards):
		hand.resolve(ResultPush, hand.Bet)
		r.Message = "Both have blackjack. Push."
		return g.settle(ctx, r)
	case dealerNatural:
		hand.resolve(ResultLose, decimal.Zero)
		r.Message = "Dealer has blackjack."
		return g.settle(ctx, r)
	case IsNatural(hand.Cards):
		hand.resolve(ResultBlackjack, hand.Bet.Mul(naturalMultiplier).Round(2))
		r.Message = "Blackjack!"
		return g.settle(ctx, r)
	}

	if r.Insurance.IsPositive() {
		r.Message = "Dealer does not have blackjack. Insurance lost."
	} else {
		r.Message = ""
	}
	r.Phase = PhasePlayerTurn
	r.Current = 0
	return nil
}

// Hit draws one card into the current hand.
func (g *Game) Hit(ctx context.Context, r *Round) error {
	hand, err := g.turn(r)
	if err != nil {
		return err
	}
	drawn, err := g.source.Draw(ctx, r.DeckID, 1)
	if err != nil {
		return g.abort(ctx, r, err)
	}
	hand.add(drawn...)
	return g.next(ctx, r)
}

// Stand closes the current hand. In the dealer turn it resumes a settlement
// that could not be credited earlier.
func (g *Game) Stand(ctx context.Context, r *Round) error {
	if r != nil && r.Phase == PhaseDealerTurn {
		r.balance = nil
		return g.finish(ctx, r)
	}
	hand, err := g.turn(r)
	if err != nil {
		return err
	}
	hand.Done = true
	return g.next(ctx, r)
}

// Double doubles the current hand's bet and draws exactly one card.
func (g *Game) Double(ctx context.Context, r *Round) error {
	hand, err := g.turn(r)
	if err != nil {
		return err
	}
	if len(hand.Cards) != 2 {
		return ErrCannotDouble
	}
	if err := g.debit(ctx, r, hand.Bet, ActionDouble); err != nil {
		return err
	}
	hand.Bet = hand.Bet.Mul(decimal.NewFromInt(2))
	hand.Doubled = true

	drawn, err := g.source.Draw(ctx, r.DeckID, 1)
	if err != nil {
		return g.abort(ctx, r, err)
	}
	hand.add(drawn...)
	hand.Done = true
	return g.next(ctx, r)
}

// Split turns a pair into two hands, each with the original bet, and deals
// one new card to each.
func (g *Game) Split(ctx context.Context, r *Round) error {
	hand, err := g.turn(r)
	if err != nil {
		return err
	}
	if len(r.Hands) != 1 || !hand.canSplit() {
		return ErrCannotSplit
	}
	if err := g.debit(ctx, r, hand.Bet, ActionSplit); err != nil {
		return err
	}

	first := &Hand{Cards: []cards.Card{hand.Cards[0]}, Bet: hand.Bet, FromSplit: true}
	second := &Hand{Cards: []cards.Card{hand.Cards[1]}, Bet: hand.Bet, FromSplit: true}
	r.Hands = []*Hand{first, second}
	r.Current = 0

	drawn, err := g.source.Draw(ctx, r.DeckID, 2)
	if err != nil {
		return g.abort(ctx, r, err)
	}
	first.add(drawn[0])
	second.add(drawn[1])
	return g.next(ctx, r)
}

// Act dispatches a named action. Deal and state are handled by the caller
// because they need more than the round.
func (g *Game) Act(ctx context.Context, r *Round, action string, takeInsurance bool) error {
	switch strings.ToLower(action) {
	case ActionInsurance:
		return g.Insurance(ctx, r, takeInsurance)
	case ActionHit:
		return g.Hit(ctx, r)
	case ActionStand:
		return g.Stand(ctx, r)
	case ActionDouble:
		return g.Double(ctx, r)
	case ActionSplit:
		return g.Split(ctx, r)
	default:
		return ErrUnknownAction
	}
}

func (g *Game) turn(r *Round) (*Hand, error) {
	if r == nil {
		return nil, ErrNoRound
	}
	r.balance = nil
	if r.Phase != PhasePlayerTurn {
		return nil, ErrActionNotAllowed
	}
	r.Message = ""
	hand := r.current()
	if hand == nil {
		return nil, ErrActionNotAllowed
	}
	return hand, nil
}

// next moves to the following open hand, or to the dealer once every hand
// is finished.
func (g *Game) next(ctx context.Context, r *Round) error {
	if r.advance() {
		return nil
	}
	r.Phase = PhaseDealerTurn
	return g.finish(ctx, r)
}

// finish plays the dealer hand and settles. It is safe to call again after
// a failed credit.
func (g *Game) finish(ctx context.Context, r *Round) error {
	if !r.Aborted && g.dealerMustPlay(r) {
		for HandValue(r.Dealer) < DealerStandsOn {
			drawn, err := g.source.Draw(ctx, r.DeckID, 1)
			if err != nil {
				return g.abort(ctx, r, err)
			}
			r.Dealer = append(r.Dealer, drawn...)
		}
	}

	dealer := HandValue(r.Dealer)
	dealerBust := dealer > Blackjack
	for _, h := range r.Hands {
		if h.resolved() {
			continue
		}
		v := h.Value()
		switch {
		case h.Busted:
			h.resolve(ResultLose, decimal.Zero)
		case dealerBust || v > dealer:
			h.resolve(ResultWin, h.Bet.Mul(winMultiplier))
		case v == dealer:
			h.resolve(ResultPush, h.Bet)
		default:
			h.resolve(ResultLose, decimal.Zero)
		}
	}
	return g.settle(ctx, r)
}

func (g *Game) dealerMustPlay(r *Round) bool {
	for _, h := range r.Hands {
		if !h.resolved() && !h.Busted {
			return true
		}
	}
	return false
}

// settle credits every resolved hand plus any insurance return in a single
// write. On failure the round stays in the dealer turn so it can be resumed.
func (g *Game) settle(ctx context.Context, r *Round) error {
	r.Phase = PhaseDealerTurn

	total := r.InsurancePayout
	results := make([]string, 0, len(r.Hands))
	for _, h := range r.Hands {
		total = total.Add(h.Payout)
		results = append(results, h.Result)
	}
	r.Payout = total

	u, err := g.wallet.Apply(ctx, r.UserID, wager.Movement{
		Game:    GameName,
		Stake:   decimal.Zero,
		Payout:  total,
		Outcome: strings.Join(results, ","),
	})
	if err != nil {
		log.Error().Err(err).Str("round_id", r.ID).Int64("user_id", r.UserID).Msg("blackjack_settle_failed")
		return err
	}
	r.balance = &u.Balance
	r.Phase = PhaseSettled
	if r.Message == "" {
		r.Message = settleMessage(r.Hands)
	}
	g.discard(r)

	log.Info().
		Str("round_id", r.ID).
		Int64("user_id", r.UserID).
		Strs("results", results).
		Str("payout", total.String()).
		Bool("aborted", r.Aborted).
		Msg("blackjack_settled")
	return nil
}

// abort closes the round after a card source failure. Busted hands stay
// lost; every other unresolved hand is pushed so its stake comes back.
func (g *Game) abort(ctx context.Context, r *Round, cause error) error {
	log.Error().Err(cause).Str("round_id", r.ID).Int64("user_id", r.UserID).Msg("blackjack_card_source_failed")

	r.Aborted = true
	for _, h := range r.Hands {
		if h.resolved() {
			continue
		}
		if h.Busted {
			h.resolve(ResultLose, decimal.Zero)
		} else {
			h.resolve(ResultPush, h.Bet)
		}
	}
	r.Message = ErrCardSource.Message
	if err := g.settle(ctx, r); err != nil {
		return err
	}
	return ErrCardSource
}

func (g *Game) debit(ctx context.Context, r *Round, amount decimal.Decimal, action string) error {
	u, err := g.wallet.Apply(ctx, r.UserID, wager.Movement{
		Game:    GameName,
		Stake:   amount,
		Payout:  decimal.Zero,
		Outcome: action,
	})
	if err != nil {
		if !errors.Is(err, wager.ErrInsufficientFunds) {
			log.Error().Err(err).Str("round_id", r.ID).Str("action", action).Msg("blackjack_debit_failed")
		}
		return err
	}
	r.balance = &u.Balance
	return nil
}

// Release frees the card shoe of a round abandoned before settlement. The
// stakes already taken stay with the house.
func (g *Game) Release(r *Round) {
	if r == nil || r.Settled() {
		return
	}
	log.Info().Str("round_id", r.ID).Int64("user_id", r.UserID).Str("phase", string(r.Phase)).Msg("blackjack_round_abandoned")
	g.discard(r)
}

func (g *Game) discard(r *Round) {
	if d, ok := g.source.(cards.Discarder); ok && r.DeckID != "" {
		d.Discard(r.DeckID)
	}
}

func settleMessage(hands []*Hand) string {
	if len(hands) == 1 {
		switch hands[0].Result {
		case ResultWin:
			return "You win."
		case ResultPush:
			return "Push."
		case ResultBlackjack:
			return "Blackjack!"
		default:
			return "Dealer wins."
		}
	}
	return "Round settled."
}
