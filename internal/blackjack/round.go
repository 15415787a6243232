package blackjack

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
)

// Phase is the round's position in the turn structure.
type Phase string

const (
	PhaseDealing    Phase = "dealing"
	PhaseInsurance  Phase = "insurance"
	PhasePlayerTurn Phase = "player_turn"
	PhaseDealerTurn Phase = "dealer_turn"
	PhaseSettled    Phase = "settled"
)

// Round is one card-game round owned by a single session.
type Round struct {
	ID        string
	UserID    int64
	Phase     Phase
	DeckID    string
	Dealer    []cards.Card
	Hands     []*Hand
	Current   int
	BaseBet   decimal.Decimal
	Insurance decimal.Decimal
	// InsurancePayout is the side-bet return, credited with the main settlement.
	InsurancePayout decimal.Decimal
	Payout          decimal.Decimal
	// Aborted marks a round cut short by a card source failure.
	Aborted   bool
	Message   string
	CreatedAt time.Time

	// balance is the user's balance after the last write made by the
	// current action; nil when the action wrote nothing.
	balance *decimal.Decimal
}

// Settled reports whether the round has been fully paid out.
func (r *Round) Settled() bool { return r.Phase == PhaseSettled }

func (r *Round) current() *Hand {
	if r.Current < 0 || r.Current >= len(r.Hands) {
		return nil
	}
	return r.Hands[r.Current]
}

// advance moves to the next hand still in play and reports whether one
// exists.
func (r *Round) advance() bool {
	for i := r.Current; i < len(r.Hands); i++ {
		if !r.Hands[i].Done {
			r.Current = i
			return true
		}
	}
	r.Current = len(r.Hands)
	return false
}

func (r *Round) holeCardVisible() bool {
	return r.Phase == PhaseDealerTurn || r.Phase == PhaseSettled
}

// HandView is the outward form of a player hand.
type HandView struct {
	Cards     []cards.Card    `json:"cards"`
	Value     int             `json:"value"`
	Bet       decimal.Decimal `json:"bet"`
	Busted    bool            `json:"busted"`
	Doubled   bool            `json:"doubled"`
	FromSplit bool            `json:"fromSplit"`
	Result    string          `json:"result,omitempty"`
	Payout    decimal.Decimal `json:"payout"`
}

// View is the outward form of a round. The dealer's hole card stays hidden
// until the dealer plays.
type View struct {
	ID              string           `json:"id"`
	Phase           Phase            `json:"phase"`
	Dealer          []cards.Card     `json:"dealer"`
	DealerValue     int              `json:"dealerValue"`
	Hands           []HandView       `json:"hands"`
	Current         int              `json:"currentHand"`
	Insurance       decimal.Decimal  `json:"insurance"`
	InsurancePayout decimal.Decimal  `json:"insurancePayout"`
	Payout          decimal.Decimal  `json:"payout"`
	Actions         []string         `json:"actions"`
	Message         string           `json:"message,omitempty"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
}

// View renders the round for the player. The hole card stays hidden until
// the dealer's turn.
func (r *Round) View() View {
	v := View{
		ID:              r.ID,
		Phase:           r.Phase,
		Current:         r.Current,
		Insurance:       r.Insurance,
		InsurancePayout: r.InsurancePayout,
		Payout:          r.Payout,
		Actions:         r.Actions(),
		Message:         r.Message,
		Balance:         r.balance,
	}

	switch {
	case r.holeCardVisible():
		v.Dealer = append([]cards.Card(nil), r.Dealer...)
	case len(r.Dealer) > 0:
		v.Dealer = []cards.Card{r.Dealer[0]}
	default:
		v.Dealer = []cards.Card{}
	}
	v.DealerValue = HandValue(v.Dealer)

	v.Hands = make([]HandView, 0, len(r.Hands))
	for _, h := range r.Hands {
		v.Hands = append(v.Hands, HandView{
			Cards:     append([]cards.Card(nil), h.Cards...),
			Value:     h.Value(),
			Bet:       h.Bet,
			Busted:    h.Busted,
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
			Result:    h.Result,
			Payout:    h.Payout,
		})
	}
	return v
}

// Actions lists what the player may do next.
func (r *Round) Actions() []string {
	switch r.Phase {
	case PhaseInsurance:
		return []string{ActionInsurance}
	case PhasePlayerTurn:
		out := []string{ActionHit, ActionStand}
		if h := r.current(); h != nil && len(h.Cards) == 2 {
			out = append(out, ActionDouble)
			if len(r.Hands) == 1 && h.canSplit() {
				out = append(out, ActionSplit)
			}
		}
		return out
	case PhaseDealerTurn:
		return []string{ActionStand}
	default:
		return []string{ActionDeal}
	}
}
