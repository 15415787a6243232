package blackjack

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
	"github.com/JoshBaneyCS/casino-wagers/internal/cards/cardstest"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
)

type table struct {
	repo   *users.MemoryRepository
	source *cardstest.Source
	game   *Game
	userID int64
}

func newTable(t *testing.T, balance string, script ...cards.Rank) *table {
	t.Helper()
	repo := users.NewMemoryRepository()
	u := &users.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", Balance: decimal.RequireFromString(balance)}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	source := cardstest.New(hand(script...)...)
	return &table{
		repo:   repo,
		source: source,
		game:   NewGame(wager.NewEngine(repo, nil), source),
		userID: u.ID,
	}
}

func (tb *table) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	u, err := tb.repo.GetByID(context.Background(), tb.userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u.Balance
}

func (tb *table) deal(t *testing.T, bet string) *Round {
	t.Helper()
	r, err := tb.game.Deal(context.Background(), tb.userID, nil, decimal.RequireFromString(bet))
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	return r
}

func wantBalance(t *testing.T, tb *table, want string) {
	t.Helper()
	if got := tb.balance(t); !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("balance = %s, want %s", got, want)
	}
}

// Deal order is player, dealer, player, dealer.

func TestDealerBustPaysEveryStandingHand(t *testing.T) {
	tb := newTable(t, "100",
		cards.Ten, cards.Six, cards.Nine, cards.Ten, // player 19, dealer 16
		cards.King, // dealer draws to 26
	)
	ctx := context.Background()
	r := tb.deal(t, "10")
	if r.Phase != PhasePlayerTurn {
		t.Fatalf("phase = %s, want player_turn", r.Phase)
	}
	wantBalance(t, tb, "90")

	if err := tb.game.Stand(ctx, r); err != nil {
		t.Fatalf("stand: %v", err)
	}
	if r.Phase != PhaseSettled {
		t.Fatalf("phase = %s, want settled", r.Phase)
	}
	if got := r.Hands[0]; got.Result != ResultWin || !got.Payout.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("hand = %s %s, want win 20", got.Result, got.Payout)
	}
	wantBalance(t, tb, "110")
}

func TestSplitThenDealerBust(t *testing.T) {
	tb := newTable(t, "100",
		cards.Eight, cards.Six, cards.Eight, cards.Ten, // player 8,8 dealer 16
		cards.Five, cards.Two, // split: 13 and 10
		cards.King, // hand one busts at 23
		cards.Queen, // dealer busts at 26
	)
	ctx := context.Background()
	r := tb.deal(t, "10")

	if err := tb.game.Split(ctx, r); err != nil {
		t.Fatalf("split: %v", err)
	}
	wantBalance(t, tb, "80")
	if len(r.Hands) != 2 || r.Hands[0].Value() != 13 || r.Hands[1].Value() != 10 {
		t.Fatalf("hands after split = %+v", r.View().Hands)
	}

	if err := tb.game.Hit(ctx, r); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if !r.Hands[0].Busted || r.Current != 1 {
		t.Fatalf("busted=%v current=%d, want busted and moved to hand 2", r.Hands[0].Busted, r.Current)
	}
	if err := tb.game.Stand(ctx, r); err != nil {
		t.Fatalf("stand: %v", err)
	}

	if r.Hands[0].Result != ResultLose || r.Hands[1].Result != ResultWin {
		t.Fatalf("results = %s/%s, want lose/win", r.Hands[0].Result, r.Hands[1].Result)
	}
	if !r.Hands[1].Payout.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("winning split hand payout = %s, want 20", r.Hands[1].Payout)
	}
	wantBalance(t, tb, "100")
}

func TestNaturalPaysThreeToTwo(t *testing.T) {
	tb := newTable(t, "100", cards.Ace, cards.Nine, cards.King, cards.Seven)
	r := tb.deal(t, "10")

	if r.Phase != PhaseSettled || r.Hands[0].Result != ResultBlackjack {
		t.Fatalf("phase=%s result=%s, want settled blackjack", r.Phase, r.Hands[0].Result)
	}
	if !r.Payout.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("payout = %s, want 25", r.Payout)
	}
	wantBalance(t, tb, "115")
}

func TestNaturalAgainstDealerNaturalPushes(t *testing.T) {
	tb := newTable(t, "100", cards.Ace, cards.King, cards.King, cards.Ace)
	r := tb.deal(t, "10")

	if r.Phase != PhaseSettled || r.Hands[0].Result != ResultPush {
		t.Fatalf("phase=%s result=%s, want settled push", r.Phase, r.Hands[0].Result)
	}
	wantBalance(t, tb, "100")
}

func TestSplitTwentyOnePaysEvenMoney(t *testing.T) {
	tb := newTable(t, "100",
		cards.Ace, cards.Nine, cards.Ace, cards.Eight, // dealer 17
		cards.King, cards.Queen, // both split hands reach 21
	)
	r := tb.deal(t, "10")
	if err := tb.game.Split(context.Background(), r); err != nil {
		t.Fatalf("split: %v", err)
	}

	if r.Phase != PhaseSettled {
		t.Fatalf("phase = %s, want settled", r.Phase)
	}
	for i, h := range r.Hands {
		if h.Result != ResultWin || !h.Payout.Equal(decimal.NewFromInt(20)) {
			t.Fatalf("hand %d = %s %s, want win 20", i, h.Result, h.Payout)
		}
	}
	wantBalance(t, tb, "120")
}

func TestInsuranceTakenAgainstDealerNatural(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Ace, cards.Nine, cards.King)
	ctx := context.Background()
	r := tb.deal(t, "10")

	if r.Phase != PhaseInsurance {
		t.Fatalf("phase = %s, want insurance", r.Phase)
	}
	if err := tb.game.Insurance(ctx, r, true); err != nil {
		t.Fatalf("insurance: %v", err)
	}
	if !r.Insurance.Equal(decimal.NewFromInt(5)) || !r.InsurancePayout.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("insurance=%s payout=%s, want 5 and 15", r.Insurance, r.InsurancePayout)
	}
	if r.Phase != PhaseSettled || r.Hands[0].Result != ResultLose {
		t.Fatalf("phase=%s result=%s, want settled lose", r.Phase, r.Hands[0].Result)
	}
	// -10 bet, -5 insurance, +15 insurance return
	wantBalance(t, tb, "100")
}

func TestInsuranceDeclinedPlayContinues(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Ace, cards.Nine, cards.Five)
	r := tb.deal(t, "11")

	if err := tb.game.Insurance(context.Background(), r, false); err != nil {
		t.Fatalf("insurance: %v", err)
	}
	if r.Phase != PhasePlayerTurn || r.Insurance.IsPositive() {
		t.Fatalf("phase=%s insurance=%s", r.Phase, r.Insurance)
	}
	wantBalance(t, tb, "89")
}

func TestInsuranceLostWhenDealerHasNoNatural(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Ace, cards.Nine, cards.Five)
	r := tb.deal(t, "11")

	if err := tb.game.Insurance(context.Background(), r, true); err != nil {
		t.Fatalf("insurance: %v", err)
	}
	if r.Phase != PhasePlayerTurn || !r.InsurancePayout.IsZero() {
		t.Fatalf("phase=%s insurancePayout=%s", r.Phase, r.InsurancePayout)
	}
	// floor(11/2) = 5
	wantBalance(t, tb, "84")
}

func TestNoInsuranceOfferBelowOneUnit(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Ace, cards.Nine, cards.Five)
	r := tb.deal(t, "1")
	if r.Phase != PhasePlayerTurn {
		t.Fatalf("phase = %s, want player_turn", r.Phase)
	}
}

func TestDoubleDown(t *testing.T) {
	tb := newTable(t, "100",
		cards.Five, cards.Ten, cards.Six, cards.Seven, // player 11, dealer 17
		cards.Ten,
	)
	r := tb.deal(t, "10")
	if err := tb.game.Double(context.Background(), r); err != nil {
		t.Fatalf("double: %v", err)
	}
	h := r.Hands[0]
	if !h.Doubled || !h.Bet.Equal(decimal.NewFromInt(20)) || len(h.Cards) != 3 {
		t.Fatalf("hand = %+v", h)
	}
	if h.Result != ResultWin || !h.Payout.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("result=%s payout=%s, want win 40", h.Result, h.Payout)
	}
	wantBalance(t, tb, "120")
}

func TestDoubleWithoutFundsChangesNothing(t *testing.T) {
	tb := newTable(t, "15", cards.Five, cards.Ten, cards.Six, cards.Seven)
	r := tb.deal(t, "10")

	err := tb.game.Double(context.Background(), r)
	if !errors.Is(err, wager.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if r.Phase != PhasePlayerTurn || r.Hands[0].Doubled || len(r.Hands[0].Cards) != 2 {
		t.Fatalf("round changed after rejected double: %+v", r.View())
	}
	wantBalance(t, tb, "5")
}

func TestCannotSplitUnequalRanks(t *testing.T) {
	tb := newTable(t, "100", cards.King, cards.Six, cards.Queen, cards.Ten)
	r := tb.deal(t, "10")
	if err := tb.game.Split(context.Background(), r); !errors.Is(err, ErrCannotSplit) {
		t.Fatalf("err = %v, want ErrCannotSplit", err)
	}
	wantBalance(t, tb, "90")
}

func TestHitToTwentyOneAdvances(t *testing.T) {
	tb := newTable(t, "100",
		cards.Five, cards.Ten, cards.Six, cards.Eight, // player 11, dealer 18
		cards.Ten,
	)
	r := tb.deal(t, "10")
	if err := tb.game.Hit(context.Background(), r); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if r.Phase != PhaseSettled || r.Hands[0].Result != ResultWin {
		t.Fatalf("phase=%s result=%s, want settled win", r.Phase, r.Hands[0].Result)
	}
}

func TestDealRejectedWhileRoundOpen(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Six, cards.Nine, cards.Ten)
	r := tb.deal(t, "10")

	_, err := tb.game.Deal(context.Background(), tb.userID, r, decimal.NewFromInt(10))
	if !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("err = %v, want ErrRoundInProgress", err)
	}
	wantBalance(t, tb, "90")
}

func TestActionsAfterSettleRejected(t *testing.T) {
	tb := newTable(t, "100", cards.Ace, cards.Nine, cards.King, cards.Seven)
	r := tb.deal(t, "10")
	if err := tb.game.Hit(context.Background(), r); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("err = %v, want ErrActionNotAllowed", err)
	}
	if err := tb.game.Hit(context.Background(), nil); !errors.Is(err, ErrNoRound) {
		t.Fatalf("err = %v, want ErrNoRound", err)
	}
}

func TestCardSourceFailureMidRoundRefunds(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Six, cards.Two, cards.Ten)
	tb.source.FailAfter(4)
	r := tb.deal(t, "10")

	err := tb.game.Hit(context.Background(), r)
	if !errors.Is(err, ErrCardSource) {
		t.Fatalf("err = %v, want ErrCardSource", err)
	}
	if r.Phase != PhaseSettled || !r.Aborted || r.Hands[0].Result != ResultPush {
		t.Fatalf("phase=%s aborted=%v result=%s", r.Phase, r.Aborted, r.Hands[0].Result)
	}
	if len(r.Hands[0].Cards) != 2 {
		t.Fatalf("cards = %d, want the 2 already drawn", len(r.Hands[0].Cards))
	}
	wantBalance(t, tb, "100")
}

func TestCardSourceFailureDuringDealerTurnKeepsBust(t *testing.T) {
	tb := newTable(t, "100",
		cards.Eight, cards.Six, cards.Eight, cards.Ten,
		cards.Five, cards.Two, // split: 13 and 10
		cards.King, // hand one busts
	)
	tb.source.FailAfter(7)
	ctx := context.Background()
	r := tb.deal(t, "10")
	if err := tb.game.Split(ctx, r); err != nil {
		t.Fatalf("split: %v", err)
	}
	if err := tb.game.Hit(ctx, r); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if err := tb.game.Stand(ctx, r); !errors.Is(err, ErrCardSource) {
		t.Fatalf("err = %v, want ErrCardSource", err)
	}
	if r.Hands[0].Result != ResultLose || r.Hands[1].Result != ResultPush {
		t.Fatalf("results = %s/%s, want lose/push", r.Hands[0].Result, r.Hands[1].Result)
	}
	wantBalance(t, tb, "90")
}

func TestInitialDrawFailureRefunds(t *testing.T) {
	tb := newTable(t, "100")
	tb.source.FailAfter(0)

	r, err := tb.game.Deal(context.Background(), tb.userID, nil, decimal.NewFromInt(10))
	if !errors.Is(err, ErrCardSource) {
		t.Fatalf("err = %v, want ErrCardSource", err)
	}
	if r == nil || r.Phase != PhaseSettled {
		t.Fatalf("round = %+v, want settled", r)
	}
	wantBalance(t, tb, "100")
}

func TestShuffleFailureDebitsNothing(t *testing.T) {
	tb := newTable(t, "100")
	tb.source.FailShuffle()

	r, err := tb.game.Deal(context.Background(), tb.userID, nil, decimal.NewFromInt(10))
	if !errors.Is(err, ErrCardSource) || r != nil {
		t.Fatalf("round=%v err=%v, want nil and ErrCardSource", r, err)
	}
	wantBalance(t, tb, "100")
	entries, _ := tb.repo.ListWagers(context.Background(), tb.userID, 10)
	if len(entries) != 0 {
		t.Fatalf("ledger entries = %d, want 0", len(entries))
	}
}

func TestViewHidesHoleCard(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Six, cards.Nine, cards.Ten, cards.King)
	r := tb.deal(t, "10")

	v := r.View()
	if len(v.Dealer) != 1 || v.DealerValue != 6 {
		t.Fatalf("dealer view = %+v value %d, want only the up card", v.Dealer, v.DealerValue)
	}
	if err := tb.game.Stand(context.Background(), r); err != nil {
		t.Fatalf("stand: %v", err)
	}
	if v := r.View(); len(v.Dealer) != 3 || v.Balance == nil {
		t.Fatalf("settled dealer view = %+v", v)
	}
}

func TestActDispatch(t *testing.T) {
	tb := newTable(t, "100", cards.Ten, cards.Six, cards.Nine, cards.Ten, cards.King)
	r := tb.deal(t, "10")
	if err := tb.game.Act(context.Background(), r, "dance", false); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
	if err := tb.game.Act(context.Background(), r, "STAND", false); err != nil {
		t.Fatalf("stand: %v", err)
	}
	if !r.Settled() {
		t.Fatal("round not settled")
	}
}

func TestReleaseDiscardsAbandonedShoe(t *testing.T) {
	repo := users.NewMemoryRepository()
	u := &users.User{Username: "eve", Email: "eve@example.com", PasswordHash: "x", Balance: decimal.NewFromInt(1000)}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	source := cards.NewLocalSource(6)
	game := NewGame(wager.NewEngine(repo, nil), source)

	r, err := game.Deal(context.Background(), u.ID, nil, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if r.Settled() {
		// A natural settles on the deal and frees the shoe by itself.
		if source.Len() != 0 {
			t.Fatalf("settled round left %d shoes", source.Len())
		}
		return
	}
	if source.Len() != 1 {
		t.Fatalf("shoes = %d, want 1 while the round is open", source.Len())
	}

	game.Release(r)
	if source.Len() != 0 {
		t.Fatalf("shoes = %d after release, want 0", source.Len())
	}
	game.Release(nil)
}
