package engine

import (
	"errors"
	"testing"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func TestChangeTurnPlaceSkipsFoldedAndWraps(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100), newSeat(4, "d", 100))
	agg.SeatAt(2).BetType = model.BetFold
	x := testTx(f.e, agg)

	agg.Table.TurnPlace = 1
	x.changeTurnPlace()
	if agg.Table.TurnPlace != 3 {
		t.Fatalf("expected turn 3, got %d", agg.Table.TurnPlace)
	}
	if got := agg.SeatAt(3).BetExpirationTime; got != t0.Unix()+30 {
		t.Fatalf("expected expiration now+30, got %d", got)
	}

	agg.Table.TurnPlace = 4
	x.changeTurnPlace()
	if agg.Table.TurnPlace != 1 {
		t.Fatalf("expected turn to wrap to 1, got %d", agg.Table.TurnPlace)
	}
}

func TestAwaySeatGetsShortTimer(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100))
	agg.SeatAt(2).SeatOut = t0.Unix() - 100
	x := testTx(f.e, agg)
	agg.Table.TurnPlace = 1
	x.changeTurnPlace()
	if got := agg.SeatAt(2).BetExpirationTime; got != t0.Unix()+model.AfkTurnTime {
		t.Fatalf("expected away timer now+%d, got %d", model.AfkTurnTime, got-t0.Unix())
	}
}

func TestFirstTurnPreflop(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100), newSeat(4, "d", 100))
	agg.Table.DealerPlace, agg.Table.SmallBlindPlace, agg.Table.BigBlindPlace = 1, 2, 3
	x := testTx(f.e, agg)
	x.setFirstTurn()
	if agg.Table.TurnPlace != 4 || agg.Table.LastWordPlace != 3 {
		t.Fatalf("expected turn 4 last word 3, got %d %d", agg.Table.TurnPlace, agg.Table.LastWordPlace)
	}

	heads := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100))
	heads.Table.DealerPlace, heads.Table.SmallBlindPlace, heads.Table.BigBlindPlace = 1, 1, 2
	testTx(f.e, heads).setFirstTurn()
	if heads.Table.TurnPlace != 1 {
		t.Fatalf("heads-up preflop must start with the dealer, got %d", heads.Table.TurnPlace)
	}
}

func TestFirstTurnAfterFlopStartsLeftOfDealer(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100))
	agg.Table.Round = model.Flop
	agg.Table.DealerPlace = 3
	agg.SeatAt(1).BetType = model.BetFold
	testTx(f.e, agg).setFirstTurn()
	if agg.Table.TurnPlace != 2 {
		t.Fatalf("expected turn 2, got %d", agg.Table.TurnPlace)
	}
	if agg.Table.LastWordPlace != 3 {
		t.Fatalf("expected last word 3, got %d", agg.Table.LastWordPlace)
	}
}

func TestAllInBigBlindHandsLastWordBack(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 0), newSeat(4, "d", 100))
	agg.Table.DealerPlace, agg.Table.SmallBlindPlace, agg.Table.BigBlindPlace = 1, 2, 3
	agg.SeatAt(3).BetType = model.BetAllIn
	agg.SeatAt(2).BetType = model.BetAllIn
	testTx(f.e, agg).setFirstTurn()
	if agg.Table.LastWordPlace != 1 {
		t.Fatalf("expected last word to walk back to 1, got %d", agg.Table.LastWordPlace)
	}
	if agg.Table.TurnPlace != 4 {
		t.Fatalf("expected turn 4, got %d", agg.Table.TurnPlace)
	}
}

func TestEveryoneAllInStopsAfterOneCycle(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 0), newSeat(2, "b", 0), newSeat(3, "c", 0))
	for _, s := range agg.Seats {
		s.BetType = model.BetAllIn
	}
	agg.Table.BigBlindPlace = 3
	x := testTx(f.e, agg)
	if got := x.calculateLastWordIndex(agg.Contenders()); got != 0 {
		t.Fatalf("expected no last word, got %d", got)
	}
	x.setFirstTurn()
	if agg.Table.TurnPlace != 0 {
		t.Fatalf("expected no turn, got %d", agg.Table.TurnPlace)
	}
	if !x.roundClosed() {
		t.Fatal("a round nobody can bet in is closed")
	}
}

func TestValidateTurn(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100))
	agg.Table.TurnPlace = 1
	agg.SeatAt(1).BetExpirationTime = t0.Unix() + 10
	x := testTx(f.e, agg)

	if err := x.validateTurn(agg.SeatAt(1)); err != nil {
		t.Fatalf("turn seat rejected: %v", err)
	}
	if err := x.validateTurn(agg.SeatAt(2)); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("expected wrong turn, got %v", err)
	}
	agg.SeatAt(1).BetExpirationTime = t0.Unix() - 1
	if err := x.validateTurn(agg.SeatAt(1)); !errors.Is(err, ErrTimeExpired) {
		t.Fatalf("expected time expired, got %v", err)
	}
	agg.SeatAt(1).BetExpirationTime = t0.Unix() + 10
	agg.SeatAt(1).Status = model.SeatWaitingBB
	if err := x.validateTurn(agg.SeatAt(1)); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected inactive, got %v", err)
	}
	if code, slug, ok := Code(x.validateTurn(agg.SeatAt(2))); !ok || code != 1001 || slug != "wrong_turn" {
		t.Fatalf("unexpected code %d %q", code, slug)
	}
}

func TestRoundClosedNeedsBigBlindOption(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 98), newSeat(2, "b", 98))
	agg.SeatAt(1).Bet = money.New(2)
	agg.SeatAt(1).BetType = model.BetCall
	agg.SeatAt(2).Bet = money.New(2)
	agg.SeatAt(2).BetType = model.BetBigBlind
	x := testTx(f.e, agg)
	if x.roundClosed() {
		t.Fatal("big blind has not acted yet")
	}
	agg.SeatAt(2).BetType = model.BetCheck
	if !x.roundClosed() {
		t.Fatal("expected round closed after the big blind checks")
	}
}

func TestLastWordFallsBackToHighestSpeaker(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100))
	agg.Table.Round = model.Flop
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setFirstTurn()
	if agg.Table.TurnPlace != 2 || agg.Table.LastWordPlace != 3 {
		t.Fatalf("expected turn 2 last word 3, got %d %d", agg.Table.TurnPlace, agg.Table.LastWordPlace)
	}

	// A wager behind the turn takes the last word.
	agg.SeatAt(2).Bet = money.New(10)
	agg.SeatAt(2).BetType = model.BetRaise
	agg.Table.TurnPlace = 3
	x.updateLastWordPlace()
	if agg.Table.LastWordPlace != 2 {
		t.Fatalf("expected last word 2, got %d", agg.Table.LastWordPlace)
	}
}

func TestRoundCloseIgnoresLastWordPointer(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100))
	agg.Table.Round = model.Flop
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setFirstTurn()

	// The pointer sits on 3, but the dealer still has to act.
	agg.SeatAt(2).BetType = model.BetCheck
	agg.SeatAt(3).BetType = model.BetCheck
	if x.roundClosed() {
		t.Fatal("round closed before the dealer acted")
	}
	agg.SeatAt(1).BetType = model.BetCheck
	if !x.roundClosed() {
		t.Fatal("expected round closed once everyone checked")
	}
}
