package engine

import (
	"testing"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func fiveSeats() *model.TableAggregate {
	return tableAgg(
		newSeat(1, "u1", 100),
		newSeat(2, "u2", 100),
		newSeat(3, "u3", 100),
		newSeat(4, "u4", 100),
		newSeat(5, "u5", 100),
	)
}

func TestBlindsFollowDealer(t *testing.T) {
	f := newFixture(t)
	agg := fiveSeats()
	agg.Table.DealerPlace = 3
	x := testTx(f.e, agg)
	x.setSmallBlind()
	x.setBigBlind()

	if agg.Table.SmallBlindPlace != 4 || agg.Table.BigBlindPlace != 5 {
		t.Fatalf("expected sb=4 bb=5, got sb=%d bb=%d", agg.Table.SmallBlindPlace, agg.Table.BigBlindPlace)
	}
	if sb := agg.SeatAt(4); !sb.Bet.Equal(money.New(1)) || sb.BetType != model.BetSmallBlind || !sb.Stack.Equal(money.New(99)) {
		t.Fatalf("unexpected small blind seat %+v", sb)
	}
	if bb := agg.SeatAt(5); !bb.Bet.Equal(money.New(2)) || bb.BetType != model.BetBigBlind {
		t.Fatalf("unexpected big blind seat %+v", bb)
	}
}

func TestSmallBlindSkipsInactiveSeat(t *testing.T) {
	f := newFixture(t)
	agg := fiveSeats()
	agg.SeatAt(4).Status = model.SeatLose
	agg.Table.DealerPlace = 3
	x := testTx(f.e, agg)
	x.setSmallBlind()
	x.setBigBlind()

	if agg.Table.SmallBlindPlace != 5 {
		t.Fatalf("expected sb=5, got %d", agg.Table.SmallBlindPlace)
	}
	if agg.Table.BigBlindPlace != 1 {
		t.Fatalf("expected bb to wrap to 1, got %d", agg.Table.BigBlindPlace)
	}
}

func TestHeadsUpDealerPostsSmallBlind(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(4, "b", 100))
	agg.Table.DealerPlace = 4
	x := testTx(f.e, agg)
	x.setDealer()
	if agg.Table.DealerPlace != 1 {
		t.Fatalf("expected dealer to wrap to 1, got %d", agg.Table.DealerPlace)
	}
	x.setSmallBlind()
	x.setBigBlind()
	if agg.Table.SmallBlindPlace != 1 || agg.Table.BigBlindPlace != 4 {
		t.Fatalf("expected sb=1 bb=4, got sb=%d bb=%d", agg.Table.SmallBlindPlace, agg.Table.BigBlindPlace)
	}
}

func TestShortStackBlindGoesAllIn(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 1))
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setSmallBlind()
	x.setBigBlind()

	bb := agg.SeatAt(2)
	if bb.BetType != model.BetAllIn || !bb.Stack.IsZero() || !bb.Bet.Equal(money.New(1)) {
		t.Fatalf("expected all-in for 1, got %+v", bb)
	}
}

func TestTournamentPromotesWaitingSeats(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100))
	agg.SeatAt(3).Status = model.SeatWaitingBB
	agg.Tournament = &model.Tournament{ID: "tr", SmallBlind: money.New(10), BigBlind: money.New(20)}
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setSmallBlind()
	x.setBigBlind()

	if agg.SeatAt(3).Status != model.SeatActive {
		t.Fatalf("expected waiting seat promoted, got %s", agg.SeatAt(3).Status)
	}
	if agg.Table.SmallBlindPlace != 1 || !agg.SeatAt(1).Bet.Equal(money.New(10)) {
		t.Fatalf("expected dealer to post tournament small blind, got place %d bet %s", agg.Table.SmallBlindPlace, agg.SeatAt(1).Bet)
	}
	if bb := agg.SeatAt(agg.Table.BigBlindPlace); !bb.Bet.Equal(money.New(20)) {
		t.Fatalf("expected tournament big blind 20, got %s", bb.Bet)
	}
}

func TestWaitingSeatJoinsWhenPostingBigBlind(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 100), newSeat(4, "d", 100))
	agg.SeatAt(4).Status = model.SeatWaitingBB
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setSmallBlind()
	x.setBigBlind()

	if agg.Table.SmallBlindPlace != 2 || agg.Table.BigBlindPlace != 3 {
		t.Fatalf("expected sb=2 bb=3, got sb=%d bb=%d", agg.Table.SmallBlindPlace, agg.Table.BigBlindPlace)
	}
	if agg.SeatAt(4).Status != model.SeatWaitingBB {
		t.Fatalf("seat 4 must keep waiting")
	}

	agg.Table.DealerPlace = 2
	for _, s := range agg.Seats {
		s.ResetHand()
	}
	x.setSmallBlind()
	x.setBigBlind()
	if agg.Table.BigBlindPlace != 4 || agg.SeatAt(4).Status != model.SeatActive {
		t.Fatalf("expected waiting seat 4 to post and join, got bb=%d status=%s", agg.Table.BigBlindPlace, agg.SeatAt(4).Status)
	}
}

func TestDealerSkipsSeatsNotDealtIn(t *testing.T) {
	f := newFixture(t)
	agg := tableAgg(newSeat(1, "a", 100), newSeat(2, "b", 100), newSeat(3, "c", 0), newSeat(4, "d", 100))
	agg.SeatAt(2).Status = model.SeatWaitingBB
	agg.SeatAt(3).Status = model.SeatLose
	agg.Table.DealerPlace = 1
	x := testTx(f.e, agg)
	x.setDealer()
	if agg.Table.DealerPlace != 4 {
		t.Fatalf("expected the button on 4, got %d", agg.Table.DealerPlace)
	}
	x.setDealer()
	if agg.Table.DealerPlace != 1 {
		t.Fatalf("expected the button to wrap to 1, got %d", agg.Table.DealerPlace)
	}
}
