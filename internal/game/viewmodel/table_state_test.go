package viewmodel

import (
	"testing"

	"poker-platform/internal/game"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func m(s string) money.Money { return money.MustParse(s) }

func sampleTable() *model.TableAggregate {
	return &model.TableAggregate{
		Table: &model.Table{
			ID:        "t1",
			Session:   "s1",
			State:     model.StateInProgress,
			Round:     model.Flop,
			TurnPlace: 2,
			Cards:     game.MustParseCards(game.KindTable, "As", "Kh", "Qd"),
			Setting:   model.TableSetting{SmallBlind: m("1"), BigBlind: m("2")}.WithDefaults(),
		},
		Seats: []*model.Seat{
			{Place: 1, UserID: "u1", Stack: m("98"), Bet: m("4"), BetSum: m("2"), BetType: model.BetRaise, Status: model.SeatActive,
				Cards: game.MustParseCards(game.KindHand, "2c", "3c")},
			{Place: 2, UserID: "u2", Stack: m("80"), Bet: m("0"), BetSum: m("2"), Status: model.SeatActive,
				Cards: game.MustParseCards(game.KindHand, "Ac", "Ad")},
		},
	}
}

func TestBuildTableStateVisibility(t *testing.T) {
	view := BuildTableState(sampleTable(), "u1")
	if view.MyPlace != 1 {
		t.Fatalf("expected my place 1, got %d", view.MyPlace)
	}
	if len(view.Seats[0].HoleCards) != 2 || len(view.Seats[1].HoleCards) != 0 {
		t.Fatalf("only own cards should be visible: %+v", view.Seats)
	}
	if view.Seats[0].Combination == nil {
		t.Fatal("expected own combination on the flop")
	}
	if len(view.CommunityCards) != 3 {
		t.Fatalf("expected 3 community cards, got %d", len(view.CommunityCards))
	}
}

func TestBuildTableStatePotAndToCall(t *testing.T) {
	view := BuildTableState(sampleTable(), "")
	if !view.Pot.Equal(m("8")) {
		t.Fatalf("expected pot 8, got %s", view.Pot)
	}
	if !view.Seats[1].ToCall.Equal(m("4")) || !view.Seats[0].ToCall.IsZero() {
		t.Fatalf("unexpected to_call %s %s", view.Seats[0].ToCall, view.Seats[1].ToCall)
	}
	if !view.Seats[1].IsTurn || view.Seats[0].IsTurn {
		t.Fatal("turn flag on wrong seat")
	}
	for _, s := range view.Seats {
		if len(s.HoleCards) != 0 {
			t.Fatal("public view leaked hole cards")
		}
	}
}

func TestBuildTableStateRevealsAtShowdown(t *testing.T) {
	agg := sampleTable()
	agg.Table.Round = model.ShowDown
	agg.Table.State = model.StateFinished
	agg.Seats[0].BetType = model.BetFold
	view := BuildTableState(agg, "")
	if len(view.Seats[1].HoleCards) != 2 {
		t.Fatal("showdown should reveal live hands")
	}
	if len(view.Seats[0].HoleCards) != 0 {
		t.Fatal("folded hands stay hidden")
	}
}
