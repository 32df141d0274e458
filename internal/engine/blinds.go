package engine

import (
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// nextSeat returns the first seat placed after place, wrapping to the
// first one. seats must be sorted by place.
func nextSeat(seats []*model.Seat, place int) *model.Seat {
	if len(seats) == 0 {
		return nil
	}
	for _, s := range seats {
		if s.Place > place {
			return s
		}
	}
	return seats[0]
}

// prevSeat is nextSeat walking backwards.
func prevSeat(seats []*model.Seat, place int) *model.Seat {
	if len(seats) == 0 {
		return nil
	}
	for i := len(seats) - 1; i >= 0; i-- {
		if seats[i].Place < place {
			return seats[i]
		}
	}
	return seats[len(seats)-1]
}

// postAutoBlinds makes seats that asked to skip the wait post a big blind
// and join the hand.
func (t *tx) postAutoBlinds() {
	_, bb := t.agg.Blinds()
	for _, s := range t.agg.SeatsWith(model.SeatAutoBlind) {
		t.post(s, bb, model.BetBigBlind)
		s.Status = model.SeatActive
	}
}

// setDealer moves the button to the next seat dealt into the hand.
func (t *tx) setDealer() {
	tbl := t.agg.Table
	if d := nextSeat(t.agg.SeatsWith(model.SeatActive), tbl.DealerPlace); d != nil {
		tbl.DealerPlace = d.Place
	}
}

func (t *tx) setSmallBlind() {
	tbl := t.agg.Table
	active := t.agg.SeatsWith(model.SeatActive)
	place := tbl.DealerPlace
	if len(active) >= 3 {
		place = nextSeat(active, tbl.DealerPlace).Place
	}
	tbl.SmallBlindPlace = place
	sb, _ := t.agg.Blinds()
	if s := t.agg.SeatAt(place); s != nil {
		t.post(s, sb, model.BetSmallBlind)
	}
}

// setBigBlind picks the big blind among active seats and seats waiting
// for it. A waiting seat that posts joins the hand.
func (t *tx) setBigBlind() {
	tbl := t.agg.Table
	active := t.agg.SeatsWith(model.SeatActive)
	if t.agg.Tournament != nil && len(active) < 3 {
		for _, s := range t.agg.SeatsWith(model.SeatWaitingBB) {
			s.Status = model.SeatActive
		}
		active = t.agg.SeatsWith(model.SeatActive)
	}
	candidates := t.agg.SeatsWith(model.SeatActive, model.SeatWaitingBB)

	var bb *model.Seat
	if len(active) < 3 {
		for _, s := range candidates {
			if s.Place != tbl.DealerPlace {
				bb = s
				break
			}
		}
	} else {
		bb = nextSeat(candidates, tbl.SmallBlindPlace)
	}
	if bb == nil {
		return
	}
	bb.Status = model.SeatActive
	tbl.BigBlindPlace = bb.Place
	_, amount := t.agg.Blinds()
	t.post(bb, amount, model.BetBigBlind)
}

// post moves min(stack, blind) from the stack to the bet. A seat left
// without chips is all-in.
func (t *tx) post(s *model.Seat, blind money.Money, bt model.BetType) {
	amount := money.Min(s.Stack, blind)
	s.Stack = s.Stack.Sub(amount)
	s.Bet = s.Bet.Add(amount)
	s.BetType = bt
	if !s.Stack.IsPositive() {
		s.BetType = model.BetAllIn
	}
}
