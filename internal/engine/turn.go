package engine

import (
	"poker-platform/internal/model"
)

// setFirstTurn opens betting for the current round. Preflop action starts
// after the big blind, who keeps the last word; later rounds start after
// the dealer.
func (t *tx) setFirstTurn() {
	tbl := t.agg.Table
	tbl.TurnPlace = 0
	tbl.LastWordPlace = 0
	speakers := t.agg.Speakers()
	if tbl.Round.Final() || len(speakers) == 0 {
		return
	}
	if tbl.Round != model.PreFlop {
		t.updateTurnPlace(speakers, tbl.DealerPlace)
		t.updateLastWordPlace()
		return
	}

	contenders := t.agg.Contenders()
	tbl.LastWordPlace = tbl.BigBlindPlace
	if bb := t.agg.SeatAt(tbl.BigBlindPlace); bb != nil && bb.BetType == model.BetAllIn {
		tbl.LastWordPlace = t.calculateLastWordIndex(contenders)
	}
	first := nextSeat(contenders, tbl.BigBlindPlace)
	if first.BetType.Silent() {
		t.updateTurnPlace(speakers, first.Place)
		return
	}
	t.setTurn(first)
}

// calculateLastWordIndex walks back from the big blind to the nearest seat
// that can still bet. It gives up after one full cycle.
func (t *tx) calculateLastWordIndex(contenders []*model.Seat) int {
	place := t.agg.Table.BigBlindPlace
	for range contenders {
		s := prevSeat(contenders, place)
		if !s.BetType.Silent() {
			return s.Place
		}
		place = s.Place
	}
	return 0
}

// updateTurnPlace gives the turn to the first seat of active after from
// and starts its timer.
func (t *tx) updateTurnPlace(active []*model.Seat, from int) {
	s := nextSeat(active, from)
	if s == nil {
		t.agg.Table.TurnPlace = 0
		return
	}
	t.setTurn(s)
}

func (t *tx) setTurn(s *model.Seat) {
	turnTime := int64(t.agg.Table.Setting.TurnTime)
	if s.SeatOut != 0 {
		turnTime = int64(t.e.opts.AfkTurnTime)
	}
	s.BetExpirationTime = t.now + turnTime
	t.agg.Table.TurnPlace = s.Place
}

func (t *tx) changeTurnPlace() {
	t.updateTurnPlace(t.agg.Speakers(), t.agg.Table.TurnPlace)
}

// updateLastWordPlace points the last word at the closest seat before the
// turn that holds a live wager, or at the highest placed seat still able to
// bet. It marks the closing seat for observers; roundClosed decides when
// betting actually ends.
func (t *tx) updateLastWordPlace() {
	tbl := t.agg.Table
	speakers := t.agg.Speakers()
	place := tbl.TurnPlace
	for range speakers {
		s := prevSeat(speakers, place)
		if s.Place == tbl.TurnPlace {
			break
		}
		if s.BetType != model.BetNone {
			tbl.LastWordPlace = s.Place
			return
		}
		place = s.Place
	}
	if len(speakers) > 0 {
		tbl.LastWordPlace = speakers[len(speakers)-1].Place
	}
}

// validateTurn runs before any action and writes nothing.
func (t *tx) validateTurn(s *model.Seat) error {
	tbl := t.agg.Table
	if s.Place == tbl.TurnPlace && tbl.State == model.StateInProgress && s.BetExpirationTime < t.now {
		return coded(ErrTimeExpired)
	}
	if tbl.State != model.StateInProgress || tbl.Round.Final() || s.Place != tbl.TurnPlace {
		return coded(ErrWrongTurn)
	}
	if s.Status != model.SeatActive || s.BetType.Silent() {
		return coded(ErrInactive)
	}
	return nil
}

// roundClosed reports whether every seat that can still bet has acted and
// matched the highest bet. One remaining bettor who already covers it has
// nobody left to answer.
func (t *tx) roundClosed() bool {
	speakers := t.agg.Speakers()
	maxBet := t.agg.MaxBet(0)
	switch len(speakers) {
	case 0:
		return true
	case 1:
		if !speakers[0].Bet.LessThan(maxBet) {
			return true
		}
	}
	for _, s := range speakers {
		if !s.BetType.Acted() || !s.Bet.Equal(maxBet) {
			return false
		}
	}
	return true
}
