package engine

import "poker-platform/internal/model"

// timeBankByPeriod tops up every seat's bank once per elapsed period.
func (t *tx) timeBankByPeriod() {
	cfg := t.agg.Table.Setting.TimeBank
	if cfg.PeriodInSec <= 0 || cfg.Time <= 0 {
		return
	}
	for _, s := range t.agg.Seats {
		tb := &s.TimeBank
		if tb.LastUpdatedTime == 0 {
			tb.LastUpdatedTime = t.now
			continue
		}
		periods := (t.now - tb.LastUpdatedTime) / cfg.PeriodInSec
		if periods <= 0 {
			continue
		}
		tb.Time = accrue(tb.Time, int(periods)*cfg.Time, cfg.TimeLimit)
		tb.LastUpdatedTime += periods * cfg.PeriodInSec
	}
}

// timeBankByHand tops up the bank of seats dealt into PeriodInHand hands.
func (t *tx) timeBankByHand() {
	cfg := t.agg.Table.Setting.TimeBank
	if cfg.PeriodInHand <= 0 || cfg.Time <= 0 {
		return
	}
	for _, s := range t.agg.SeatsWith(model.SeatActive) {
		tb := &s.TimeBank
		tb.CountPlayedHand++
		if tb.CountPlayedHand >= cfg.PeriodInHand {
			tb.Time = accrue(tb.Time, cfg.Time, cfg.TimeLimit)
			tb.CountPlayedHand = 0
		}
	}
}

func accrue(current, bonus, limit int) int {
	current += bonus
	if limit > 0 && current > limit {
		return limit
	}
	return current
}

// activateTimeBank extends an expired turn by the seat's remaining bank.
// Away seats never draw on it.
func (t *tx) activateTimeBank(s *model.Seat) bool {
	tb := &s.TimeBank
	if tb.Active || tb.Time <= 0 || s.SeatOut != 0 {
		return false
	}
	tb.Active = true
	tb.ActivationTime = t.now
	s.BetExpirationTime = t.now + int64(tb.Time)
	t.dirty = true
	t.log.Debug().Int("place", s.Place).Int("time_bank", tb.Time).Msg("time bank activated")
	return true
}

// timeBankAfterTurn charges the time used from an active bank.
func (t *tx) timeBankAfterTurn(s *model.Seat) {
	tb := &s.TimeBank
	if !tb.Active {
		return
	}
	used := int(t.now - tb.ActivationTime)
	tb.Time -= used
	if tb.Time < 0 {
		tb.Time = 0
	}
	tb.Active = false
	tb.ActivationTime = 0
}
