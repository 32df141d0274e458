package engine

import (
	"context"

	"poker-platform/internal/ledger"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// JoinCashTable seats userID at a table of the setting, buying in at least
// the table buy-in. A user already seated gets their seat back.
func (e *Engine) JoinCashTable(ctx context.Context, settingID, userID string, chips money.Money) (*model.Seat, error) {
	tableID, err := e.repo.SeatedTable(ctx, settingID, userID)
	if err != nil {
		return nil, err
	}
	if tableID == "" {
		if tableID, err = e.repo.OpenTable(ctx, settingID); err != nil {
			return nil, err
		}
	}

	var seat *model.Seat
	_, err = e.withTable(ctx, tableID, func(t *tx) error {
		if s := t.agg.SeatOf(userID); s != nil {
			seat = s.Clone()
			return nil
		}
		tbl := t.agg.Table
		if t.agg.Tournament != nil {
			return coded(ErrTableNotFound)
		}
		if len(t.agg.Seats) >= tbl.Setting.Seats {
			return coded(ErrTableFull)
		}

		place := t.freePlace()
		s := &model.Seat{
			ID:       e.repo.NewID(),
			TableID:  tbl.ID,
			UserID:   userID,
			Place:    place,
			Status:   t.joinStatus(place),
			TimeBank: model.TimeBank{Time: tbl.Setting.TimeBank.Time},
		}
		if err := ledger.BuyInCash(t.agg.Books, s, money.Max(chips, tbl.Setting.BuyIn)); err != nil {
			return coded(err)
		}
		t.agg.AddSeat(s)
		tbl.Archived = false
		t.dirty = true
		t.log.Info().Str("user_id", userID).Int("place", place).Str("status", string(s.Status)).Msg("player joined")
		seat = s.Clone()
		return nil
	}, userID)
	if err != nil {
		return nil, err
	}
	return seat, nil
}

// freePlace prefers the first free place after the big blind, so the new
// seat waits the shortest time for its own big blind.
func (t *tx) freePlace() int {
	n := t.agg.Table.Setting.Seats
	for p := t.agg.Table.BigBlindPlace + 1; p <= n; p++ {
		if t.agg.SeatAt(p) == nil {
			return p
		}
	}
	for p := 1; p <= n; p++ {
		if t.agg.SeatAt(p) == nil {
			return p
		}
	}
	return 0
}

func (t *tx) joinStatus(place int) model.SeatStatus {
	tbl := t.agg.Table
	bb := tbl.BigBlindPlace
	if bb != 0 && (place == bb+1 || (bb == tbl.Setting.Seats && place == 1)) {
		return model.SeatPending
	}
	if len(t.agg.Seats)+1 > 2 {
		return model.SeatWaitingBB
	}
	return model.SeatActive
}

func handInPlay(s model.State) bool {
	return s == model.StatePrepared || s == model.StateInProgress || s == model.StateShowdown
}

// LeaveCashTable marks the seat as leaving. Chips are returned at the end
// of the hand, or at once when the seat is not dealt in.
func (e *Engine) LeaveCashTable(ctx context.Context, tableID, userID string) error {
	_, err := e.withTable(ctx, tableID, func(t *tx) error {
		if t.agg.Tournament != nil {
			return coded(ErrTableNotFound)
		}
		s := t.agg.SeatOf(userID)
		if s == nil {
			return coded(ErrPlayerNotFound)
		}
		s.Leaver = true
		t.dirty = true

		tbl := t.agg.Table
		if !handInPlay(tbl.State) || len(s.Cards) == 0 {
			if err := ledger.ReturnRemainings(t.agg, s); err != nil {
				return err
			}
		} else if tbl.State == model.StateInProgress && !tbl.Round.Final() && !s.BetType.Silent() {
			_ = t.fold(s, money.Zero)
			if s.Place == tbl.TurnPlace {
				t.afterAction(s, false)
			}
		}
		if len(t.agg.Seats) == 0 {
			tbl.Archived = true
		}
		t.log.Info().Str("user_id", userID).Msg("player left")
		return nil
	}, userID)
	return err
}

// Rebuy queues chips for the seat. The invoice is settled when the hand
// ends; on tournament tables it buys the entry chips for the entry fee.
func (e *Engine) Rebuy(ctx context.Context, tableID, userID string, amount money.Money) (*model.Invoice, error) {
	var inv *model.Invoice
	_, err := e.withTable(ctx, tableID, func(t *tx) error {
		s := t.agg.SeatOf(userID)
		if s == nil {
			return coded(ErrPlayerNotFound)
		}
		if tr := t.agg.Tournament; tr != nil {
			amount = tr.Setting.EntryChips
		}
		created, err := ledger.CreateInvoice(t.agg, s, e.repo.NewID(), amount, t.now)
		if err != nil {
			return coded(err)
		}
		inv = created
		if !handInPlay(t.agg.Table.State) {
			if err := t.approveInvoices(s); err != nil {
				return err
			}
		}
		t.dirty = true
		return nil
	}, userID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ArchiveTable closes a table. Cash seats are paid out; tournament seats
// are dropped.
func (e *Engine) ArchiveTable(ctx context.Context, tableID string) error {
	_, err := e.withTable(ctx, tableID, func(t *tx) error {
		for _, s := range append([]*model.Seat(nil), t.agg.Seats...) {
			if t.agg.Tournament == nil {
				if err := ledger.ReturnRemainings(t.agg, s); err != nil {
					return err
				}
				continue
			}
			t.agg.RemoveSeat(s.Place)
		}
		t.agg.Table.Archived = true
		t.dirty = true
		return nil
	})
	return err
}
