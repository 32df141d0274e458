package engine

import (
	"sort"

	"poker-platform/internal/game"
	"poker-platform/internal/ledger"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// calculateBank rebuilds the pots of the current hand from what every seat
// has put in so far.
func (t *tx) calculateBank() {
	tbl := t.agg.Table
	contribs := make([]game.Contribution, 0, len(t.agg.Seats))
	for _, s := range t.agg.Seats {
		amount := s.BetSum.Add(s.Bet)
		if !amount.IsPositive() {
			continue
		}
		contribs = append(contribs, game.Contribution{
			Place:  s.Place,
			Amount: amount,
			Folded: s.BetType == model.BetFold || s.Status != model.SeatActive,
		})
	}
	pots := game.ComputePots(contribs)

	existing := map[int]*model.Bank{}
	banks := make([]*model.Bank, 0, len(t.agg.Banks)+len(pots))
	for _, b := range t.agg.Banks {
		if b.Session == tbl.Session {
			existing[b.Index] = b
			continue
		}
		banks = append(banks, b)
	}
	for i, p := range pots {
		b, ok := existing[i]
		if !ok {
			b = &model.Bank{ID: t.e.repo.NewID(), TableID: tbl.ID, Session: tbl.Session, Index: i}
		}
		b.Sum = p.Amount
		b.Rake = money.Zero
		b.Eligible = p.Eligible
		b.Status = model.BankInProgress
		banks = append(banks, b)
	}
	t.agg.Banks = banks
}

func (t *tx) sessionBanks(status model.BankStatus) []*model.Bank {
	out := []*model.Bank{}
	for _, b := range t.agg.Banks {
		if b.Session == t.agg.Table.Session && b.Status == status {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// takeRake charges the house share once per hand on cash tables that saw
// a flop. It comes out of the main pot first.
func (t *tx) takeRake(banks []*model.Bank) error {
	setting := t.agg.Table.Setting
	total := money.Zero
	for _, b := range banks {
		total = total.Add(b.Sum)
	}
	rake := money.Rake(total, setting.Rake, setting.RakeCap)
	left := rake
	for _, b := range banks {
		take := money.Min(left, b.Sum)
		b.Rake = take
		left = left.Sub(take)
	}
	return ledger.TakePotRake(t.agg.Books, t.agg.Table.Session, rake)
}

// detectWinner evaluates the contenders and pays every pot to its best
// eligible hands.
func (t *tx) detectWinner() error {
	tbl := t.agg.Table
	banks := t.sessionBanks(model.BankInProgress)
	if t.agg.Tournament == nil && tbl.RakeStatus {
		if err := t.takeRake(banks); err != nil {
			return err
		}
	}

	combos := map[int]game.Combination{}
	if tbl.Round != model.FastFinish {
		for _, s := range t.agg.Contenders() {
			if c, ok := game.Evaluate(tbl.Setting.Rule, s.Cards, tbl.Cards); ok {
				combos[s.Place] = c
			}
		}
	}

	for _, b := range banks {
		winners := t.bestOf(b.Eligible, combos)
		if len(winners) == 0 {
			winners = t.bestOf(places(t.agg.Contenders()), combos)
		}
		if len(winners) > 0 {
			shares := b.Sum.Sub(b.Rake).Split(len(winners))
			for i, s := range t.fromDealer(winners) {
				s.Stack = s.Stack.Add(shares[i])
				t.addWinner(s, shares[i], combos)
			}
		}
		b.Status = model.BankCompleted
	}
	if len(t.sessionWinners()) == 0 {
		t.agg.Winners = append(t.agg.Winners, &model.Winner{
			ID:      t.e.repo.NewID(),
			TableID: tbl.ID,
			Session: tbl.Session,
			Sum:     money.Zero,
		})
	}
	return nil
}

// bestOf returns the contending seats among places holding the best hand.
// Without evaluated hands every contender ties.
func (t *tx) bestOf(eligible []int, combos map[int]game.Combination) []*model.Seat {
	var best []*model.Seat
	var top game.Combination
	for _, place := range eligible {
		s := t.agg.SeatAt(place)
		if s == nil || s.Status != model.SeatActive || s.BetType == model.BetFold {
			continue
		}
		if len(combos) == 0 {
			best = append(best, s)
			continue
		}
		c, ok := combos[place]
		if !ok {
			continue
		}
		switch cmp := game.Compare(c, top); {
		case len(best) == 0 || cmp > 0:
			best = []*model.Seat{s}
			top = c
		case cmp == 0:
			best = append(best, s)
		}
	}
	return best
}

// fromDealer orders seats clockwise starting after the dealer, which is
// the order odd cents are handed out in.
func (t *tx) fromDealer(seats []*model.Seat) []*model.Seat {
	dealer := t.agg.Table.DealerPlace
	out := append([]*model.Seat(nil), seats...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Place > dealer, out[j].Place > dealer
		if a != b {
			return a
		}
		return out[i].Place < out[j].Place
	})
	return out
}

func (t *tx) addWinner(s *model.Seat, sum money.Money, combos map[int]game.Combination) {
	tbl := t.agg.Table
	for _, w := range t.agg.Winners {
		if w.Session == tbl.Session && w.UserID == s.UserID {
			w.Sum = w.Sum.Add(sum)
			return
		}
	}
	w := &model.Winner{
		ID:      t.e.repo.NewID(),
		TableID: tbl.ID,
		Session: tbl.Session,
		UserID:  s.UserID,
		Place:   s.Place,
		Sum:     sum,
	}
	if c, ok := combos[s.Place]; ok {
		w.Combination = &c
	}
	t.agg.Winners = append(t.agg.Winners, w)
}

func places(seats []*model.Seat) []int {
	out := make([]int, 0, len(seats))
	for _, s := range seats {
		out = append(out, s.Place)
	}
	return out
}
