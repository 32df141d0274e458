package memstore

import (
	"poker-platform/internal/game"
	"poker-platform/internal/model"
)

func cloneTable(t *model.Table) *model.Table {
	out := *t
	out.Cards = append([]game.Card(nil), t.Cards...)
	out.Deck = append([]game.Card(nil), t.Deck...)
	return &out
}

func cloneSeats(in []*model.Seat) []*model.Seat {
	out := make([]*model.Seat, 0, len(in))
	for _, s := range in {
		out = append(out, s.Clone())
	}
	return out
}

func cloneTournament(t *model.Tournament) *model.Tournament {
	if t == nil {
		return nil
	}
	out := *t
	if t.Setting.Late != nil {
		late := *t.Setting.Late
		out.Setting.Late = &late
	}
	return &out
}

func cloneInvoices(in []*model.Invoice) []*model.Invoice {
	out := make([]*model.Invoice, 0, len(in))
	for _, inv := range in {
		c := *inv
		out = append(out, &c)
	}
	return out
}

func cloneBanks(in []*model.Bank) []*model.Bank {
	out := make([]*model.Bank, 0, len(in))
	for _, b := range in {
		c := *b
		c.Eligible = append([]int(nil), b.Eligible...)
		out = append(out, &c)
	}
	return out
}

func cloneWinners(in []*model.Winner) []*model.Winner {
	out := make([]*model.Winner, 0, len(in))
	for _, w := range in {
		c := *w
		if w.Combination != nil {
			combo := *w.Combination
			c.Combination = &combo
		}
		out = append(out, &c)
	}
	return out
}

func cloneMembers(in []*model.Member) []*model.Member {
	out := make([]*model.Member, 0, len(in))
	for _, m := range in {
		c := *m
		out = append(out, &c)
	}
	return out
}

func clonePrizes(in []*model.Prize) []*model.Prize {
	out := make([]*model.Prize, 0, len(in))
	for _, p := range in {
		c := *p
		out = append(out, &c)
	}
	return out
}
