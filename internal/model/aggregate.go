package model

import (
	"sort"

	"poker-platform/internal/money"
)

// TableAggregate is everything one table transaction may read or change.
// The repository loads it under lock and writes it back on commit.
type TableAggregate struct {
	Table      *Table
	Seats      []*Seat
	Tournament *Tournament
	Invoices   []*Invoice
	Banks      []*Bank
	Winners    []*Winner
	Books      *Books

	// Eliminated maps a tournament user to the rank they finished at.
	Eliminated map[string]int
	Removed    []*Seat
}

func (a *TableAggregate) SortSeats() {
	sort.Slice(a.Seats, func(i, j int) bool { return a.Seats[i].Place < a.Seats[j].Place })
}

func (a *TableAggregate) SeatAt(place int) *Seat {
	for _, s := range a.Seats {
		if s.Place == place {
			return s
		}
	}
	return nil
}

func (a *TableAggregate) SeatOf(userID string) *Seat {
	for _, s := range a.Seats {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

func (a *TableAggregate) AddSeat(s *Seat) {
	a.Seats = append(a.Seats, s)
	a.SortSeats()
}

func (a *TableAggregate) RemoveSeat(place int) *Seat {
	for i, s := range a.Seats {
		if s.Place == place {
			a.Seats = append(a.Seats[:i], a.Seats[i+1:]...)
			a.Removed = append(a.Removed, s)
			return s
		}
	}
	return nil
}

// SeatsWith returns the seats in one of the statuses, ordered by place.
func (a *TableAggregate) SeatsWith(statuses ...SeatStatus) []*Seat {
	out := []*Seat{}
	for _, s := range a.Seats {
		for _, st := range statuses {
			if s.Status == st {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// Contenders are active seats that have not folded.
func (a *TableAggregate) Contenders() []*Seat {
	out := []*Seat{}
	for _, s := range a.Seats {
		if s.Status == SeatActive && s.BetType != BetFold {
			out = append(out, s)
		}
	}
	return out
}

// Speakers are contenders that can still bet.
func (a *TableAggregate) Speakers() []*Seat {
	return ExcludeSilent(a.Contenders())
}

func ExcludeSilent(seats []*Seat) []*Seat {
	out := make([]*Seat, 0, len(seats))
	for _, s := range seats {
		if !s.BetType.Silent() {
			out = append(out, s)
		}
	}
	return out
}

// MaxBet is the highest current-round bet, ignoring the seat at exclude.
func (a *TableAggregate) MaxBet(exclude int) money.Money {
	out := money.Zero
	for _, s := range a.Seats {
		if s.Place == exclude {
			continue
		}
		out = money.Max(out, s.Bet)
	}
	return out
}

func (a *TableAggregate) PendingInvoices(userID string) []*Invoice {
	out := []*Invoice{}
	for _, inv := range a.Invoices {
		if inv.UserID == userID && inv.Status == InvoicePending {
			out = append(out, inv)
		}
	}
	return out
}

// Blinds returns the blinds in force, taken from the tournament when the
// table belongs to one.
func (a *TableAggregate) Blinds() (money.Money, money.Money) {
	if a.Tournament != nil {
		return a.Tournament.SmallBlind, a.Tournament.BigBlind
	}
	return a.Table.Setting.SmallBlind, a.Table.Setting.BigBlind
}

// TournamentAggregate is the unit of a tournament transaction. Tables are
// read without locks and only used for counting.
type TournamentAggregate struct {
	Tournament *Tournament
	Members    []*Member
	Prizes     []*Prize
	Books      *Books

	// NewTables are created on start, together with their seats.
	NewTables []*TableAggregate
}

func (a *TournamentAggregate) Member(userID string) *Member {
	for _, m := range a.Members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

func (a *TournamentAggregate) RemoveMember(userID string) {
	for i, m := range a.Members {
		if m.UserID == userID {
			a.Members = append(a.Members[:i], a.Members[i+1:]...)
			return
		}
	}
}

// TableSummary is an unlocked view of a table used for counting.
type TableSummary struct {
	ID           string
	TournamentID string
	Seats        int
	Archived     bool
	UserIDs      []string
}
