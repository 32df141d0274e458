// Package memstore keeps aggregates in memory. Transactions run one at a
// time; reads made from inside a transaction see the committed state. It
// backs the engine tests and the table simulator.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
	"poker-platform/internal/store"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	settings    map[string]model.TableSetting
	tables      map[string]*model.Table
	seats       map[string][]*model.Seat
	invoices    map[string][]*model.Invoice
	banks       map[string][]*model.Bank
	winners     map[string][]*model.Winner
	tournaments map[string]*model.Tournament
	members     map[string][]*model.Member
	prizes      map[string][]*model.Prize
	accounts    map[string]*model.Account
	entries     []model.LedgerEntry
	reforms     map[string]model.ReformEntry

	now func() time.Time
}

func New() *Store {
	s := &Store{
		settings:    map[string]model.TableSetting{},
		tables:      map[string]*model.Table{},
		seats:       map[string][]*model.Seat{},
		invoices:    map[string][]*model.Invoice{},
		banks:       map[string][]*model.Bank{},
		winners:     map[string][]*model.Winner{},
		tournaments: map[string]*model.Tournament{},
		members:     map[string][]*model.Member{},
		prizes:      map[string][]*model.Prize{},
		accounts:    map[string]*model.Account{},
		reforms:     map[string]model.ReformEntry{},
		now:         time.Now,
	}
	s.accounts[model.HouseAccount] = &model.Account{ID: model.HouseAccount}
	return s
}

func (s *Store) NewID() string {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	return store.NewIDAt(now())
}

// SetClock stamps new ids with now, for runs on a simulated clock.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// SetAccount creates or overwrites a user account.
func (s *Store) SetAccount(id string, balance money.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &model.Account{ID: id, Balance: balance}
}

func (s *Store) Balance(id string) money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return a.Balance
	}
	return money.Zero
}

func (s *Store) Entries() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.entries...)
}

func (s *Store) AddSetting(setting model.TableSetting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[setting.ID] = setting.WithDefaults()
}

// PutTable stores a table with its seats as they are.
func (s *Store) PutTable(t *model.Table, seats ...*model.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.ID] = cloneTable(t)
	s.seats[t.ID] = sortSeats(cloneSeats(seats))
}

func (s *Store) PutTournament(t *model.Tournament, members ...*model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = cloneTournament(t)
	s.members[t.ID] = cloneMembers(members)
}

func (s *Store) Tournament(id string) (*model.Tournament, []*model.Member, []*model.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTournament(s.tournaments[id]), cloneMembers(s.members[id]), clonePrizes(s.prizes[id])
}

func (s *Store) Reforms() []model.ReformEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReformEntry, 0, len(s.reforms))
	for _, r := range s.reforms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
	return out
}

func sortSeats(seats []*model.Seat) []*model.Seat {
	sort.Slice(seats, func(i, j int) bool { return seats[i].Place < seats[j].Place })
	return seats
}

func (s *Store) books(ids ...string) *model.Books {
	b := model.NewBooks()
	for _, id := range append(ids, model.HouseAccount) {
		if a, ok := s.accounts[id]; ok {
			c := *a
			b.Accounts[id] = &c
		}
	}
	return b
}

func (s *Store) loadTable(id string) (*model.TableAggregate, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	agg := &model.TableAggregate{
		Table:    cloneTable(t),
		Seats:    cloneSeats(s.seats[id]),
		Invoices: cloneInvoices(s.invoices[id]),
		Banks:    cloneBanks(s.banks[id]),
		Winners:  cloneWinners(s.winners[id]),
	}
	agg.SortSeats()
	if t.TournamentID != "" {
		tr, ok := s.tournaments[t.TournamentID]
		if !ok {
			return nil, model.ErrNotFound
		}
		agg.Tournament = cloneTournament(tr)
	}
	return agg, nil
}

func (s *Store) LoadTable(_ context.Context, tableID string) (*model.TableAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTable(tableID)
}

func (s *Store) InTableTx(ctx context.Context, tableID string, fn func(*model.TableAggregate) error, users ...string) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	agg, err := s.loadTable(tableID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	ids := append([]string(nil), users...)
	for _, seat := range agg.Seats {
		ids = append(ids, seat.UserID)
	}
	agg.Books = s.books(ids...)
	s.mu.Unlock()

	if err := fn(agg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[tableID] = cloneTable(agg.Table)
	s.seats[tableID] = sortSeats(cloneSeats(agg.Seats))
	s.invoices[tableID] = cloneInvoices(agg.Invoices)
	s.banks[tableID] = cloneBanks(agg.Banks)
	s.winners[tableID] = cloneWinners(agg.Winners)
	if agg.Tournament != nil {
		s.tournaments[agg.Tournament.ID] = cloneTournament(agg.Tournament)
		for _, m := range s.members[agg.Tournament.ID] {
			if rank, ok := agg.Eliminated[m.UserID]; ok {
				m.Rank = rank
			}
		}
	}
	s.commitBooks(agg.Books)
	return nil
}

func (s *Store) InTournamentTx(ctx context.Context, tournamentID string, fn func(*model.TournamentAggregate) error, users ...string) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	t, ok := s.tournaments[tournamentID]
	if !ok {
		s.mu.Unlock()
		return model.ErrNotFound
	}
	agg := &model.TournamentAggregate{
		Tournament: cloneTournament(t),
		Members:    cloneMembers(s.members[tournamentID]),
		Prizes:     clonePrizes(s.prizes[tournamentID]),
	}
	ids := append([]string(nil), users...)
	for _, m := range agg.Members {
		ids = append(ids, m.UserID)
	}
	agg.Books = s.books(ids...)
	s.mu.Unlock()

	if err := fn(agg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[tournamentID] = cloneTournament(agg.Tournament)
	s.members[tournamentID] = cloneMembers(agg.Members)
	s.prizes[tournamentID] = clonePrizes(agg.Prizes)
	for _, ta := range agg.NewTables {
		s.tables[ta.Table.ID] = cloneTable(ta.Table)
		s.seats[ta.Table.ID] = sortSeats(cloneSeats(ta.Seats))
	}
	s.commitBooks(agg.Books)
	return nil
}

func (s *Store) commitBooks(b *model.Books) {
	if b == nil {
		return
	}
	for id, a := range b.Accounts {
		c := *a
		s.accounts[id] = &c
	}
	for _, e := range b.Entries {
		if e.ID == "" {
			e.ID = store.NewIDAt(s.now())
		}
		s.entries = append(s.entries, e)
	}
}

// ActiveTableIDs lists tables that are not archived.
func (s *Store) ActiveTableIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for id, t := range s.tables {
		if !t.Archived {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) TournamentIDs(_ context.Context, statuses ...model.TournamentStatus) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for id, t := range s.tournaments {
		for _, st := range statuses {
			if t.Status == st {
				out = append(out, id)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) TournamentTables(_ context.Context, tournamentID string) ([]model.TableSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.TableSummary{}
	for id, t := range s.tables {
		if t.TournamentID != tournamentID {
			continue
		}
		sum := model.TableSummary{ID: id, TournamentID: tournamentID, Seats: len(s.seats[id]), Archived: t.Archived}
		for _, seat := range s.seats[id] {
			sum.UserIDs = append(sum.UserIDs, seat.UserID)
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SeatedTable(_ context.Context, settingID, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tables {
		if t.Setting.ID != settingID || t.TournamentID != "" {
			continue
		}
		for _, seat := range s.seats[id] {
			if seat.UserID == userID {
				return id, nil
			}
		}
	}
	return "", nil
}

func (s *Store) OpenTable(_ context.Context, settingID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := s.tables[id]
		if t.Setting.ID == settingID && t.TournamentID == "" && !t.Archived && len(s.seats[id]) < t.Setting.Seats {
			return id, nil
		}
	}
	setting, ok := s.settings[settingID]
	if !ok {
		return "", model.ErrNotFound
	}
	t := &model.Table{ID: store.NewIDAt(s.now()), Setting: setting, State: model.StateReady}
	s.tables[t.ID] = t
	return t.ID, nil
}

func (s *Store) QueueReform(_ context.Context, entry model.ReformEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reforms[entry.TableID]; ok {
		return false, nil
	}
	s.reforms[entry.TableID] = entry
	return true, nil
}
