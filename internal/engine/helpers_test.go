package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"poker-platform/internal/lock"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
	"poker-platform/internal/store/memstore"
)

var t0 = time.Unix(1_700_000_000, 0)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_, event, _ string, _ any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type fixture struct {
	e   *Engine
	st  *memstore.Store
	clk *clock
	rec *recorder
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	clk := &clock{now: t0}
	rec := &recorder{}
	st.SetClock(clk.Now)
	e := New(st, lock.NewLocal(), rec, Options{Now: clk.Now, Rand: rand.New(rand.NewSource(1))})
	return &fixture{e: e, st: st, clk: clk, rec: rec, ctx: context.Background()}
}

func cashSetting() model.TableSetting {
	return model.TableSetting{
		ID:         "nl-1-2",
		Name:       "NL 1/2",
		SmallBlind: money.New(1),
		BigBlind:   money.New(2),
		BuyIn:      money.New(100),
		TurnTime:   30,
		Seats:      6,
	}.WithDefaults()
}

func newSeat(place int, user string, stack int64) *model.Seat {
	return &model.Seat{ID: "seat-" + user, UserID: user, Place: place, Stack: money.New(stack), Status: model.SeatActive}
}

func tableAgg(seats ...*model.Seat) *model.TableAggregate {
	agg := &model.TableAggregate{
		Table: &model.Table{
			ID:      "t1",
			Setting: cashSetting(),
			State:   model.StateInProgress,
			Round:   model.PreFlop,
			Session: "s1",
		},
		Seats: seats,
		Books: model.NewBooks(),
	}
	agg.SortSeats()
	return agg
}

// testTx wraps an aggregate without a repository round trip.
func testTx(e *Engine, agg *model.TableAggregate) *tx {
	return &tx{e: e, ctx: context.Background(), agg: agg, now: e.now(), log: zerolog.Nop()}
}

// joinTwo seats a and b at a fresh cash table with 100 each.
func (f *fixture) joinTwo(t *testing.T) string {
	t.Helper()
	return f.joinTwoWith(t, cashSetting())
}

func (f *fixture) joinTwoWith(t *testing.T, setting model.TableSetting) string {
	t.Helper()
	f.st.AddSetting(setting)
	f.st.SetAccount("a", money.New(1000))
	f.st.SetAccount("b", money.New(1000))
	sa, err := f.e.JoinCashTable(f.ctx, setting.ID, "a", money.New(100))
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	if _, err := f.e.JoinCashTable(f.ctx, setting.ID, "b", money.New(100)); err != nil {
		t.Fatalf("join b: %v", err)
	}
	return sa.TableID
}

func (f *fixture) load(t *testing.T, tableID string) *model.TableAggregate {
	t.Helper()
	agg, err := f.st.LoadTable(f.ctx, tableID)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	return agg
}

func (f *fixture) advance(t *testing.T, tableID string) {
	t.Helper()
	if err := f.e.Advance(f.ctx, tableID); err != nil {
		t.Fatalf("advance: %v", err)
	}
}

// playPassive checks or calls for whoever holds the turn until betting ends.
func (f *fixture) playPassive(t *testing.T, tableID string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		agg := f.load(t, tableID)
		if agg.Table.State != model.StateInProgress || agg.Table.Round.Final() {
			return
		}
		s := agg.SeatAt(agg.Table.TurnPlace)
		if s == nil {
			t.Fatalf("no seat at turn place %d", agg.Table.TurnPlace)
		}
		bt := model.BetCheck
		if agg.MaxBet(s.Place).GreaterThan(s.Bet) {
			bt = model.BetCall
		}
		if err := f.e.Bet(f.ctx, tableID, Action{UserID: s.UserID, BetType: bt}); err != nil {
			t.Fatalf("%s %s in %s: %v", s.UserID, bt, agg.Table.Round, err)
		}
	}
	t.Fatal("betting did not end")
}

func stackOf(agg *model.TableAggregate, user string) money.Money {
	if s := agg.SeatOf(user); s != nil {
		return s.Stack
	}
	return money.Zero
}
