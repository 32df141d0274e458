package store_test

import (
	"context"
	"errors"
	"testing"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
	"poker-platform/internal/store"
	"poker-platform/internal/testutil"
)

func seedTable(t *testing.T, st *store.Store, ctx context.Context) string {
	t.Helper()
	if err := st.EnsureDefaultSettings(ctx, 30); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if err := st.EnsureAccount(ctx, id, money.New(1000)); err != nil {
			t.Fatalf("ensure account: %v", err)
		}
	}
	id, err := st.OpenTable(ctx, "nl-1-2")
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	return id
}

func TestOpenTableCreatesAndReuses(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := seedTable(t, st, ctx)
	again, err := st.OpenTable(ctx, "nl-1-2")
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	if again != id {
		t.Fatalf("expected free table %s to be reused, got %s", id, again)
	}
	if _, err := st.OpenTable(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInTableTxCommitsSeatsAndBooks(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	id := seedTable(t, st, ctx)

	err := st.InTableTx(ctx, id, func(agg *model.TableAggregate) error {
		acc := agg.Books.Accounts["a"]
		if acc == nil {
			t.Fatal("account a not locked")
		}
		acc.Balance = acc.Balance.Sub(money.New(100))
		agg.Books.Entries = append(agg.Books.Entries, model.LedgerEntry{AccountID: "a", Type: "buy_in", Amount: money.New(-100), RefType: "table", RefID: id})
		agg.AddSeat(&model.Seat{ID: st.NewID(), TableID: id, UserID: "a", Place: 1, Stack: money.New(100), Status: model.SeatActive})
		return nil
	}, "a")
	if err != nil {
		t.Fatalf("table tx: %v", err)
	}

	agg, err := st.LoadTable(ctx, id)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	if len(agg.Seats) != 1 || !agg.Seats[0].Stack.Equal(money.New(100)) {
		t.Fatalf("unexpected seats: %+v", agg.Seats)
	}
	bal, err := st.AccountBalance(ctx, "a")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.Equal(money.New(900)) {
		t.Fatalf("expected 900, got %s", bal)
	}
	entries, err := st.ListLedgerEntries(ctx, "a", 10)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID == "" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	seated, err := st.SeatedTable(ctx, "nl-1-2", "a")
	if err != nil || seated != id {
		t.Fatalf("expected seated at %s, got %q %v", id, seated, err)
	}
}

func TestInTableTxRollsBackOnError(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	id := seedTable(t, st, ctx)

	boom := errors.New("boom")
	err := st.InTableTx(ctx, id, func(agg *model.TableAggregate) error {
		agg.Books.Accounts["b"].Balance = money.Zero
		agg.Table.State = model.StateFinished
		return boom
	}, "b")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	bal, _ := st.AccountBalance(ctx, "b")
	if !bal.Equal(money.New(1000)) {
		t.Fatalf("balance moved on rollback: %s", bal)
	}
	agg, _ := st.LoadTable(ctx, id)
	if agg.Table.State != model.StateReady {
		t.Fatalf("state moved on rollback: %s", agg.Table.State)
	}
}

func TestQueueReformOnce(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	tr := &model.Tournament{ID: st.NewID(), Name: "sng", Status: model.TournamentStarted}
	if err := st.CreateTournament(ctx, tr, &model.Member{TournamentID: tr.ID, UserID: "a"}); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	err := st.InTournamentTx(ctx, tr.ID, func(agg *model.TournamentAggregate) error {
		if len(agg.Members) != 1 {
			t.Fatalf("expected one member, got %d", len(agg.Members))
		}
		agg.NewTables = append(agg.NewTables, &model.TableAggregate{
			Table: &model.Table{ID: "tt1", Setting: model.TableSetting{ID: "sng", Seats: 2}, TournamentID: tr.ID, State: model.StateReady},
			Seats: []*model.Seat{{ID: st.NewID(), TableID: "tt1", UserID: "a", Place: 1, Stack: money.New(1000), Status: model.SeatActive}},
		})
		return nil
	})
	if err != nil {
		t.Fatalf("tournament tx: %v", err)
	}
	tables, err := st.TournamentTables(ctx, tr.ID)
	if err != nil {
		t.Fatalf("tournament tables: %v", err)
	}
	if len(tables) != 1 || tables[0].Seats != 1 || tables[0].UserIDs[0] != "a" {
		t.Fatalf("unexpected summaries: %+v", tables)
	}

	entry := model.ReformEntry{TournamentID: tr.ID, TableID: "tt1", Seats: 1, QueuedAt: 1}
	if added, err := st.QueueReform(ctx, entry); err != nil || !added {
		t.Fatalf("first queue: %v %v", added, err)
	}
	if added, err := st.QueueReform(ctx, entry); err != nil || added {
		t.Fatalf("second queue: %v %v", added, err)
	}
	queued, err := st.ReformQueue(ctx, tr.ID)
	if err != nil {
		t.Fatalf("reform queue: %v", err)
	}
	if len(queued) != 1 || queued[0].TableID != "tt1" || queued[0].Seats != 1 {
		t.Fatalf("unexpected queue: %+v", queued)
	}
}
