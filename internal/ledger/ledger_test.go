package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func m(s string) money.Money { return money.MustParse(s) }

func books(balances map[string]string) *model.Books {
	b := model.NewBooks(&model.Account{ID: model.HouseAccount})
	for id, bal := range balances {
		b.Accounts[id] = &model.Account{ID: id, Balance: m(bal)}
	}
	return b
}

func cashTable(b *model.Books, seats ...*model.Seat) *model.TableAggregate {
	agg := &model.TableAggregate{
		Table: &model.Table{ID: "t1", Setting: model.TableSetting{Type: model.TableCash}.WithDefaults()},
		Books: b,
	}
	for _, s := range seats {
		s.TableID = "t1"
		agg.AddSeat(s)
	}
	return agg
}

func tournament(entry string) *model.Tournament {
	return &model.Tournament{
		ID:     "tour1",
		Status: model.TournamentPending,
		Setting: model.TournamentSetting{
			EntrySum: m(entry),
			Rake:     decimal.RequireFromString("0.05"),
			RakeCap:  m("3"),
		},
	}
}

func TestDebitInsufficientBalanceLeavesBooksUntouched(t *testing.T) {
	b := books(map[string]string{"u1": "10.00"})
	err := Debit(b, "u1", m("10.01"), TypeCashBuyIn, RefTable, "t1")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if !b.Accounts["u1"].Balance.Equal(m("10")) || len(b.Entries) != 0 {
		t.Fatalf("books changed on failure: %+v", b)
	}
	if err := Debit(b, "u1", m("10.00"), TypeCashBuyIn, RefTable, "t1"); err != nil {
		t.Fatalf("exact balance must be enough: %v", err)
	}
	if !b.Accounts["u1"].Balance.IsZero() || !b.Entries[0].Amount.Equal(m("-10")) {
		t.Fatalf("unexpected books %+v", b.Entries)
	}
}

func TestDebitUnknownAccount(t *testing.T) {
	if err := Credit(books(nil), "ghost", m("1"), TypeCashReturn, RefTable, "t1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestBuyInCash(t *testing.T) {
	b := books(map[string]string{"u1": "50"})
	seat := &model.Seat{UserID: "u1", TableID: "t1"}
	if err := BuyInCash(b, seat, m("60")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := BuyInCash(b, seat, m("40")); err != nil {
		t.Fatalf("buy in: %v", err)
	}
	if !seat.Stack.Equal(m("40")) || !b.Accounts["u1"].Balance.Equal(m("10")) {
		t.Fatalf("unexpected stack %s balance %s", seat.Stack, b.Accounts["u1"].Balance)
	}
}

func TestApproveCashInvoicesChecksBalanceAtApproval(t *testing.T) {
	b := books(map[string]string{"u1": "100"})
	seat := &model.Seat{UserID: "u1", Place: 1, Stack: m("5"), Status: model.SeatLose}
	agg := cashTable(b, seat)
	first, err := CreateInvoice(agg, seat, "i1", m("60"), 1)
	if err != nil {
		t.Fatalf("first invoice: %v", err)
	}
	if _, err := CreateInvoice(agg, seat, "i2", m("50"), 2); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("pending invoices must count against balance, got %v", err)
	}
	second, err := CreateInvoice(agg, seat, "i2", m("40"), 2)
	if err != nil {
		t.Fatalf("second invoice: %v", err)
	}

	// The balance drops before the hand finishes.
	b.Accounts["u1"].Balance = m("70")
	if err := ApproveCashInvoices(agg, seat); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if first.Status != model.InvoiceCompleted || second.Status != model.InvoiceFailed {
		t.Fatalf("unexpected statuses %s %s", first.Status, second.Status)
	}
	if !seat.Stack.Equal(m("65")) || !b.Accounts["u1"].Balance.Equal(m("10")) {
		t.Fatalf("unexpected stack %s balance %s", seat.Stack, b.Accounts["u1"].Balance)
	}
	if seat.Status != model.SeatActive {
		t.Fatalf("seat should be active, got %s", seat.Status)
	}
}

func TestFailedInvoicesDoNotReviveBrokeSeat(t *testing.T) {
	b := books(map[string]string{"u1": "500", "u2": "500"})
	broke := &model.Seat{UserID: "u1", Place: 1, Stack: money.Zero, Status: model.SeatActive}
	short := &model.Seat{UserID: "u2", Place: 2, Stack: m("3"), Status: model.SeatWaitingBB}
	agg := cashTable(b, broke, short)
	i1, err := CreateInvoice(agg, broke, "i1", m("200"), 1)
	if err != nil {
		t.Fatalf("invoice u1: %v", err)
	}
	i2, err := CreateInvoice(agg, short, "i2", m("200"), 1)
	if err != nil {
		t.Fatalf("invoice u2: %v", err)
	}

	b.Accounts["u1"].Balance = m("10")
	b.Accounts["u2"].Balance = m("10")
	for _, s := range []*model.Seat{broke, short} {
		if err := ApproveCashInvoices(agg, s); err != nil {
			t.Fatalf("approve %s: %v", s.UserID, err)
		}
	}
	if i1.Status != model.InvoiceFailed || i2.Status != model.InvoiceFailed {
		t.Fatalf("unexpected statuses %s %s", i1.Status, i2.Status)
	}
	if broke.Status != model.SeatLose {
		t.Fatalf("broke seat must lose, got %s", broke.Status)
	}
	if short.Status != model.SeatWaitingBB {
		t.Fatalf("seat with chips keeps its status, got %s", short.Status)
	}
}

func TestFailedTournamentRebuyKeepsStatus(t *testing.T) {
	b := books(map[string]string{"u1": "5"})
	seat := &model.Seat{UserID: "u1", Place: 1, Stack: money.Zero, Status: model.SeatActive}
	agg := cashTable(b, seat)
	agg.Tournament = tournament("20")
	agg.Invoices = append(agg.Invoices, &model.Invoice{ID: "i1", UserID: "u1", TableID: "t1", Sum: m("1500"), Status: model.InvoicePending})
	if err := ApproveTournamentInvoices(agg, seat); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if agg.Invoices[0].Status != model.InvoiceFailed {
		t.Fatalf("expected failed invoice, got %s", agg.Invoices[0].Status)
	}
	if seat.Status != model.SeatActive || !seat.Stack.IsZero() {
		t.Fatalf("unexpected seat %s %s", seat.Status, seat.Stack)
	}
}

func TestApproveWithoutInvoicesKeepsStatus(t *testing.T) {
	seat := &model.Seat{UserID: "u1", Place: 1, Status: model.SeatWaitingBB}
	agg := cashTable(books(map[string]string{"u1": "1"}), seat)
	if err := ApproveCashInvoices(agg, seat); err != nil {
		t.Fatal(err)
	}
	if seat.Status != model.SeatWaitingBB {
		t.Fatalf("status changed to %s", seat.Status)
	}
}

func TestReturnRemainings(t *testing.T) {
	b := books(map[string]string{"u1": "0"})
	seat := &model.Seat{UserID: "u1", Place: 3, Stack: m("12.34")}
	agg := cashTable(b, seat, &model.Seat{UserID: "u2", Place: 5})
	agg.Invoices = append(agg.Invoices, &model.Invoice{ID: "i1", UserID: "u1", Sum: m("5"), Status: model.InvoicePending})
	if err := ReturnRemainings(agg, seat); err != nil {
		t.Fatal(err)
	}
	if !b.Accounts["u1"].Balance.Equal(m("12.34")) || !seat.Stack.IsZero() {
		t.Fatalf("stack not returned: %s", b.Accounts["u1"].Balance)
	}
	if agg.Invoices[0].Status != model.InvoiceBack {
		t.Fatalf("pending invoice should go back, got %s", agg.Invoices[0].Status)
	}
	if agg.SeatAt(3) != nil || len(agg.Removed) != 1 {
		t.Fatal("seat should be removed")
	}
}

func TestTournamentBuyInAndRefundAreSymmetric(t *testing.T) {
	b := books(map[string]string{"u1": "100"})
	tour := tournament("10.10")
	if err := BuyInTournament(b, tour, "u1"); err != nil {
		t.Fatal(err)
	}
	// 10.10 * 0.05 = 0.505, half-up to 0.51
	if !tour.Balance.Equal(m("9.59")) || !b.Accounts[model.HouseAccount].Balance.Equal(m("0.51")) {
		t.Fatalf("unexpected pool %s house %s", tour.Balance, b.Accounts[model.HouseAccount].Balance)
	}
	if !b.Accounts["u1"].Balance.Equal(m("89.90")) {
		t.Fatalf("unexpected balance %s", b.Accounts["u1"].Balance)
	}
	if err := RefundTournament(b, tour, "u1"); err != nil {
		t.Fatal(err)
	}
	if !tour.Balance.IsZero() || !b.Accounts["u1"].Balance.Equal(m("100")) || !b.Accounts[model.HouseAccount].Balance.IsZero() {
		t.Fatalf("refund not symmetric: pool %s user %s", tour.Balance, b.Accounts["u1"].Balance)
	}
}

func TestTournamentRakeIsCapped(t *testing.T) {
	b := books(map[string]string{"u1": "1000"})
	tour := tournament("100")
	if err := BuyInTournament(b, tour, "u1"); err != nil {
		t.Fatal(err)
	}
	if !tour.Balance.Equal(m("97")) {
		t.Fatalf("expected rake capped at 3, pool %s", tour.Balance)
	}
}

func TestBuyInTournamentInsufficient(t *testing.T) {
	b := books(map[string]string{"u1": "9.99"})
	tour := tournament("10")
	if err := BuyInTournament(b, tour, "u1"); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if !tour.Balance.IsZero() || len(b.Entries) != 0 {
		t.Fatal("failed buy-in must not touch the pool")
	}
}

func TestPrizesAndPayout(t *testing.T) {
	shares := []decimal.Decimal{
		decimal.RequireFromString("0.5"),
		decimal.RequireFromString("0.3"),
		decimal.RequireFromString("0.2"),
	}
	prizes := Prizes("tour1", m("100.01"), shares)
	total := money.Zero
	for _, p := range prizes {
		total = total.Add(p.Sum)
	}
	if !total.Equal(m("100.01")) {
		t.Fatalf("prizes must use the whole pool, got %s", total)
	}
	if prizes[0].Rank != 1 || prizes[2].Rank != 3 {
		t.Fatalf("unexpected ranks %+v", prizes)
	}

	b := books(map[string]string{"u1": "0"})
	tour := tournament("10")
	tour.Balance = m("100.01")
	if err := PayPrize(b, tour, prizes[0], "u1"); err != nil {
		t.Fatal(err)
	}
	if err := PayPrize(b, tour, prizes[0], "u1"); err != nil {
		t.Fatal(err)
	}
	if !b.Accounts["u1"].Balance.Equal(prizes[0].Sum) {
		t.Fatalf("prize paid twice or not at all: %s", b.Accounts["u1"].Balance)
	}
}
