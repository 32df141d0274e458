package ledger

import (
	"github.com/shopspring/decimal"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// BuyInCash moves chips from the user balance onto the seat stack.
func BuyInCash(b *model.Books, seat *model.Seat, chips money.Money) error {
	if !chips.IsPositive() {
		return ErrInvalidAmount
	}
	if err := Debit(b, seat.UserID, chips, TypeCashBuyIn, RefTable, seat.TableID); err != nil {
		return err
	}
	seat.Stack = seat.Stack.Add(chips)
	return nil
}

// ReturnRemainings pays a leaving cash seat its stack back, sends pending
// invoices back and removes the seat. Tournament seats keep their chips.
func ReturnRemainings(agg *model.TableAggregate, seat *model.Seat) error {
	if agg.Tournament != nil {
		return nil
	}
	if seat.Stack.IsPositive() {
		if err := Credit(agg.Books, seat.UserID, seat.Stack, TypeCashReturn, RefTable, seat.TableID); err != nil {
			return err
		}
	}
	seat.Stack = money.Zero
	for _, inv := range agg.PendingInvoices(seat.UserID) {
		inv.Status = model.InvoiceBack
	}
	agg.RemoveSeat(seat.Place)
	return nil
}

// ApproveCashInvoices settles the pending invoices of a seat. Affordability
// is checked now, not when the invoice was created. A chipless seat whose
// invoices all failed loses its place in the game.
func ApproveCashInvoices(agg *model.TableAggregate, seat *model.Seat) error {
	invoices := agg.PendingInvoices(seat.UserID)
	if len(invoices) == 0 {
		return nil
	}
	approved := false
	for _, inv := range invoices {
		bal, err := Balance(agg.Books, seat.UserID)
		if err != nil {
			return err
		}
		if bal.LessThan(inv.Sum) {
			inv.Status = model.InvoiceFailed
			continue
		}
		if err := Debit(agg.Books, seat.UserID, inv.Sum, TypeInvoiceApprove, RefInvoice, inv.ID); err != nil {
			return err
		}
		seat.Stack = seat.Stack.Add(inv.Sum)
		seat.CountBuyIn++
		inv.Status = model.InvoiceCompleted
		approved = true
	}
	switch {
	case approved:
		seat.Status = model.SeatActive
	case seat.Stack.IsZero():
		seat.Status = model.SeatLose
	}
	return nil
}

// ApproveTournamentInvoices charges the tournament entry for every pending
// rebuy and credits the invoice chips. The status is left alone when nothing
// was approved, so a broke seat is still eliminated.
func ApproveTournamentInvoices(agg *model.TableAggregate, seat *model.Seat) error {
	invoices := agg.PendingInvoices(seat.UserID)
	if len(invoices) == 0 {
		return nil
	}
	approved := false
	t := agg.Tournament
	for _, inv := range invoices {
		bal, err := Balance(agg.Books, seat.UserID)
		if err != nil {
			return err
		}
		if bal.LessThan(t.Setting.EntrySum) {
			inv.Status = model.InvoiceFailed
			continue
		}
		if err := chargeEntry(agg.Books, t, seat.UserID); err != nil {
			return err
		}
		seat.Stack = seat.Stack.Add(inv.Sum)
		seat.CountBuyIn++
		inv.Status = model.InvoiceCompleted
		approved = true
	}
	if approved {
		seat.Status = model.SeatActive
	}
	return nil
}

// CreateInvoice queues a rebuy. The user must cover every pending invoice
// plus the new one.
func CreateInvoice(agg *model.TableAggregate, seat *model.Seat, id string, amount money.Money, now int64) (*model.Invoice, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	pending := money.Zero
	for _, inv := range agg.PendingInvoices(seat.UserID) {
		pending = pending.Add(inv.Sum)
	}
	bal, err := Balance(agg.Books, seat.UserID)
	if err != nil {
		return nil, err
	}
	if bal.LessThan(pending.Add(amount)) {
		return nil, ErrInsufficientBalance
	}
	inv := &model.Invoice{
		ID:        id,
		TableID:   seat.TableID,
		UserID:    seat.UserID,
		Sum:       amount,
		Status:    model.InvoicePending,
		CreatedAt: now,
	}
	agg.Invoices = append(agg.Invoices, inv)
	return inv, nil
}

// EntryRake is the house share of one tournament entry.
func EntryRake(t *model.Tournament) money.Money {
	return money.Rake(t.Setting.EntrySum, t.Setting.Rake, t.Setting.RakeCap)
}

func chargeEntry(b *model.Books, t *model.Tournament, userID string) error {
	entry := t.Setting.EntrySum
	if err := Debit(b, userID, entry, TypeTournamentBuyIn, RefTournament, t.ID); err != nil {
		return err
	}
	rake := EntryRake(t)
	if rake.IsPositive() {
		if err := Credit(b, model.HouseAccount, rake, TypeTournamentRake, RefTournament, t.ID); err != nil {
			return err
		}
	}
	t.Balance = t.Balance.Add(entry.Sub(rake))
	return nil
}

// BuyInTournament charges the entry fee. The pool grows by the entry less
// rake.
func BuyInTournament(b *model.Books, t *model.Tournament, userID string) error {
	return chargeEntry(b, t, userID)
}

// RefundTournament reverses BuyInTournament.
func RefundTournament(b *model.Books, t *model.Tournament, userID string) error {
	entry := t.Setting.EntrySum
	rake := EntryRake(t)
	net := entry.Sub(rake)
	if t.Balance.LessThan(net) {
		return ErrInsufficientBalance
	}
	if rake.IsPositive() {
		if err := Debit(b, model.HouseAccount, rake, TypeTournamentRake, RefTournament, t.ID); err != nil {
			return err
		}
	}
	if err := Credit(b, userID, entry, TypeTournamentRefund, RefTournament, t.ID); err != nil {
		return err
	}
	t.Balance = t.Balance.Sub(net)
	return nil
}

// PayPrize moves a prize from the tournament pool to the winner.
func PayPrize(b *model.Books, t *model.Tournament, prize *model.Prize, userID string) error {
	if prize.WinnerID != "" {
		return nil
	}
	sum := money.Min(prize.Sum, t.Balance)
	if sum.IsPositive() {
		if err := Credit(b, userID, sum, TypeTournamentPrize, RefTournament, t.ID); err != nil {
			return err
		}
	}
	t.Balance = t.Balance.Sub(sum)
	prize.WinnerID = userID
	return nil
}

// TakePotRake credits the pot rake of one hand to the house.
func TakePotRake(b *model.Books, session string, rake money.Money) error {
	if !rake.IsPositive() {
		return nil
	}
	return Credit(b, model.HouseAccount, rake, TypePotRake, RefHand, session)
}

// Prizes splits a pool by rank shares. Whatever the shares leave over,
// rounding included, goes to first place.
func Prizes(tournamentID string, pool money.Money, shares []decimal.Decimal) []*model.Prize {
	if len(shares) == 0 {
		shares = []decimal.Decimal{decimal.NewFromInt(1)}
	}
	out := make([]*model.Prize, 0, len(shares))
	paid := money.Zero
	for i, share := range shares {
		sum := pool.MulRate(share)
		out = append(out, &model.Prize{TournamentID: tournamentID, Rank: i + 1, Sum: sum})
		paid = paid.Add(sum)
	}
	out[0].Sum = out[0].Sum.Add(pool.Sub(paid))
	return out
}
