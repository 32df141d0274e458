package ledger

import (
	"fmt"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// Entry types.
const (
	TypeCashBuyIn        = "cash_buy_in"
	TypeCashReturn       = "cash_return"
	TypeInvoiceApprove   = "invoice_approve"
	TypeTournamentBuyIn  = "tournament_buy_in"
	TypeTournamentRefund = "tournament_refund"
	TypeTournamentRake   = "tournament_rake"
	TypeTournamentPrize  = "tournament_prize"
	TypePotRake          = "pot_rake"
)

// Ref types.
const (
	RefTable      = "table"
	RefTournament = "tournament"
	RefInvoice    = "invoice"
	RefHand       = "hand"
)

func account(b *model.Books, id string) (*model.Account, error) {
	a, ok := b.Accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return a, nil
}

// Balance returns the in-transaction balance of an account.
func Balance(b *model.Books, id string) (money.Money, error) {
	a, err := account(b, id)
	if err != nil {
		return money.Zero, err
	}
	return a.Balance, nil
}

func Debit(b *model.Books, id string, amount money.Money, entryType, refType, refID string) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	a, err := account(b, id)
	if err != nil {
		return err
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.Balance = a.Balance.Sub(amount)
	b.Entries = append(b.Entries, model.LedgerEntry{
		AccountID: id,
		Type:      entryType,
		Amount:    amount.Neg(),
		RefType:   refType,
		RefID:     refID,
	})
	return nil
}

func Credit(b *model.Books, id string, amount money.Money, entryType, refType, refID string) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	a, err := account(b, id)
	if err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	b.Entries = append(b.Entries, model.LedgerEntry{
		AccountID: id,
		Type:      entryType,
		Amount:    amount,
		RefType:   refType,
		RefID:     refID,
	})
	return nil
}
