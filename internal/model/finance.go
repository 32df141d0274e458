package model

import (
	"poker-platform/internal/game"
	"poker-platform/internal/money"
)

// HouseAccount collects rake.
const HouseAccount = "house"

type Account struct {
	ID      string      `json:"id"`
	Balance money.Money `json:"balance"`
}

// LedgerEntry is one signed balance movement.
type LedgerEntry struct {
	ID        string      `json:"id"`
	AccountID string      `json:"account_id"`
	Type      string      `json:"type"`
	Amount    money.Money `json:"amount"`
	RefType   string      `json:"ref_type"`
	RefID     string      `json:"ref_id"`
}

// Books holds the accounts locked by one transaction and the entries it
// appended. Nothing reaches storage unless the transaction commits.
type Books struct {
	Accounts map[string]*Account
	Entries  []LedgerEntry
}

func NewBooks(accounts ...*Account) *Books {
	b := &Books{Accounts: map[string]*Account{}}
	for _, a := range accounts {
		b.Accounts[a.ID] = a
	}
	return b
}

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoiceCompleted InvoiceStatus = "completed"
	InvoiceFailed    InvoiceStatus = "failed"
	InvoiceBack      InvoiceStatus = "back"
)

// Invoice is a queued transfer from a user balance onto a seat stack.
type Invoice struct {
	ID        string        `json:"id"`
	TableID   string        `json:"table_id"`
	UserID    string        `json:"user_id"`
	Sum       money.Money   `json:"sum"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt int64         `json:"created_at"`
}

type BankStatus string

const (
	BankInProgress BankStatus = "in_progress"
	BankCompleted  BankStatus = "completed"
)

// Bank is one pot of a hand.
type Bank struct {
	ID       string      `json:"id"`
	TableID  string      `json:"table_id"`
	Session  string      `json:"session"`
	Index    int         `json:"index"`
	Sum      money.Money `json:"sum"`
	Rake     money.Money `json:"rake"`
	Eligible []int       `json:"eligible"`
	Status   BankStatus  `json:"status"`
}

type Winner struct {
	ID          string            `json:"id"`
	TableID     string            `json:"table_id"`
	Session     string            `json:"session"`
	UserID      string            `json:"user_id"`
	Place       int               `json:"place"`
	Sum         money.Money       `json:"sum"`
	Combination *game.Combination `json:"combination,omitempty"`
}
