package ledger

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
)
