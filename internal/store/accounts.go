package store

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// lockBooks reads the accounts a transaction may move money on. User
// accounts are locked in id order so concurrent transactions cannot
// deadlock on them. The house account is read without a lock and written
// back as a delta.
func lockBooks(ctx context.Context, tx pgx.Tx, ids []string) (*model.Books, map[string]money.Money, error) {
	seen := map[string]bool{model.HouseAccount: true}
	users := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
	}
	sort.Strings(users)

	b := model.NewBooks()
	loaded := map[string]money.Money{}
	rows, err := tx.Query(ctx, `SELECT id, balance FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, users)
	if err != nil {
		return nil, nil, err
	}
	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, nil, err
	}
	var house model.Account
	err = tx.QueryRow(ctx, `SELECT id, balance FROM accounts WHERE id = $1`, model.HouseAccount).Scan(&house.ID, &house.Balance)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	for _, a := range append(accounts, &house) {
		b.Accounts[a.ID] = a
		loaded[a.ID] = a.Balance
	}
	return b, loaded, nil
}

func scanAccount(row pgx.CollectableRow) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Balance)
	return &a, err
}

// queueBooks writes balance deltas and appends the ledger entries.
func queueBooks(batch *pgx.Batch, b *model.Books, loaded map[string]money.Money) {
	ids := make([]string, 0, len(b.Accounts))
	for id := range b.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		delta := b.Accounts[id].Balance.Sub(loaded[id])
		if delta.IsZero() {
			continue
		}
		batch.Queue(`UPDATE accounts SET balance = balance + $2::numeric, updated_at = now() WHERE id = $1`, id, delta.String())
	}
	for _, e := range b.Entries {
		if e.ID == "" {
			e.ID = NewID()
		}
		batch.Queue(`INSERT INTO ledger_entries (id, account_id, type, amount, ref_type, ref_id) VALUES ($1,$2,$3,$4::numeric,$5,$6)`,
			e.ID, e.AccountID, e.Type, e.Amount.String(), e.RefType, e.RefID)
	}
}

// EnsureAccount creates a user account with an opening balance. An
// existing account is left as it is.
func (s *Store) EnsureAccount(ctx context.Context, id string, initial money.Money) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO accounts (id, balance) VALUES ($1,$2::numeric) ON CONFLICT (id) DO NOTHING`, id, initial.String())
	return err
}

func (s *Store) AccountBalance(ctx context.Context, id string) (money.Money, error) {
	var bal money.Money
	if err := s.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, id).Scan(&bal); err != nil {
		return money.Zero, mapNotFound(err)
	}
	return bal, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT id, account_id, type, amount, ref_type, ref_id FROM ledger_entries WHERE account_id = $1 ORDER BY id DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.LedgerEntry, error) {
		var e model.LedgerEntry
		err := row.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount, &e.RefType, &e.RefID)
		return e, err
	})
}
