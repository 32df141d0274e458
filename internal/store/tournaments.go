package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"poker-platform/internal/model"
)

const tournamentColumns = `id, name, status, setting, balance, blind_level, last_blind_update, small_blind, big_blind,
	date_start_registration, date_end_registration, date_start`

func scanTournament(row pgx.Row) (*model.Tournament, error) {
	var t model.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.Setting, &t.Balance, &t.BlindLevel, &t.LastBlindUpdate, &t.SmallBlind, &t.BigBlind,
		&t.DateStartRegistration, &t.DateEndRegistration, &t.DateStart)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func queueTournament(batch *pgx.Batch, t *model.Tournament) {
	batch.Queue(`UPDATE tournaments SET name = $2, status = $3, setting = $4, balance = $5::numeric, blind_level = $6,
		last_blind_update = $7, small_blind = $8::numeric, big_blind = $9::numeric,
		date_start_registration = $10, date_end_registration = $11, date_start = $12 WHERE id = $1`,
		t.ID, t.Name, t.Status, t.Setting, t.Balance.String(), t.BlindLevel,
		t.LastBlindUpdate, t.SmallBlind.String(), t.BigBlind.String(),
		t.DateStartRegistration, t.DateEndRegistration, t.DateStart)
}

// CreateTournament inserts a pending tournament and its first members.
func (s *Store) CreateTournament(ctx context.Context, t *model.Tournament, members ...*model.Member) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO tournaments (`+tournamentColumns+`) VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8::numeric,$9::numeric,$10,$11,$12)`,
		t.ID, t.Name, t.Status, t.Setting, t.Balance.String(), t.BlindLevel, t.LastBlindUpdate, t.SmallBlind.String(), t.BigBlind.String(),
		t.DateStartRegistration, t.DateEndRegistration, t.DateStart)
	for _, m := range members {
		queueMember(batch, m)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create tournament %s: %w", t.ID, err)
	}
	return tx.Commit(ctx)
}

func queueMember(batch *pgx.Batch, m *model.Member) {
	batch.Queue(`INSERT INTO tournament_members (tournament_id, user_id, rank, registered_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (tournament_id, user_id) DO UPDATE SET rank = EXCLUDED.rank`,
		m.TournamentID, m.UserID, m.Rank, m.RegisteredAt)
}

func scanMember(row pgx.CollectableRow) (*model.Member, error) {
	var m model.Member
	err := row.Scan(&m.TournamentID, &m.UserID, &m.Rank, &m.RegisteredAt)
	return &m, err
}

func scanPrize(row pgx.CollectableRow) (*model.Prize, error) {
	var p model.Prize
	var winner pgtype.Text
	err := row.Scan(&p.TournamentID, &p.Rank, &p.Sum, &winner)
	p.WinnerID = textVal(winner)
	return &p, err
}

// InTournamentTx locks the tournament row and the accounts of its members
// plus users. Tables created by fn are inserted with their seats.
func (s *Store) InTournamentTx(ctx context.Context, tournamentID string, fn func(*model.TournamentAggregate) error, users ...string) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t, err := scanTournament(tx.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, tournamentID))
	if err != nil {
		return err
	}
	agg := &model.TournamentAggregate{Tournament: t}
	rows, err := tx.Query(ctx, `SELECT tournament_id, user_id, rank, registered_at FROM tournament_members
		WHERE tournament_id = $1 ORDER BY registered_at, user_id`, tournamentID)
	if err != nil {
		return err
	}
	if agg.Members, err = pgx.CollectRows(rows, scanMember); err != nil {
		return fmt.Errorf("members: %w", err)
	}
	rows, err = tx.Query(ctx, `SELECT tournament_id, rank, sum, winner_id FROM tournament_prizes WHERE tournament_id = $1 ORDER BY rank`, tournamentID)
	if err != nil {
		return err
	}
	if agg.Prizes, err = pgx.CollectRows(rows, scanPrize); err != nil {
		return fmt.Errorf("prizes: %w", err)
	}

	ids := append([]string(nil), users...)
	for _, m := range agg.Members {
		ids = append(ids, m.UserID)
	}
	books, loaded, err := lockBooks(ctx, tx, ids)
	if err != nil {
		return err
	}
	agg.Books = books

	if err := fn(agg); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueTournament(batch, agg.Tournament)
	keep := make([]string, 0, len(agg.Members))
	for _, m := range agg.Members {
		keep = append(keep, m.UserID)
	}
	batch.Queue(`DELETE FROM tournament_members WHERE tournament_id = $1 AND NOT (user_id = ANY($2))`, tournamentID, keep)
	for _, m := range agg.Members {
		queueMember(batch, m)
	}
	for _, p := range agg.Prizes {
		batch.Queue(`INSERT INTO tournament_prizes (tournament_id, rank, sum, winner_id) VALUES ($1,$2,$3::numeric,$4)
			ON CONFLICT (tournament_id, rank) DO UPDATE SET sum = EXCLUDED.sum, winner_id = EXCLUDED.winner_id`,
			p.TournamentID, p.Rank, p.Sum.String(), textParam(p.WinnerID))
	}
	for _, ta := range agg.NewTables {
		queueNewTable(batch, ta)
	}
	queueBooks(batch, agg.Books, loaded)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write tournament %s: %w", tournamentID, err)
	}
	return tx.Commit(ctx)
}
