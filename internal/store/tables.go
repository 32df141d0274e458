package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"poker-platform/internal/game"
	"poker-platform/internal/model"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const tableColumns = `id, setting, tournament_id, round, state, dealer_place, small_blind_place, big_blind_place,
	turn_place, last_word_place, session, cards, deck, round_expiration_time, rake_status, archived`

const seatColumns = `id, table_id, user_id, place, stack, bet, bet_sum, bet_type, status,
	bet_expiration_time, seat_out, afk_timeouts, cards, time_bank, leaver, count_buy_in`

func scanTable(row pgx.Row) (*model.Table, error) {
	var t model.Table
	var tournamentID pgtype.Text
	err := row.Scan(&t.ID, &t.Setting, &tournamentID, &t.Round, &t.State, &t.DealerPlace, &t.SmallBlindPlace, &t.BigBlindPlace,
		&t.TurnPlace, &t.LastWordPlace, &t.Session, &t.Cards, &t.Deck, &t.RoundExpirationTime, &t.RakeStatus, &t.Archived)
	if err != nil {
		return nil, mapNotFound(err)
	}
	t.TournamentID = textVal(tournamentID)
	return &t, nil
}

func scanSeat(row pgx.CollectableRow) (*model.Seat, error) {
	var s model.Seat
	err := row.Scan(&s.ID, &s.TableID, &s.UserID, &s.Place, &s.Stack, &s.Bet, &s.BetSum, &s.BetType, &s.Status,
		&s.BetExpirationTime, &s.SeatOut, &s.AfkTimeouts, &s.Cards, &s.TimeBank, &s.Leaver, &s.CountBuyIn)
	return &s, err
}

func loadTable(ctx context.Context, q querier, id string, lock bool) (*model.TableAggregate, error) {
	suffix := ""
	if lock {
		suffix = " FOR UPDATE"
	}
	t, err := scanTable(q.QueryRow(ctx, `SELECT `+tableColumns+` FROM poker_tables WHERE id = $1`+suffix, id))
	if err != nil {
		return nil, err
	}
	agg := &model.TableAggregate{Table: t}

	rows, err := q.Query(ctx, `SELECT `+seatColumns+` FROM seats WHERE table_id = $1 ORDER BY place`, id)
	if err != nil {
		return nil, err
	}
	if agg.Seats, err = pgx.CollectRows(rows, scanSeat); err != nil {
		return nil, fmt.Errorf("seats: %w", err)
	}

	if t.TournamentID != "" {
		if agg.Tournament, err = scanTournament(q.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`+suffix, t.TournamentID)); err != nil {
			return nil, err
		}
	}

	rows, err = q.Query(ctx, `SELECT id, table_id, user_id, sum, status, created_at FROM invoices WHERE table_id = $1 AND status = $2 ORDER BY created_at, id`,
		id, model.InvoicePending)
	if err != nil {
		return nil, err
	}
	agg.Invoices, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Invoice, error) {
		var inv model.Invoice
		err := row.Scan(&inv.ID, &inv.TableID, &inv.UserID, &inv.Sum, &inv.Status, &inv.CreatedAt)
		return &inv, err
	})
	if err != nil {
		return nil, fmt.Errorf("invoices: %w", err)
	}

	// Only the current hand's banks and winners are ever read back.
	if t.Session == "" {
		return agg, nil
	}
	rows, err = q.Query(ctx, `SELECT id, table_id, session, idx, sum, rake, eligible, status FROM banks WHERE table_id = $1 AND session = $2 ORDER BY idx`,
		id, t.Session)
	if err != nil {
		return nil, err
	}
	agg.Banks, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Bank, error) {
		var b model.Bank
		err := row.Scan(&b.ID, &b.TableID, &b.Session, &b.Index, &b.Sum, &b.Rake, &b.Eligible, &b.Status)
		return &b, err
	})
	if err != nil {
		return nil, fmt.Errorf("banks: %w", err)
	}
	rows, err = q.Query(ctx, `SELECT id, table_id, session, user_id, place, sum, combination FROM winners WHERE table_id = $1 AND session = $2 ORDER BY id`,
		id, t.Session)
	if err != nil {
		return nil, err
	}
	agg.Winners, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Winner, error) {
		var w model.Winner
		err := row.Scan(&w.ID, &w.TableID, &w.Session, &w.UserID, &w.Place, &w.Sum, &w.Combination)
		return &w, err
	})
	if err != nil {
		return nil, fmt.Errorf("winners: %w", err)
	}
	return agg, nil
}

// LoadTable reads a table without locking it.
func (s *Store) LoadTable(ctx context.Context, tableID string) (*model.TableAggregate, error) {
	return loadTable(ctx, s.Pool, tableID, false)
}

// InTableTx locks the table row, its tournament row and the accounts of
// every seated user plus users, runs fn and writes the aggregate back.
// Nothing is written when fn fails.
func (s *Store) InTableTx(ctx context.Context, tableID string, fn func(*model.TableAggregate) error, users ...string) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	agg, err := loadTable(ctx, tx, tableID, true)
	if err != nil {
		return err
	}
	ids := append([]string(nil), users...)
	for _, seat := range agg.Seats {
		ids = append(ids, seat.UserID)
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
	queueTable(batch, agg)
	if agg.Tournament != nil {
		queueTournament(batch, agg.Tournament)
		for userID, rank := range agg.Eliminated {
			batch.Queue(`UPDATE tournament_members SET rank = $3 WHERE tournament_id = $1 AND user_id = $2`, agg.Tournament.ID, userID, rank)
		}
	}
	queueBooks(batch, agg.Books, loaded)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write table %s: %w", tableID, err)
	}
	return tx.Commit(ctx)
}

func cardsParam(c []game.Card) []game.Card {
	if c == nil {
		return []game.Card{}
	}
	return c
}

func placesParam(p []int) []int {
	if p == nil {
		return []int{}
	}
	return p
}

func queueTable(batch *pgx.Batch, agg *model.TableAggregate) {
	t := agg.Table
	batch.Queue(`UPDATE poker_tables SET setting = $2, round = $3, state = $4, dealer_place = $5, small_blind_place = $6,
		big_blind_place = $7, turn_place = $8, last_word_place = $9, session = $10, cards = $11, deck = $12,
		round_expiration_time = $13, rake_status = $14, archived = $15, updated_at = now() WHERE id = $1`,
		t.ID, t.Setting, t.Round, t.State, t.DealerPlace, t.SmallBlindPlace,
		t.BigBlindPlace, t.TurnPlace, t.LastWordPlace, t.Session, cardsParam(t.Cards), cardsParam(t.Deck),
		t.RoundExpirationTime, t.RakeStatus, t.Archived)

	keep := make([]string, 0, len(agg.Seats))
	for _, s := range agg.Seats {
		keep = append(keep, s.ID)
	}
	batch.Queue(`DELETE FROM seats WHERE table_id = $1 AND NOT (id = ANY($2))`, t.ID, keep)
	for _, s := range agg.Seats {
		queueSeat(batch, s)
	}

	for _, inv := range agg.Invoices {
		batch.Queue(`INSERT INTO invoices (id, table_id, user_id, sum, status, created_at) VALUES ($1,$2,$3,$4::numeric,$5,$6)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`,
			inv.ID, inv.TableID, inv.UserID, inv.Sum.String(), inv.Status, inv.CreatedAt)
	}
	for _, b := range agg.Banks {
		batch.Queue(`INSERT INTO banks (id, table_id, session, idx, sum, rake, eligible, status) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7,$8)
			ON CONFLICT (id) DO UPDATE SET sum = EXCLUDED.sum, rake = EXCLUDED.rake, eligible = EXCLUDED.eligible, status = EXCLUDED.status`,
			b.ID, b.TableID, b.Session, b.Index, b.Sum.String(), b.Rake.String(), placesParam(b.Eligible), b.Status)
	}
	for _, w := range agg.Winners {
		batch.Queue(`INSERT INTO winners (id, table_id, session, user_id, place, sum, combination) VALUES ($1,$2,$3,$4,$5,$6::numeric,$7)
			ON CONFLICT (id) DO UPDATE SET sum = EXCLUDED.sum`,
			w.ID, w.TableID, w.Session, w.UserID, w.Place, w.Sum.String(), w.Combination)
	}
}

func queueSeat(batch *pgx.Batch, s *model.Seat) {
	batch.Queue(`INSERT INTO seats (`+seatColumns+`) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET stack = EXCLUDED.stack, bet = EXCLUDED.bet, bet_sum = EXCLUDED.bet_sum,
			bet_type = EXCLUDED.bet_type, status = EXCLUDED.status, bet_expiration_time = EXCLUDED.bet_expiration_time,
			seat_out = EXCLUDED.seat_out, afk_timeouts = EXCLUDED.afk_timeouts, cards = EXCLUDED.cards,
			time_bank = EXCLUDED.time_bank, leaver = EXCLUDED.leaver, count_buy_in = EXCLUDED.count_buy_in`,
		s.ID, s.TableID, s.UserID, s.Place, s.Stack.String(), s.Bet.String(), s.BetSum.String(), s.BetType, s.Status,
		s.BetExpirationTime, s.SeatOut, s.AfkTimeouts, cardsParam(s.Cards), s.TimeBank, s.Leaver, s.CountBuyIn)
}

// queueNewTable inserts a table created outside a table transaction,
// together with its seats.
func queueNewTable(batch *pgx.Batch, agg *model.TableAggregate) {
	t := agg.Table
	batch.Queue(`INSERT INTO poker_tables (`+tableColumns+`, setting_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		t.ID, t.Setting, textParam(t.TournamentID), t.Round, t.State, t.DealerPlace, t.SmallBlindPlace, t.BigBlindPlace,
		t.TurnPlace, t.LastWordPlace, t.Session, cardsParam(t.Cards), cardsParam(t.Deck), t.RoundExpirationTime, t.RakeStatus, t.Archived,
		t.Setting.ID)
	for _, s := range agg.Seats {
		queueSeat(batch, s)
	}
}
