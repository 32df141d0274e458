package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"poker-platform/internal/model"
)

func (s *Store) ActiveTableIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id FROM poker_tables WHERE NOT archived ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) TournamentIDs(ctx context.Context, statuses ...model.TournamentStatus) ([]string, error) {
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
	}
	rows, err := s.Pool.Query(ctx, `SELECT id FROM tournaments WHERE status = ANY($1) ORDER BY id`, names)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) TournamentTables(ctx context.Context, tournamentID string) ([]model.TableSummary, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT t.id, t.archived, count(s.id), COALESCE(array_agg(s.user_id ORDER BY s.place) FILTER (WHERE s.id IS NOT NULL), '{}')
		FROM poker_tables t LEFT JOIN seats s ON s.table_id = t.id
		WHERE t.tournament_id = $1
		GROUP BY t.id, t.archived
		ORDER BY t.id`, tournamentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TableSummary, error) {
		ts := model.TableSummary{TournamentID: tournamentID}
		var seats int64
		err := row.Scan(&ts.ID, &ts.Archived, &seats, &ts.UserIDs)
		ts.Seats = int(seats)
		return ts, err
	})
}

func (s *Store) SeatedTable(ctx context.Context, settingID, userID string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `
		SELECT t.id FROM poker_tables t JOIN seats s ON s.table_id = t.id
		WHERE t.setting_id = $1 AND t.tournament_id IS NULL AND s.user_id = $2
		ORDER BY t.id LIMIT 1`, settingID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// OpenTable picks the first cash table of the setting with a free place and
// opens a new one when every table is full.
func (s *Store) OpenTable(ctx context.Context, settingID string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `
		SELECT t.id FROM poker_tables t
		WHERE t.setting_id = $1 AND t.tournament_id IS NULL AND NOT t.archived
		  AND (SELECT count(*) FROM seats s WHERE s.table_id = t.id) < (t.setting->>'seats')::int
		ORDER BY t.id LIMIT 1`, settingID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	setting, err := s.Setting(ctx, settingID)
	if err != nil {
		return "", err
	}
	t := &model.Table{ID: NewID(), Setting: setting, State: model.StateReady}
	batch := &pgx.Batch{}
	queueNewTable(batch, &model.TableAggregate{Table: t})
	if err := s.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (s *Store) QueueReform(ctx context.Context, entry model.ReformEntry) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `INSERT INTO reform_queue (table_id, tournament_id, seats, queued_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (table_id) DO NOTHING`, entry.TableID, entry.TournamentID, entry.Seats, entry.QueuedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReformQueue lists queued tables oldest first.
func (s *Store) ReformQueue(ctx context.Context, tournamentID string) ([]model.ReformEntry, error) {
	rows, err := s.Pool.Query(ctx, `SELECT tournament_id, table_id, seats, queued_at FROM reform_queue
		WHERE tournament_id = $1 ORDER BY queued_at, table_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ReformEntry])
}

// TableIDs lists every table, archived ones included, for admin views.
func (s *Store) TableIDs(ctx context.Context, settingID string) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id FROM poker_tables WHERE setting_id = $1 OR $1 = '' ORDER BY id`, settingID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

