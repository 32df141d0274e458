package store

import (
	"context"

	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func (s *Store) PutSetting(ctx context.Context, setting model.TableSetting) error {
	setting = setting.WithDefaults()
	_, err := s.Pool.Exec(ctx, `INSERT INTO table_settings (id, setting) VALUES ($1,$2)
		ON CONFLICT (id) DO UPDATE SET setting = EXCLUDED.setting`, setting.ID, setting)
	return err
}

func (s *Store) Setting(ctx context.Context, id string) (model.TableSetting, error) {
	var setting model.TableSetting
	if err := s.Pool.QueryRow(ctx, `SELECT setting FROM table_settings WHERE id = $1`, id).Scan(&setting); err != nil {
		return model.TableSetting{}, mapNotFound(err)
	}
	return setting, nil
}

func (s *Store) Settings(ctx context.Context) ([]model.TableSetting, error) {
	rows, err := s.Pool.Query(ctx, `SELECT setting FROM table_settings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TableSetting{}
	for rows.Next() {
		var setting model.TableSetting
		if err := rows.Scan(&setting); err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, rows.Err()
}

// DefaultSettings are the cash games opened on an empty database.
func DefaultSettings(turnTime int) []model.TableSetting {
	out := []model.TableSetting{
		{ID: "nl-1-2", Name: "NL 1/2", SmallBlind: money.New(1), BigBlind: money.New(2), BuyIn: money.New(100), Seats: 6},
		{ID: "nl-5-10", Name: "NL 5/10", SmallBlind: money.New(5), BigBlind: money.New(10), BuyIn: money.New(500), Seats: 6},
		{ID: "nl-25-50", Name: "NL 25/50", SmallBlind: money.New(25), BigBlind: money.New(50), BuyIn: money.New(2500), Seats: 9,
			TimeBank: model.TimeBankSetting{Time: 30, TimeLimit: 60, PeriodInHand: 20}},
	}
	for i := range out {
		out[i].TurnTime = turnTime
	}
	return out
}

func (s *Store) EnsureDefaultSettings(ctx context.Context, turnTime int) error {
	var c int
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM table_settings`).Scan(&c); err != nil {
		return err
	}
	if c > 0 {
		return nil
	}
	for _, setting := range DefaultSettings(turnTime) {
		if err := s.PutSetting(ctx, setting); err != nil {
			return err
		}
	}
	return nil
}
