// Package store persists table and tournament aggregates in Postgres.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"poker-platform/internal/model"
)

var ErrNotFound = model.ErrNotFound

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Store) NewID() string { return NewID() }
