package engine

import (
	"context"

	"poker-platform/internal/model"
)

// Repository loads aggregates inside a transaction. fn works on a private
// copy that is written back only when fn returns nil. The house account
// and the accounts of seated players or tournament members are locked;
// users lists extra accounts to lock.
type Repository interface {
	InTableTx(ctx context.Context, tableID string, fn func(*model.TableAggregate) error, users ...string) error
	InTournamentTx(ctx context.Context, tournamentID string, fn func(*model.TournamentAggregate) error, users ...string) error
	LoadTable(ctx context.Context, tableID string) (*model.TableAggregate, error)

	ActiveTableIDs(ctx context.Context) ([]string, error)
	TournamentIDs(ctx context.Context, statuses ...model.TournamentStatus) ([]string, error)
	TournamentTables(ctx context.Context, tournamentID string) ([]model.TableSummary, error)

	// SeatedTable returns the table of setting where user already sits, or "".
	SeatedTable(ctx context.Context, settingID, userID string) (string, error)
	// OpenTable returns a cash table of setting with a free place, creating
	// one when all are full.
	OpenTable(ctx context.Context, settingID string) (string, error)
	// QueueReform adds a table to the reform queue once. It reports whether
	// the entry was new.
	QueueReform(ctx context.Context, entry model.ReformEntry) (bool, error)

	NewID() string
}

// Locker serializes work on one key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func tableKey(id string) string { return "table:" + id }

func tournamentKey(id string) string { return "tournament:" + id }
