package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"poker-platform/internal/model"
)

// AdvanceTables polls every table with a hand to move on. A failing table
// is logged and skipped.
func (e *Engine) AdvanceTables(ctx context.Context) error {
	ids, err := e.repo.ActiveTableIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.Advance(ctx, id); err != nil {
			metricJobFailuresTotal.Add(1)
			log.Error().Err(err).Str("table_id", id).Msg("advance table")
		}
	}
	return nil
}

// StartDue starts or cancels the pending tournaments whose time has come.
func (e *Engine) StartDue(ctx context.Context) error {
	return e.eachTournament(ctx, "start tournament", e.StartTournament, model.TournamentPending)
}

// RaiseBlinds runs the blind schedule of every running tournament.
func (e *Engine) RaiseBlinds(ctx context.Context) error {
	return e.eachTournament(ctx, "raise blinds", e.UpdateBlinds, model.TournamentStarted, model.TournamentBreak)
}

// ResolveFinished pays out tournaments that are down to one player.
func (e *Engine) ResolveFinished(ctx context.Context) error {
	return e.eachTournament(ctx, "resolve prizes", e.ResolvePrizes, model.TournamentStarted, model.TournamentBreak, model.TournamentSync)
}

func (e *Engine) eachTournament(ctx context.Context, job string, fn func(context.Context, string) error, statuses ...model.TournamentStatus) error {
	ids, err := e.repo.TournamentIDs(ctx, statuses...)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(ctx, id); err != nil {
			metricJobFailuresTotal.Add(1)
			log.Error().Err(err).Str("tournament_id", id).Msg(job)
		}
	}
	return nil
}
