// Package scheduler polls the engine for work that is due: hands whose
// timers ran out, tournaments to start, blinds to raise and prizes to pay.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine is the part of the game engine the scheduler drives.
type Engine interface {
	AdvanceTables(ctx context.Context) error
	StartDue(ctx context.Context) error
	RaiseBlinds(ctx context.Context) error
	ResolveFinished(ctx context.Context) error
	ScanReformation(ctx context.Context) error
}

type job struct {
	name string
	run  func(context.Context) error
	// every runs the job on one tick out of every.
	every int
}

type Scheduler struct {
	interval time.Duration
	jobs     []job
}

// New polls tables on every tick and tournaments on every tournamentEvery
// ticks.
func New(e Engine, interval time.Duration, tournamentEvery int) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	if tournamentEvery <= 0 {
		tournamentEvery = 1
	}
	return &Scheduler{
		interval: interval,
		jobs: []job{
			{name: "advance_tables", run: e.AdvanceTables, every: 1},
			{name: "start_tournaments", run: e.StartDue, every: tournamentEvery},
			{name: "raise_blinds", run: e.RaiseBlinds, every: tournamentEvery},
			{name: "resolve_prizes", run: e.ResolveFinished, every: tournamentEvery},
			{name: "scan_reformation", run: e.ScanReformation, every: tournamentEvery},
		},
	}
}

// Start runs the loop in the background until ctx is done. The returned
// channel is closed once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		var tick int
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick++
				s.Tick(ctx, tick)
			}
		}
	}()
	return done
}

// Tick runs the jobs due on tick n. A failing job is logged and the
// rest still run.
func (s *Scheduler) Tick(ctx context.Context, n int) {
	for _, j := range s.jobs {
		if n%j.every != 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := j.run(ctx); err != nil {
			metricJobErrors.Add(j.name, 1)
			log.Warn().Err(err).Str("job", j.name).Msg("scheduler job failed")
			continue
		}
		metricJobRuns.Add(j.name, 1)
		if d := time.Since(start); d > s.interval {
			log.Warn().Str("job", j.name).Dur("took", d).Msg("scheduler job slower than poll interval")
		}
	}
}
