package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"poker-platform/internal/model"
)

// Transition names.
const (
	PrepareTable = "prepare_table"
	StartGame    = "start_game"
	RunRound     = "run_round"
	DetectWinner = "detect_winner"
)

// Transition is one edge of the hand workflow. Guard and Enter return a
// *GuardError when the table is not ready yet; Action performs the change.
type Transition struct {
	Name   string
	From   []model.State
	To     model.State
	Guard  func(*tx) error
	Action func(*tx) error
	Enter  func(*tx) error
	// KeepOnBlock commits the Action even when Enter blocks. The state
	// does not move and the guard error is still returned.
	KeepOnBlock bool
}

var transitions = map[string]Transition{
	PrepareTable: {
		Name:   PrepareTable,
		From:   []model.State{model.StateReady, model.StateFinished},
		To:     model.StatePrepared,
		Guard:  (*tx).guardPrepare,
		Action: (*tx).prepareTable,
		Enter:  (*tx).enterPrepared,
	},
	StartGame: {
		Name:   StartGame,
		From:   []model.State{model.StatePrepared},
		To:     model.StateInProgress,
		Action: (*tx).startGame,
		Enter:  (*tx).enterInProgress,
	},
	RunRound: {
		Name:        RunRound,
		From:        []model.State{model.StateInProgress},
		To:          model.StateShowdown,
		Action:      (*tx).runRound,
		Enter:       (*tx).enterShowdown,
		KeepOnBlock: true,
	},
	DetectWinner: {
		Name:   DetectWinner,
		From:   []model.State{model.StateShowdown},
		To:     model.StateFinished,
		Action: (*tx).finishGame,
		Enter:  (*tx).enterFinished,
	},
}

// next is the transition tried from each state by Advance.
var next = map[model.State]string{
	model.StateReady:      PrepareTable,
	model.StatePrepared:   StartGame,
	model.StateInProgress: RunRound,
	model.StateShowdown:   DetectWinner,
	model.StateFinished:   PrepareTable,
}

const maxAdvanceSteps = 5

func (tr Transition) allowed(s model.State) bool {
	for _, f := range tr.From {
		if f == s {
			return true
		}
	}
	return false
}

func (t *tx) fire(tr Transition) error {
	tbl := t.agg.Table
	if tbl.Archived {
		return blocked(tr.Name, "table archived")
	}
	if !tr.allowed(tbl.State) {
		return blocked(tr.Name, "state is %s", tbl.State)
	}
	if tr.Guard != nil {
		if err := tr.Guard(t); err != nil {
			return err
		}
	}
	if err := tr.Action(t); err != nil {
		return fmt.Errorf("%s: %w", tr.Name, err)
	}
	if tr.Enter != nil {
		if err := tr.Enter(t); err != nil {
			if tr.KeepOnBlock && IsGuard(err) {
				t.blocked = err
				return nil
			}
			return err
		}
	}
	t.log.Debug().Str("transition", tr.Name).Str("from", string(tbl.State)).Str("to", string(tr.To)).Msg("transition")
	tbl.State = tr.To
	t.dirty = true
	metricTransitions.Add(tr.Name, 1)
	return nil
}

// Fire runs one named transition. A transition whose precondition does not
// hold returns a *GuardError and changes nothing, so repeated calls are safe.
func (e *Engine) Fire(ctx context.Context, tableID, name string) error {
	tr, ok := transitions[name]
	if !ok {
		return fmt.Errorf("unknown transition %q", name)
	}
	t, err := e.withTable(ctx, tableID, func(t *tx) error { return t.fire(tr) })
	if err == nil && t.blocked != nil {
		err = t.blocked
	}
	if IsGuard(err) {
		metricGuardBlocksTotal.Add(1)
	}
	return err
}

// Advance fires the transitions due for the table until one blocks. Guard
// blocks are expected and not reported.
func (e *Engine) Advance(ctx context.Context, tableID string) error {
	for i := 0; i < maxAdvanceSteps; i++ {
		t, err := e.withTable(ctx, tableID, func(t *tx) error {
			return t.fire(transitions[next[t.agg.Table.State]])
		})
		if err == nil && t.blocked != nil {
			err = t.blocked
		}
		if IsGuard(err) {
			metricGuardBlocksTotal.Add(1)
			log.Debug().Str("table_id", tableID).Err(err).Msg("advance blocked")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) guardPrepare() error {
	if t.now < t.agg.Table.RoundExpirationTime {
		return blocked(PrepareTable, "next hand starts at %d", t.agg.Table.RoundExpirationTime)
	}
	return nil
}

func (t *tx) enterPrepared() error {
	tbl := t.agg.Table
	if n := len(t.agg.SeatsWith(model.SeatActive, model.SeatWaitingBB, model.SeatAutoBlind)); n < 2 {
		return blocked(PrepareTable, "%d players ready", n)
	}
	if tbl.TurnPlace != 0 || len(tbl.Cards) != 0 {
		return blocked(PrepareTable, "table not refreshed")
	}
	for _, s := range t.agg.Seats {
		if !s.Bet.IsZero() || len(s.Cards) != 0 {
			return blocked(PrepareTable, "players not refreshed")
		}
	}
	return nil
}

func (t *tx) enterInProgress() error {
	tbl := t.agg.Table
	if tbl.Session == "" {
		return blocked(StartGame, "session not set")
	}
	if tbl.TurnPlace == 0 && !t.roundClosed() {
		return blocked(StartGame, "turn not set")
	}
	active := t.agg.SeatsWith(model.SeatActive)
	if len(active) < 2 {
		return blocked(StartGame, "%d active players", len(active))
	}
	for _, s := range active {
		if len(s.Cards) == 0 {
			return blocked(StartGame, "cards not dealt to place %d", s.Place)
		}
	}
	return nil
}

func (t *tx) enterShowdown() error {
	if !t.agg.Table.Round.Final() {
		return blocked(RunRound, "round %s in play", t.agg.Table.Round)
	}
	return nil
}

func (t *tx) enterFinished() error {
	session := t.agg.Table.Session
	for _, b := range t.agg.Banks {
		if b.Session == session && b.Status == model.BankInProgress {
			return blocked(DetectWinner, "banks incomplete")
		}
	}
	for _, w := range t.agg.Winners {
		if w.Session == session {
			return nil
		}
	}
	return blocked(DetectWinner, "no winners")
}
