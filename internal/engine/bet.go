package engine

import (
	"context"
	"sort"

	"poker-platform/internal/events"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// Action is a player's betting decision. Amount is the total bet for the
// round and is only read for bet, raise and all-in.
type Action struct {
	UserID  string
	BetType model.BetType
	Amount  money.Money
}

type betHandler struct {
	applicable func(model.BetType) bool
	priority   int
	invoke     func(t *tx, s *model.Seat, amount money.Money) error
}

func is(types ...model.BetType) func(model.BetType) bool {
	return func(bt model.BetType) bool {
		for _, x := range types {
			if x == bt {
				return true
			}
		}
		return false
	}
}

var betHandlers = func() []betHandler {
	hs := []betHandler{
		{applicable: is(model.BetBet, model.BetRaise, model.BetAllIn), priority: 40, invoke: (*tx).raise},
		{applicable: is(model.BetCall), priority: 30, invoke: (*tx).call},
		{applicable: is(model.BetCheck), priority: 20, invoke: (*tx).check},
		{applicable: is(model.BetFold), priority: 10, invoke: (*tx).fold},
	}
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].priority > hs[j].priority })
	return hs
}()

func handlerFor(bt model.BetType) *betHandler {
	for i := range betHandlers {
		if betHandlers[i].applicable(bt) {
			return &betHandlers[i]
		}
	}
	return nil
}

// Bet applies a player action at the table. Validation failures are coded
// and leave the table untouched.
func (e *Engine) Bet(ctx context.Context, tableID string, a Action) error {
	_, err := e.withTable(ctx, tableID, func(t *tx) error {
		s := t.agg.SeatOf(a.UserID)
		if s == nil {
			return coded(ErrPlayerNotFound)
		}
		if err := t.validateTurn(s); err != nil {
			return err
		}
		h := handlerFor(a.BetType)
		if h == nil {
			return coded(ErrUnknownAction)
		}
		amount := a.Amount
		if a.BetType == model.BetAllIn {
			amount = s.Stack.Add(s.Bet)
		}
		if err := h.invoke(t, s, amount); err != nil {
			return err
		}
		s.SeatOut = 0
		s.AfkTimeouts = 0
		t.afterAction(s, false)
		return nil
	}, a.UserID)
	if err == nil {
		metricActionsTotal.Add(1)
	}
	return err
}

// raise handles bet, raise and all-in. The floor is the highest other bet
// and never less than the big blind; the resulting bet type is resolved
// against it, so an opening bet above the big blind is a raise.
func (t *tx) raise(s *model.Seat, amount money.Money) error {
	_, bb := t.agg.Blinds()
	floor := money.Max(t.agg.MaxBet(s.Place), bb)
	total := s.Stack.Add(s.Bet)

	if amount.GreaterThan(total) {
		return coded(ErrBetTooBig)
	}
	if amount.LessThan(floor) {
		// A short stack may only go all-in below the floor.
		if !total.LessThan(floor) || amount.LessThan(total) {
			return coded(ErrBetTooSmall)
		}
	}

	s.Stack = total.Sub(amount)
	s.Bet = amount
	switch {
	case !s.Stack.IsPositive():
		s.BetType = model.BetAllIn
	case amount.GreaterThan(floor):
		s.BetType = model.BetRaise
	case amount.Equal(floor):
		s.BetType = model.BetCall
	default:
		s.BetType = model.BetBet
	}
	t.updateLastWordPlace()
	return nil
}

// call matches the highest bet, going all-in when the stack is short.
// With nothing to call it is a check.
func (t *tx) call(s *model.Seat, _ money.Money) error {
	maxBet := t.agg.MaxBet(s.Place)
	if !maxBet.GreaterThan(s.Bet) {
		s.BetType = model.BetCheck
		return nil
	}
	need := maxBet.Sub(s.Bet)
	if !need.LessThan(s.Stack) {
		s.Bet = s.Bet.Add(s.Stack)
		s.Stack = money.Zero
		s.BetType = model.BetAllIn
		return nil
	}
	s.Stack = s.Stack.Sub(need)
	s.Bet = maxBet
	s.BetType = model.BetCall
	return nil
}

func (t *tx) check(s *model.Seat, _ money.Money) error {
	maxBet := t.agg.MaxBet(s.Place)
	if !maxBet.IsZero() && s.Bet.LessThan(maxBet) {
		return coded(ErrCheckNotAllowed)
	}
	s.BetType = model.BetCheck
	return nil
}

func (t *tx) fold(s *model.Seat, _ money.Money) error {
	s.BetType = model.BetFold
	return nil
}

// autoAct plays for a seat whose timer ran out: fold when it owes chips,
// check otherwise. Repeated timeouts mark the seat as away.
func (t *tx) autoAct(s *model.Seat) {
	if t.agg.MaxBet(s.Place).GreaterThan(s.Bet) {
		_ = t.fold(s, money.Zero)
	} else {
		_ = t.check(s, money.Zero)
	}
	s.AfkTimeouts++
	if s.AfkTimeouts >= t.e.opts.AfkMarkAfter && s.SeatOut == 0 {
		s.SeatOut = t.now
	}
	metricAutoActionsTotal.Add(1)
	t.log.Info().Int("place", s.Place).Str("bet_type", string(s.BetType)).Int("afk_timeouts", s.AfkTimeouts).Msg("auto action")
	t.afterAction(s, true)
}

// afterAction publishes the action and moves the hand on: fast finish,
// next round or next seat.
func (t *tx) afterAction(s *model.Seat, auto bool) {
	tbl := t.agg.Table
	t.timeBankAfterTurn(s)
	t.emit(events.PlayerAction, events.Action{
		Round:   string(tbl.Round),
		Place:   s.Place,
		UserID:  s.UserID,
		BetType: string(s.BetType),
		Amount:  s.Bet.String(),
		Auto:    auto,
	})
	switch {
	case t.checkFastFinish():
	case t.roundClosed():
		t.nextRound()
	default:
		t.changeTurnPlace()
	}
}
