package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"poker-platform/internal/events"
	"poker-platform/internal/game"
	"poker-platform/internal/ledger"
	"poker-platform/internal/model"
)

// prepareTable clears the previous hand and settles rebuys queued while
// the table was idle.
func (t *tx) prepareTable() error {
	tbl := t.agg.Table
	tbl.Round = ""
	tbl.Cards = nil
	tbl.Deck = nil
	tbl.TurnPlace = 0
	tbl.LastWordPlace = 0
	tbl.RakeStatus = false
	for _, s := range append([]*model.Seat(nil), t.agg.Seats...) {
		s.ResetHand()
		if s.Status == model.SeatPending {
			s.Status = model.SeatWaitingBB
		}
		if err := t.approveInvoices(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) approveInvoices(s *model.Seat) error {
	if len(t.agg.PendingInvoices(s.UserID)) == 0 {
		return nil
	}
	if t.agg.Tournament != nil {
		return ledger.ApproveTournamentInvoices(t.agg, s)
	}
	return ledger.ApproveCashInvoices(t.agg, s)
}

func (t *tx) startGame() error {
	tbl := t.agg.Table
	if len(t.agg.SeatsWith(model.SeatActive)) == 0 {
		for _, s := range t.agg.SeatsWith(model.SeatWaitingBB) {
			s.Status = model.SeatActive
		}
	}
	t.postAutoBlinds()
	t.timeBankByHand()

	tbl.Session = uuid.NewString()
	tbl.Round = model.PreFlop
	t.log = t.log.With().Str("session", tbl.Session).Logger()

	t.setDealer()
	t.setSmallBlind()
	t.setBigBlind()
	t.setFirstTurn()

	deck := game.DeckFrom(t.e.shuffledDeck())
	for _, s := range t.agg.SeatsWith(model.SeatActive) {
		cards, err := deck.Deal(tbl.Setting.Rule.HandCards(), game.KindHand)
		if err != nil {
			return err
		}
		s.Cards = cards
	}
	tbl.Deck = deck.Cards()

	t.log.Info().Int("dealer", tbl.DealerPlace).Int("small_blind", tbl.SmallBlindPlace).Int("big_blind", tbl.BigBlindPlace).Msg("hand started")
	t.emit(events.StartGame, map[string]any{
		"dealer_place":      tbl.DealerPlace,
		"small_blind_place": tbl.SmallBlindPlace,
		"big_blind_place":   tbl.BigBlindPlace,
	})
	return nil
}

// runRound is polled while a hand is in play. It moves the hand on when
// betting is over and plays for a seat whose timer ran out.
func (t *tx) runRound() error {
	tbl := t.agg.Table
	if tbl.Round.Final() {
		return nil
	}
	if tr := t.agg.Tournament; tr != nil && updateTournamentBlinds(tr, t.now) {
		t.dirty = true
	}
	t.timeBankByPeriod()
	if t.checkFastFinish() {
		return nil
	}
	if t.roundClosed() {
		t.nextRound()
		return nil
	}

	s := t.agg.SeatAt(tbl.TurnPlace)
	if s == nil || s.BetType.Silent() {
		t.changeTurnPlace()
		t.dirty = true
		return nil
	}
	if s.BetExpirationTime >= t.now {
		return nil
	}
	if t.activateTimeBank(s) {
		return nil
	}
	t.autoAct(s)
	return nil
}

// checkFastFinish ends betting when fewer than two seats contend the pot.
func (t *tx) checkFastFinish() bool {
	if len(t.agg.Contenders()) >= 2 {
		return false
	}
	tbl := t.agg.Table
	tbl.Round = model.FastFinish
	tbl.TurnPlace = 0
	tbl.LastWordPlace = 0
	t.dirty = true
	return true
}

func (t *tx) nextRound() {
	t.agg.Table.Round = t.agg.Table.Round.Next()
	t.startRound()
}

// startRound rolls bets into the pot, deals the street and opens betting.
// Streets nobody can bet on are dealt straight through to the showdown.
func (t *tx) startRound() {
	tbl := t.agg.Table
	for _, s := range t.agg.Seats {
		s.PrepareNextRound()
	}
	tbl.RakeStatus = true
	t.calculateBank()
	t.dirty = true
	if t.checkFastFinish() {
		return
	}
	if n := tbl.Round.TableCards(); n > 0 {
		deck := game.DeckFrom(tbl.Deck)
		cards, err := deck.Deal(n, game.KindTable)
		if err != nil {
			t.log.Error().Err(err).Msg("deal board")
		}
		tbl.Cards = append(tbl.Cards, cards...)
		tbl.Deck = deck.Cards()
	}
	t.log.Debug().Str("round", string(tbl.Round)).Msg("round started")
	if tbl.Round.Final() {
		tbl.TurnPlace = 0
		tbl.LastWordPlace = 0
		return
	}
	if t.roundClosed() {
		t.nextRound()
		return
	}
	t.setFirstTurn()
}

func (t *tx) finishGame() error {
	tbl := t.agg.Table
	for _, s := range t.agg.Seats {
		s.PrepareNextRound()
	}
	t.calculateBank()
	if err := t.detectWinner(); err != nil {
		return err
	}
	t.emit(events.FinishGame, t.sessionWinners())

	if t.agg.Tournament != nil {
		for _, s := range append([]*model.Seat(nil), t.agg.Seats...) {
			if err := t.approveInvoices(s); err != nil {
				return err
			}
		}
	}
	if err := t.setLosers(); err != nil {
		return err
	}
	if err := t.dropAfk(); err != nil {
		return err
	}

	tbl.TurnPlace = 0
	tbl.LastWordPlace = 0
	tbl.RoundExpirationTime = t.now + int64(t.e.opts.RoundExpiration)

	for _, s := range append([]*model.Seat(nil), t.agg.Seats...) {
		if s.Leaver {
			if err := ledger.ReturnRemainings(t.agg, s); err != nil {
				return fmt.Errorf("return remainings of %s: %w", s.UserID, err)
			}
			continue
		}
		if err := t.approveInvoices(s); err != nil {
			return err
		}
	}
	t.timeBankByPeriod()
	if t.agg.Tournament == nil && len(t.agg.Seats) == 0 {
		tbl.Archived = true
	}
	return nil
}

// setLosers handles seats left without chips. Cash seats wait for a rebuy;
// tournament seats are eliminated and ranked, a bigger hand total ranking
// better.
func (t *tx) setLosers() error {
	var broke []*model.Seat
	for _, s := range t.agg.Seats {
		if s.Stack.IsZero() && s.Status != model.SeatLose {
			broke = append(broke, s)
		}
	}
	if len(broke) == 0 {
		return nil
	}
	if t.agg.Tournament == nil {
		for _, s := range broke {
			if len(t.agg.PendingInvoices(s.UserID)) == 0 {
				s.Status = model.SeatLose
			}
		}
		return nil
	}

	remaining, err := t.tournamentSeats()
	if err != nil {
		return err
	}
	remaining -= len(broke)
	sort.SliceStable(broke, func(i, j int) bool { return broke[i].BetSum.GreaterThan(broke[j].BetSum) })
	if t.agg.Eliminated == nil {
		t.agg.Eliminated = map[string]int{}
	}
	for i, s := range broke {
		t.agg.Eliminated[s.UserID] = remaining + i + 1
		t.agg.RemoveSeat(s.Place)
		t.log.Info().Str("user_id", s.UserID).Int("rank", remaining+i+1).Msg("player eliminated")
	}
	return nil
}

// tournamentSeats counts seats across the tournament, this table counted
// from the aggregate.
func (t *tx) tournamentSeats() (int, error) {
	tables, err := t.e.repo.TournamentTables(t.ctx, t.agg.Table.TournamentID)
	if err != nil {
		return 0, err
	}
	n := len(t.agg.Seats)
	for _, ts := range tables {
		if ts.ID != t.agg.Table.ID && !ts.Archived {
			n += ts.Seats
		}
	}
	return n, nil
}

// dropAfk removes cash seats that stayed away for several turns.
func (t *tx) dropAfk() error {
	if t.agg.Tournament != nil {
		return nil
	}
	for _, s := range append([]*model.Seat(nil), t.agg.Seats...) {
		if s.SeatOut != 0 && s.AfkTimeouts >= t.e.opts.AfkDropAfter {
			t.log.Info().Str("user_id", s.UserID).Int("place", s.Place).Msg("dropping away player")
			if err := ledger.ReturnRemainings(t.agg, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tx) sessionWinners() []*model.Winner {
	out := []*model.Winner{}
	for _, w := range t.agg.Winners {
		if w.Session == t.agg.Table.Session {
			out = append(out, w)
		}
	}
	return out
}
