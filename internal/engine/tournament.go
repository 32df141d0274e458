package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"poker-platform/internal/ledger"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

func (e *Engine) withTournament(ctx context.Context, id string, fn func(*model.TournamentAggregate) error, users ...string) error {
	unlock, err := e.locks.Lock(ctx, tournamentKey(id))
	if err != nil {
		return err
	}
	defer unlock()
	err = e.repo.InTournamentTx(ctx, id, fn, users...)
	if errors.Is(err, model.ErrNotFound) {
		return coded(ErrTournamentNotFound)
	}
	return err
}

// registrationOpen applies the default window: open from creation until
// the start unless dates are set.
func registrationOpen(tr *model.Tournament, now int64) bool {
	if tr.Status != model.TournamentPending {
		return false
	}
	if tr.DateStartRegistration != 0 && now < tr.DateStartRegistration {
		return false
	}
	end := tr.DateEndRegistration
	if end == 0 {
		end = tr.DateStart
	}
	return end == 0 || now < end
}

func (e *Engine) admit(agg *model.TournamentAggregate, userID string, now int64) error {
	tr := agg.Tournament
	if agg.Member(userID) != nil {
		return coded(ErrAlreadyRegistered)
	}
	if limit := tr.Setting.LimitMembers; limit > 0 && len(agg.Members) >= limit {
		return coded(ErrTournamentFull)
	}
	if err := ledger.BuyInTournament(agg.Books, tr, userID); err != nil {
		return coded(err)
	}
	agg.Members = append(agg.Members, &model.Member{TournamentID: tr.ID, UserID: userID, RegisteredAt: now})
	return nil
}

// Register buys userID into a pending tournament.
func (e *Engine) Register(ctx context.Context, tournamentID, userID string) error {
	return e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		now := e.now()
		if !registrationOpen(agg.Tournament, now) {
			return coded(ErrRegistrationClosed)
		}
		if err := e.admit(agg, userID, now); err != nil {
			return err
		}
		log.Info().Str("tournament_id", tournamentID).Str("user_id", userID).Msg("registered")
		return nil
	}, userID)
}

// RegisterLate buys userID into a running tournament and seats them at the
// shortest table. It returns that table.
func (e *Engine) RegisterLate(ctx context.Context, tournamentID, userID string) (string, error) {
	var chips money.Money
	err := e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		tr := agg.Tournament
		late := tr.Setting.Late
		now := e.now()
		if late == nil || !tr.Status.Running() {
			return coded(ErrLateRegistrationUnavailable)
		}
		if late.TimeAfterStart > 0 && now > tr.DateStart+late.TimeAfterStart {
			return coded(ErrLateRegistrationUnavailable)
		}
		if late.MaxBlindLevel > 0 && tr.BlindLevel > late.MaxBlindLevel {
			return coded(ErrLateRegistrationUnavailable)
		}
		if err := e.admit(agg, userID, now); err != nil {
			return err
		}
		chips = tr.Setting.EntryChips
		return nil
	}, userID)
	if err != nil {
		return "", err
	}

	tables, err := e.repo.TournamentTables(ctx, tournamentID)
	if err != nil {
		return "", err
	}
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Seats < tables[j].Seats })
	for _, ts := range tables {
		if ts.Archived {
			continue
		}
		seated, err := e.seatLate(ctx, ts.ID, userID, chips)
		if err != nil {
			return "", err
		}
		if seated {
			log.Info().Str("tournament_id", tournamentID).Str("table_id", ts.ID).Str("user_id", userID).Msg("late registration seated")
			return ts.ID, nil
		}
	}

	// No table had room; give the entry back.
	err = e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		return e.refund(agg, userID)
	}, userID)
	if err != nil {
		return "", err
	}
	return "", coded(ErrTournamentFull)
}

func (e *Engine) seatLate(ctx context.Context, tableID, userID string, chips money.Money) (bool, error) {
	seated := false
	_, err := e.withTable(ctx, tableID, func(t *tx) error {
		if t.agg.Table.Archived || len(t.agg.Seats) >= t.agg.Table.Setting.Seats {
			return nil
		}
		t.agg.AddSeat(&model.Seat{
			ID:       e.repo.NewID(),
			TableID:  tableID,
			UserID:   userID,
			Place:    t.freePlace(),
			Stack:    chips,
			Status:   model.SeatWaitingBB,
			TimeBank: model.TimeBank{Time: t.agg.Table.Setting.TimeBank.Time},
		})
		seated = true
		t.dirty = true
		return nil
	})
	return seated, err
}

// CancelRegistration refunds a member before the tournament starts.
func (e *Engine) CancelRegistration(ctx context.Context, tournamentID, userID string) error {
	return e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		tr := agg.Tournament
		if agg.Member(userID) == nil {
			return coded(ErrNotRegistered)
		}
		if tr.Status != model.TournamentPending || (tr.DateStart != 0 && e.now() >= tr.DateStart) {
			return coded(ErrRegistrationClosed)
		}
		return e.refund(agg, userID)
	}, userID)
}

func (e *Engine) refund(agg *model.TournamentAggregate, userID string) error {
	if err := ledger.RefundTournament(agg.Books, agg.Tournament, userID); err != nil {
		return err
	}
	agg.RemoveMember(userID)
	log.Info().Str("tournament_id", agg.Tournament.ID).Str("user_id", userID).Msg("entry refunded")
	return nil
}

// StartTournament starts a pending tournament once its start time has
// come. Without enough members it is canceled and every entry refunded.
func (e *Engine) StartTournament(ctx context.Context, tournamentID string) error {
	return e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		tr := agg.Tournament
		now := e.now()
		if tr.Status != model.TournamentPending || now < tr.DateStart {
			return nil
		}
		minMembers := tr.Setting.MinCountMembers
		if minMembers < 2 {
			minMembers = 2
		}
		if len(agg.Members) < minMembers {
			for _, m := range agg.Members {
				if err := ledger.RefundTournament(agg.Books, tr, m.UserID); err != nil {
					return fmt.Errorf("refund %s: %w", m.UserID, err)
				}
			}
			tr.Status = model.TournamentCanceled
			log.Info().Str("tournament_id", tr.ID).Int("members", len(agg.Members)).Msg("tournament canceled")
			return nil
		}

		tr.Status = model.TournamentStarted
		tr.BlindLevel = 1
		tr.LastBlindUpdate = now
		tr.SmallBlind = tr.Setting.Blinds.SmallBlind
		tr.BigBlind = tr.Setting.Blinds.BigBlind
		agg.Prizes = ledger.Prizes(tr.ID, tr.Balance, tr.Setting.PrizeShares)
		agg.NewTables = e.seatMembers(tr, agg.Members)
		log.Info().Str("tournament_id", tr.ID).Int("members", len(agg.Members)).Int("tables", len(agg.NewTables)).Msg("tournament started")
		return nil
	})
}

// seatMembers deals members round-robin onto as few tables as fit them.
func (e *Engine) seatMembers(tr *model.Tournament, members []*model.Member) []*model.TableAggregate {
	setting := tr.Setting.Table.WithDefaults()
	setting.Type = model.TableTournament
	n := (len(members) + setting.Seats - 1) / setting.Seats
	tables := make([]*model.TableAggregate, n)
	for i := range tables {
		tables[i] = &model.TableAggregate{
			Table: &model.Table{
				ID:           e.repo.NewID(),
				Setting:      setting,
				TournamentID: tr.ID,
				State:        model.StateReady,
			},
			Tournament: tr,
		}
	}
	for i, m := range members {
		agg := tables[i%n]
		agg.Seats = append(agg.Seats, &model.Seat{
			ID:       e.repo.NewID(),
			TableID:  agg.Table.ID,
			UserID:   m.UserID,
			Place:    i/n + 1,
			Stack:    tr.Setting.EntryChips,
			Status:   model.SeatActive,
			TimeBank: model.TimeBank{Time: setting.TimeBank.Time},
		})
	}
	return tables
}

// ResolvePrizes finishes a tournament with one player left: prizes are
// paid by finishing rank and the remaining tables archived.
func (e *Engine) ResolvePrizes(ctx context.Context, tournamentID string) error {
	var open []string
	err := e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		tr := agg.Tournament
		if !tr.Status.Running() {
			return nil
		}
		tables, err := e.repo.TournamentTables(ctx, tournamentID)
		if err != nil {
			return err
		}
		var users []string
		for _, ts := range tables {
			if ts.Archived {
				continue
			}
			users = append(users, ts.UserIDs...)
			open = append(open, ts.ID)
		}
		if len(users) != 1 {
			open = nil
			return nil
		}
		if m := agg.Member(users[0]); m != nil {
			m.Rank = 1
		}

		fresh := ledger.Prizes(tr.ID, tr.Balance, tr.Setting.PrizeShares)
		byRank := map[int]*model.Prize{}
		for _, p := range agg.Prizes {
			byRank[p.Rank] = p
		}
		for _, p := range fresh {
			if old, ok := byRank[p.Rank]; ok && old.WinnerID == "" {
				old.Sum = p.Sum
			} else if !ok {
				agg.Prizes = append(agg.Prizes, p)
			}
		}
		sort.Slice(agg.Prizes, func(i, j int) bool { return agg.Prizes[i].Rank < agg.Prizes[j].Rank })
		for _, p := range agg.Prizes {
			for _, m := range agg.Members {
				if m.Rank != p.Rank {
					continue
				}
				if err := ledger.PayPrize(agg.Books, tr, p, m.UserID); err != nil {
					return fmt.Errorf("pay prize %d: %w", p.Rank, err)
				}
			}
		}
		tr.Status = model.TournamentFinished
		log.Info().Str("tournament_id", tr.ID).Str("winner", users[0]).Msg("tournament finished")
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range open {
		if err := e.ArchiveTable(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateBlinds raises the blinds of a running tournament when due.
func (e *Engine) UpdateBlinds(ctx context.Context, tournamentID string) error {
	return e.withTournament(ctx, tournamentID, func(agg *model.TournamentAggregate) error {
		if updateTournamentBlinds(agg.Tournament, e.now()) {
			log.Info().Str("tournament_id", tournamentID).Int("blind_level", agg.Tournament.BlindLevel).Msg("blinds raised")
		}
		return nil
	})
}

// updateTournamentBlinds waits out a break, then multiplies the blinds by
// the coefficient once every BlindSpeed seconds.
func updateTournamentBlinds(tr *model.Tournament, now int64) bool {
	bs := tr.Setting.Blinds
	if !tr.Status.Running() || bs.BlindSpeed <= 0 {
		return false
	}
	changed := false
	if tr.Status == model.TournamentBreak {
		end := tr.LastBlindUpdate + tr.Setting.BreakDuration
		if now < end {
			return false
		}
		tr.LastBlindUpdate = end
		tr.Status = model.TournamentStarted
		changed = true
	}
	if tr.LastBlindUpdate+bs.BlindSpeed > now || !bs.BlindCoefficient.IsPositive() {
		return changed
	}
	tr.SmallBlind = tr.SmallBlind.MulRate(bs.BlindCoefficient)
	tr.BigBlind = tr.BigBlind.MulRate(bs.BlindCoefficient)
	tr.BlindLevel++
	tr.LastBlindUpdate = now
	return true
}

// ScanReformation queues short tables of running tournaments that still
// have another table to merge into.
func (e *Engine) ScanReformation(ctx context.Context) error {
	ids, err := e.repo.TournamentIDs(ctx, model.TournamentStarted, model.TournamentBreak, model.TournamentSync)
	if err != nil {
		return err
	}
	for _, id := range ids {
		tables, err := e.repo.TournamentTables(ctx, id)
		if err != nil {
			metricJobFailuresTotal.Add(1)
			log.Warn().Err(err).Str("tournament_id", id).Msg("reform scan")
			continue
		}
		live := tables[:0]
		for _, ts := range tables {
			if !ts.Archived {
				live = append(live, ts)
			}
		}
		if len(live) < 2 {
			continue
		}
		for _, ts := range live {
			if ts.Seats >= e.opts.ReformThreshold {
				continue
			}
			added, err := e.repo.QueueReform(ctx, model.ReformEntry{TournamentID: id, TableID: ts.ID, Seats: ts.Seats, QueuedAt: e.now()})
			if err != nil {
				metricJobFailuresTotal.Add(1)
				log.Warn().Err(err).Str("table_id", ts.ID).Msg("queue reform")
				continue
			}
			if added {
				log.Info().Str("tournament_id", id).Str("table_id", ts.ID).Int("seats", ts.Seats).Msg("table queued for reform")
			}
		}
	}
	return nil
}
