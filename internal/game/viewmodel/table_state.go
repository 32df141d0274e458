package viewmodel

import (
	"poker-platform/internal/game"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

type SeatView struct {
	Place             int               `json:"place"`
	UserID            string            `json:"user_id"`
	Stack             money.Money       `json:"stack"`
	Bet               money.Money       `json:"bet"`
	BetSum            money.Money       `json:"bet_sum"`
	ToCall            money.Money       `json:"to_call"`
	BetType           string            `json:"bet_type"`
	Status            string            `json:"status"`
	IsTurn            bool              `json:"is_turn"`
	BetExpirationTime int64             `json:"bet_expiration_time"`
	SeatOut           bool              `json:"seat_out"`
	TimeBank          int               `json:"time_bank"`
	HoleCards         []string          `json:"hole_cards,omitempty"`
	Combination       *game.Combination `json:"combination,omitempty"`
}

type WinnerView struct {
	Place       int               `json:"place"`
	UserID      string            `json:"user_id"`
	Sum         money.Money       `json:"sum"`
	Combination *game.Combination `json:"combination,omitempty"`
}

type TableView struct {
	TableID             string       `json:"table_id"`
	TournamentID        string       `json:"tournament_id,omitempty"`
	Session             string       `json:"session"`
	State               string       `json:"state"`
	Round               string       `json:"round"`
	Pot                 money.Money  `json:"pot"`
	SmallBlind          money.Money  `json:"small_blind"`
	BigBlind            money.Money  `json:"big_blind"`
	CommunityCards      []string     `json:"community_cards"`
	DealerPlace         int          `json:"dealer_place"`
	SmallBlindPlace     int          `json:"small_blind_place"`
	BigBlindPlace       int          `json:"big_blind_place"`
	TurnPlace           int          `json:"turn_place"`
	LastWordPlace       int          `json:"last_word_place"`
	RoundExpirationTime int64        `json:"round_expiration_time"`
	MyPlace             int          `json:"my_place,omitempty"`
	Seats               []SeatView   `json:"seats"`
	Winners             []WinnerView `json:"winners,omitempty"`
}

func cardStrings(cards []game.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

// BuildTableState renders the table for viewerID. Hole cards are shown to
// their owner only, and to everyone once the hand reached showdown. An
// empty viewerID gives the public view.
func BuildTableState(agg *model.TableAggregate, viewerID string) TableView {
	t := agg.Table
	sb, bb := agg.Blinds()
	maxBet := agg.MaxBet(0)

	pot := money.Zero
	for _, s := range agg.Seats {
		pot = pot.Add(s.BetSum).Add(s.Bet)
	}

	reveal := t.Round == model.ShowDown && (t.State == model.StateShowdown || t.State == model.StateFinished)
	view := TableView{
		TableID:             t.ID,
		TournamentID:        t.TournamentID,
		Session:             t.Session,
		State:               string(t.State),
		Round:               string(t.Round),
		Pot:                 pot,
		SmallBlind:          sb,
		BigBlind:            bb,
		CommunityCards:      cardStrings(t.Cards),
		DealerPlace:         t.DealerPlace,
		SmallBlindPlace:     t.SmallBlindPlace,
		BigBlindPlace:       t.BigBlindPlace,
		TurnPlace:           t.TurnPlace,
		LastWordPlace:       t.LastWordPlace,
		RoundExpirationTime: t.RoundExpirationTime,
		Seats:               make([]SeatView, 0, len(agg.Seats)),
	}
	for _, s := range agg.Seats {
		toCall := maxBet.Sub(s.Bet)
		if toCall.IsNegative() {
			toCall = money.Zero
		}
		sv := SeatView{
			Place:             s.Place,
			UserID:            s.UserID,
			Stack:             s.Stack,
			Bet:               s.Bet,
			BetSum:            s.BetSum,
			ToCall:            money.Min(toCall, s.Stack),
			BetType:           string(s.BetType),
			Status:            string(s.Status),
			IsTurn:            t.TurnPlace != 0 && s.Place == t.TurnPlace,
			BetExpirationTime: s.BetExpirationTime,
			SeatOut:           s.SeatOut != 0,
			TimeBank:          s.TimeBank.Time,
		}
		mine := viewerID != "" && s.UserID == viewerID
		if mine {
			view.MyPlace = s.Place
		}
		if mine || (reveal && s.BetType != model.BetFold) {
			sv.HoleCards = cardStrings(s.Cards)
		}
		if mine && len(s.Cards) > 0 && len(t.Cards) >= 3 {
			if c, ok := game.Evaluate(t.Setting.Rule, s.Cards, t.Cards); ok {
				sv.Combination = &c
			}
		}
		view.Seats = append(view.Seats, sv)
	}
	for _, w := range agg.Winners {
		if w.Session != t.Session {
			continue
		}
		view.Winners = append(view.Winners, WinnerView{
			Place:       w.Place,
			UserID:      w.UserID,
			Sum:         w.Sum,
			Combination: w.Combination,
		})
	}
	return view
}
