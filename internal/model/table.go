package model

import (
	"github.com/shopspring/decimal"

	"poker-platform/internal/game"
	"poker-platform/internal/money"
)

// Round is a betting street inside one hand.
type Round string

const (
	PreFlop    Round = "preflop"
	Flop       Round = "flop"
	Turn       Round = "turn"
	River      Round = "river"
	ShowDown   Round = "showdown"
	FastFinish Round = "fast_finish"
)

func (r Round) Next() Round {
	switch r {
	case PreFlop:
		return Flop
	case Flop:
		return Turn
	case Turn:
		return River
	case River:
		return ShowDown
	}
	return r
}

// TableCards is how many board cards are dealt when r starts.
func (r Round) TableCards() int {
	switch r {
	case Flop:
		return 3
	case Turn, River:
		return 1
	}
	return 0
}

// Final reports whether betting is over for the hand.
func (r Round) Final() bool { return r == ShowDown || r == FastFinish }

// State is the workflow position of a table.
type State string

const (
	StateReady      State = "ready"
	StatePrepared   State = "prepared"
	StateInProgress State = "in_progress"
	StateShowdown   State = "showdown"
	StateFinished   State = "finished"
)

type TableType string

const (
	TableCash       TableType = "cash"
	TableTournament TableType = "tournament"
)

const (
	DefaultTurnTime = 60
	DefaultSeats    = 10
	// AfkTurnTime is the turn time of a seat marked as away.
	AfkTurnTime = 10
	// RoundExpiration is the pause between two hands.
	RoundExpiration = 10
)

var (
	DefaultRake    = decimal.RequireFromString("0.05")
	DefaultRakeCap = money.New(3)
)

type TimeBankSetting struct {
	Time         int   `json:"time"`
	TimeLimit    int   `json:"time_limit"`
	PeriodInSec  int64 `json:"period_in_sec"`
	PeriodInHand int   `json:"period_in_hand"`
}

type TableSetting struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       TableType       `json:"type"`
	Rule       game.Rule       `json:"rule"`
	SmallBlind money.Money     `json:"small_blind"`
	BigBlind   money.Money     `json:"big_blind"`
	BuyIn      money.Money     `json:"buy_in"`
	Rake       decimal.Decimal `json:"rake"`
	RakeCap    money.Money     `json:"rake_cap"`
	TurnTime   int             `json:"turn_time"`
	Seats      int             `json:"seats"`
	TimeBank   TimeBankSetting `json:"time_bank"`
}

// WithDefaults fills zero fields with platform defaults.
func (s TableSetting) WithDefaults() TableSetting {
	if s.Rule == "" {
		s.Rule = game.TexasHoldem
	}
	if s.Type == "" {
		s.Type = TableCash
	}
	if s.Rake.IsZero() {
		s.Rake = DefaultRake
	}
	if s.RakeCap.IsZero() {
		s.RakeCap = DefaultRakeCap
	}
	if s.TurnTime <= 0 {
		s.TurnTime = DefaultTurnTime
	}
	if s.Seats <= 0 {
		s.Seats = DefaultSeats
	}
	return s
}

type Table struct {
	ID           string       `json:"id"`
	Setting      TableSetting `json:"setting"`
	TournamentID string       `json:"tournament_id,omitempty"`

	Round               Round       `json:"round"`
	State               State       `json:"state"`
	DealerPlace         int         `json:"dealer_place"`
	SmallBlindPlace     int         `json:"small_blind_place"`
	BigBlindPlace       int         `json:"big_blind_place"`
	TurnPlace           int         `json:"turn_place"`
	LastWordPlace       int         `json:"last_word_place"`
	Session             string      `json:"session"`
	Cards               []game.Card `json:"cards"`
	Deck                []game.Card `json:"-"`
	RoundExpirationTime int64       `json:"round_expiration_time"`
	RakeStatus          bool        `json:"rake_status"`
	Archived            bool        `json:"archived"`
}
