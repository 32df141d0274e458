package model

import (
	"github.com/shopspring/decimal"

	"poker-platform/internal/money"
)

type TournamentStatus string

const (
	TournamentPending  TournamentStatus = "pending"
	TournamentStarted  TournamentStatus = "started"
	TournamentBreak    TournamentStatus = "break"
	TournamentSync     TournamentStatus = "sync"
	TournamentFinished TournamentStatus = "finished"
	TournamentCanceled TournamentStatus = "canceled"
)

// Running statuses have tables in play.
func (s TournamentStatus) Running() bool {
	return s == TournamentStarted || s == TournamentBreak || s == TournamentSync
}

type BlindSetting struct {
	SmallBlind       money.Money     `json:"small_blind"`
	BigBlind         money.Money     `json:"big_blind"`
	BlindSpeed       int64           `json:"blind_speed"`
	BlindCoefficient decimal.Decimal `json:"blind_coefficient"`
}

type LateRegistration struct {
	TimeAfterStart int64 `json:"time_after_start"`
	MaxBlindLevel  int   `json:"max_blind_level"`
}

type TournamentSetting struct {
	EntrySum          money.Money       `json:"entry_sum"`
	EntryChips        money.Money       `json:"entry_chips"`
	Rake              decimal.Decimal   `json:"rake"`
	RakeCap           money.Money       `json:"rake_cap"`
	StartCountPlayers int               `json:"start_count_players"`
	MinCountMembers   int               `json:"min_count_members"`
	LimitMembers      int               `json:"limit_members"`
	BreakDuration     int64             `json:"break_duration"`
	Blinds            BlindSetting      `json:"blinds"`
	Late              *LateRegistration `json:"late_registration,omitempty"`
	// PrizeShares splits the pool by finishing rank, first place first.
	PrizeShares []decimal.Decimal `json:"prize_shares"`
	Table       TableSetting      `json:"table"`
}

type Tournament struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Status  TournamentStatus  `json:"status"`
	Setting TournamentSetting `json:"setting"`
	Balance money.Money       `json:"balance"`

	BlindLevel      int         `json:"blind_level"`
	LastBlindUpdate int64       `json:"last_blind_update"`
	SmallBlind      money.Money `json:"small_blind"`
	BigBlind        money.Money `json:"big_blind"`

	DateStartRegistration int64 `json:"date_start_registration"`
	DateEndRegistration   int64 `json:"date_end_registration"`
	DateStart             int64 `json:"date_start"`
}

type Member struct {
	TournamentID string `json:"tournament_id"`
	UserID       string `json:"user_id"`
	// Rank is the finishing position, 0 while still playing.
	Rank         int   `json:"rank"`
	RegisteredAt int64 `json:"registered_at"`
}

type Prize struct {
	TournamentID string      `json:"tournament_id"`
	Rank         int         `json:"rank"`
	Sum          money.Money `json:"sum"`
	WinnerID     string      `json:"winner_id,omitempty"`
}

// ReformEntry queues a short-handed tournament table for rebalancing.
type ReformEntry struct {
	TournamentID string `json:"tournament_id"`
	TableID      string `json:"table_id"`
	Seats        int    `json:"seats"`
	QueuedAt     int64  `json:"queued_at"`
}
