package model

import (
	"poker-platform/internal/game"
	"poker-platform/internal/money"
)

type BetType string

const (
	BetNone       BetType = ""
	BetFold       BetType = "fold"
	BetCheck      BetType = "check"
	BetCall       BetType = "call"
	BetBet        BetType = "bet"
	BetRaise      BetType = "raise"
	BetAllIn      BetType = "all_in"
	BetSmallBlind BetType = "small_blind"
	BetBigBlind   BetType = "big_blind"
)

// Silent seats take no further part in betting this hand.
func (b BetType) Silent() bool { return b == BetFold || b == BetAllIn }

// Acted reports a voluntary action in the current round. Posted blinds do
// not count, so the big blind keeps its option.
func (b BetType) Acted() bool {
	switch b {
	case BetCheck, BetCall, BetBet, BetRaise:
		return true
	}
	return false
}

type SeatStatus string

const (
	SeatPending   SeatStatus = "pending"
	SeatActive    SeatStatus = "active"
	SeatWaitingBB SeatStatus = "waiting_bb"
	SeatAutoBlind SeatStatus = "auto_blind"
	SeatLose      SeatStatus = "lose"
)

// Playing statuses are dealt into the next hand.
func (s SeatStatus) Playing() bool {
	return s == SeatActive || s == SeatWaitingBB || s == SeatAutoBlind
}

type TimeBank struct {
	Time            int   `json:"time"`
	Active          bool  `json:"active"`
	ActivationTime  int64 `json:"activation_time"`
	LastUpdatedTime int64 `json:"last_updated_time"`
	CountPlayedHand int   `json:"count_played_hand"`
}

type Seat struct {
	ID      string `json:"id"`
	TableID string `json:"table_id"`
	UserID  string `json:"user_id"`
	Place   int    `json:"place"`

	Stack   money.Money `json:"stack"`
	Bet     money.Money `json:"bet"`
	BetSum  money.Money `json:"bet_sum"`
	BetType BetType     `json:"bet_type"`
	Status  SeatStatus  `json:"status"`

	BetExpirationTime int64 `json:"bet_expiration_time"`
	// SeatOut is the unix time the seat was marked away, 0 when present.
	SeatOut     int64       `json:"seat_out"`
	AfkTimeouts int         `json:"afk_timeouts"`
	Cards       []game.Card `json:"cards"`
	TimeBank    TimeBank    `json:"time_bank"`
	Leaver      bool        `json:"leaver"`
	CountBuyIn  int         `json:"count_buy_in"`
}

// Clone returns a deep copy.
func (s *Seat) Clone() *Seat {
	out := *s
	out.Cards = append([]game.Card(nil), s.Cards...)
	return &out
}

// ResetHand clears every per-hand field.
func (s *Seat) ResetHand() {
	s.Bet = money.Zero
	s.BetSum = money.Zero
	s.BetType = BetNone
	s.BetExpirationTime = 0
	s.Cards = nil
}

// PrepareNextRound rolls the round bet into the hand total. Fold and
// all-in survive the round change.
func (s *Seat) PrepareNextRound() {
	s.BetSum = s.BetSum.Add(s.Bet)
	s.Bet = money.Zero
	if !s.BetType.Silent() {
		s.BetType = BetNone
	}
}
