package game

import "strings"

// Rank orders combination categories; a higher value beats a lower one.
type Rank int

const (
	HighCard Rank = iota + 1
	Pair
	TwoPair
	ThreeOfKind
	Straight
	Flush
	FullHouse
	Four
	StraightFlush
	RoyalFlush
)

var rankNames = map[Rank]string{
	HighCard:      "high_card",
	Pair:          "pair",
	TwoPair:       "two_pair",
	ThreeOfKind:   "three_of_kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	Four:          "four",
	StraightFlush: "straight_flush",
	RoyalFlush:    "royal_flush",
}

func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return "unknown"
}

// Combination is a ranked set of exactly five cards. Cards are ordered so
// that a card-by-card comparison settles ties: the grouped cards first
// (quads, trips, pairs) then kickers, each by descending value.
type Combination struct {
	Rank  Rank    `json:"rank"`
	Cards [5]Card `json:"cards"`
}

func (c Combination) String() string {
	parts := make([]string, 0, 5)
	for _, card := range c.Cards {
		parts = append(parts, card.String())
	}
	return c.Rank.String() + " " + strings.Join(parts, " ")
}

// Compare returns a positive number when a beats b, a negative one when b
// beats a and zero on a tie.
func Compare(a, b Combination) int {
	if a.Rank != b.Rank {
		return int(a.Rank) - int(b.Rank)
	}
	return CompareCards(a.Cards, b.Cards)
}

// CompareCards compares two ordered five-card sequences value by value.
func CompareCards(a, b [5]Card) int {
	for i := 0; i < 5; i++ {
		if a[i].Value != b[i].Value {
			return a[i].Value - b[i].Value
		}
	}
	return 0
}
