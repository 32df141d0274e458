package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type Suit string

const (
	Diamond Suit = "diamond"
	Club    Suit = "club"
	Heart   Suit = "heart"
	Spade   Suit = "spade"
)

var Suits = []Suit{Diamond, Club, Heart, Spade}

// Kind tells where a card was dealt: to a player or to the board.
type Kind string

const (
	KindHand  Kind = "hand"
	KindTable Kind = "table"
)

const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
	// LowAce is the value an Ace carries inside the A-2-3-4-5 straight.
	LowAce = 1
)

type Card struct {
	Value int  `json:"value"`
	Suit  Suit `json:"suit"`
	Kind  Kind `json:"kind"`
}

func (c Card) String() string {
	var v string
	switch c.Value {
	case Ace, LowAce:
		v = "A"
	case King:
		v = "K"
	case Queen:
		v = "Q"
	case Jack:
		v = "J"
	case 10:
		v = "T"
	default:
		v = fmt.Sprint(c.Value)
	}
	if c.Suit == "" {
		return v
	}
	return v + string(c.Suit[:1])
}

// Same reports whether two cards are the same physical card, ignoring Kind
// and the low-Ace value.
func (c Card) Same(o Card) bool {
	return c.Suit == o.Suit && c.rankValue() == o.rankValue()
}

func (c Card) rankValue() int {
	if c.Value == LowAce {
		return Ace
	}
	return c.Value
}

// ParseCard reads the short form used in tests and logs, e.g. "As", "Td", "9h".
func ParseCard(s string, kind Kind) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	var value int
	switch r := s[0]; r {
	case 'A':
		value = Ace
	case 'K':
		value = King
	case 'Q':
		value = Queen
	case 'J':
		value = Jack
	case 'T':
		value = 10
	default:
		if r < '2' || r > '9' {
			return Card{}, fmt.Errorf("invalid card value %q", s)
		}
		value = int(r - '0')
	}
	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "d":
		suit = Diamond
	case "c":
		suit = Club
	case "h":
		suit = Heart
	case "s":
		suit = Spade
	default:
		return Card{}, fmt.Errorf("invalid card suit %q", s)
	}
	return Card{Value: value, Suit: suit, Kind: kind}, nil
}

func MustParseCards(kind Kind, short ...string) []Card {
	out := make([]Card, 0, len(short))
	for _, s := range short {
		c, err := ParseCard(s, kind)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for _, s := range Suits {
		for v := 2; v <= Ace; v++ {
			cards = append(cards, Card{Value: v, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// DeckFrom restores a partially dealt deck.
func DeckFrom(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

func (d *Deck) Shuffle(rnd *rand.Rand) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rnd.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *Deck) Len() int { return len(d.cards) }

func (d *Deck) Cards() []Card { return append([]Card(nil), d.cards...) }

// Deal removes n cards from the top of the deck and marks them with kind.
func (d *Deck) Deal(n int, kind Kind) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("deck exhausted: want %d, have %d", n, len(d.cards))
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	for i := range out {
		out[i].Kind = kind
	}
	d.cards = d.cards[n:]
	return out, nil
}
