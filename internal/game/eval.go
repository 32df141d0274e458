package game

import "sort"

// Rule is the card selection rule of a poker variant.
type Rule string

const (
	TexasHoldem Rule = "texas_holdem"
	OmahaHigh   Rule = "omaha_high"
)

// HandCards is the number of hole cards dealt to each player.
func (r Rule) HandCards() int {
	if r == OmahaHigh {
		return 4
	}
	return 2
}

// allows reports whether five cards form a legal hand under the rule.
// Omaha-high requires exactly two hole cards and three board cards.
func (r Rule) allows(cards []Card) bool {
	if r != OmahaHigh {
		return true
	}
	hand, table := 0, 0
	for _, c := range cards {
		switch c.Kind {
		case KindHand:
			hand++
		case KindTable:
			table++
		}
	}
	return hand == 2 && table == 3
}

type extractor struct {
	rank       Rank
	candidates func(cards []Card) [][]Card
}

// Highest category first; the first category that yields a legal candidate wins.
var extractors = []extractor{
	{RoyalFlush, royalFlushes},
	{StraightFlush, straightFlushes},
	{Four, fours},
	{FullHouse, fullHouses},
	{Flush, flushes},
	{Straight, straights},
	{ThreeOfKind, threes},
	{TwoPair, twoPairs},
	{Pair, pairs},
	{HighCard, highCards},
}

// Best returns the strongest five-card combination reachable from cards
// under rule. It reports false when no legal five-card hand exists.
func Best(rule Rule, cards []Card) (Combination, bool) {
	if len(cards) < 5 {
		return Combination{}, false
	}
	sorted := sortDesc(cards)
	for _, ex := range extractors {
		var best Combination
		found := false
		for _, cand := range ex.candidates(sorted) {
			if len(cand) != 5 || !rule.allows(cand) {
				continue
			}
			combo := Combination{Rank: ex.rank}
			copy(combo.Cards[:], cand)
			if !found || CompareCards(combo.Cards, best.Cards) > 0 {
				best = combo
				found = true
			}
		}
		if found {
			return best, true
		}
	}
	return Combination{}, false
}

// Evaluate combines hole and board cards and returns the best hand.
func Evaluate(rule Rule, hole, board []Card) (Combination, bool) {
	cards := make([]Card, 0, len(hole)+len(board))
	for _, c := range hole {
		c.Kind = KindHand
		cards = append(cards, c)
	}
	for _, c := range board {
		c.Kind = KindTable
		cards = append(cards, c)
	}
	return Best(rule, cards)
}

func royalFlushes(cards []Card) [][]Card {
	var out [][]Card
	for _, sf := range straightFlushes(cards) {
		if sf[0].Value == Ace {
			out = append(out, sf)
		}
	}
	return out
}

func straightFlushes(cards []Card) [][]Card {
	var out [][]Card
	for _, suited := range groupBySuit(cards) {
		if len(suited) < 5 {
			continue
		}
		out = append(out, straights(suited)...)
	}
	return out
}

func fours(cards []Card) [][]Card {
	var out [][]Card
	groups, values := groupByValue(cards)
	for _, v := range values {
		if len(groups[v]) < 4 {
			continue
		}
		for _, kicker := range without(cards, v) {
			out = append(out, join(groups[v][:4], []Card{kicker}))
		}
	}
	return out
}

func fullHouses(cards []Card) [][]Card {
	var out [][]Card
	groups, values := groupByValue(cards)
	for _, tv := range values {
		if len(groups[tv]) < 3 {
			continue
		}
		for _, trips := range combinations(groups[tv], 3) {
			for _, pv := range values {
				if pv == tv || len(groups[pv]) < 2 {
					continue
				}
				for _, pair := range combinations(groups[pv], 2) {
					out = append(out, join(trips, pair))
				}
			}
		}
	}
	return out
}

func flushes(cards []Card) [][]Card {
	var out [][]Card
	for _, suited := range groupBySuit(cards) {
		if len(suited) < 5 {
			continue
		}
		out = append(out, combinations(suited, 5)...)
	}
	return out
}

// straights enumerates every window of five consecutive values. An Ace
// also counts as 1; inside the A-2-3-4-5 window the Ace copy carries value
// 1 so the five sorts last, every other copy keeps 14.
func straights(cards []Card) [][]Card {
	byValue := map[int][]Card{}
	for _, c := range cards {
		byValue[c.Value] = append(byValue[c.Value], c)
		if c.Value == Ace {
			low := c
			low.Value = LowAce
			byValue[LowAce] = append(byValue[LowAce], low)
		}
	}
	var out [][]Card
	for top := Ace; top >= 5; top-- {
		window := make([][]Card, 0, 5)
		for v := top; v > top-5; v-- {
			if len(byValue[v]) == 0 {
				break
			}
			window = append(window, byValue[v])
		}
		if len(window) < 5 {
			continue
		}
		out = append(out, cartesian(window)...)
	}
	return out
}

func threes(cards []Card) [][]Card {
	var out [][]Card
	groups, values := groupByValue(cards)
	for _, v := range values {
		if len(groups[v]) < 3 {
			continue
		}
		rest := without(cards, v)
		for _, trips := range combinations(groups[v], 3) {
			for _, kickers := range combinations(rest, 2) {
				out = append(out, join(trips, kickers))
			}
		}
	}
	return out
}

func twoPairs(cards []Card) [][]Card {
	var out [][]Card
	groups, values := groupByValue(cards)
	for i, hi := range values {
		if len(groups[hi]) < 2 {
			continue
		}
		for _, lo := range values[i+1:] {
			if len(groups[lo]) < 2 {
				continue
			}
			rest := without(without(cards, hi), lo)
			for _, hiPair := range combinations(groups[hi], 2) {
				for _, loPair := range combinations(groups[lo], 2) {
					for _, kicker := range rest {
						out = append(out, join(hiPair, loPair, []Card{kicker}))
					}
				}
			}
		}
	}
	return out
}

func pairs(cards []Card) [][]Card {
	var out [][]Card
	groups, values := groupByValue(cards)
	for _, v := range values {
		if len(groups[v]) < 2 {
			continue
		}
		rest := without(cards, v)
		for _, pair := range combinations(groups[v], 2) {
			for _, kickers := range combinations(rest, 3) {
				out = append(out, join(pair, kickers))
			}
		}
	}
	return out
}

func highCards(cards []Card) [][]Card {
	return combinations(cards, 5)
}

var suitOrder = map[Suit]int{Spade: 0, Heart: 1, Diamond: 2, Club: 3}

// sortDesc orders by value, then suit, so the outcome does not depend on
// the order cards were passed in.
func sortDesc(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		if out[i].Suit != out[j].Suit {
			return suitOrder[out[i].Suit] < suitOrder[out[j].Suit]
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// groupByValue keeps the input order inside each group and returns the
// distinct values in descending order.
func groupByValue(cards []Card) (map[int][]Card, []int) {
	groups := map[int][]Card{}
	values := []int{}
	for _, c := range cards {
		if _, ok := groups[c.Value]; !ok {
			values = append(values, c.Value)
		}
		groups[c.Value] = append(groups[c.Value], c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	return groups, values
}

func groupBySuit(cards []Card) [][]Card {
	groups := map[Suit][]Card{}
	for _, c := range cards {
		groups[c.Suit] = append(groups[c.Suit], c)
	}
	out := make([][]Card, 0, len(groups))
	for _, s := range []Suit{Spade, Heart, Diamond, Club} {
		if g, ok := groups[s]; ok {
			out = append(out, g)
		}
	}
	return out
}

func without(cards []Card, value int) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Value != value {
			out = append(out, c)
		}
	}
	return out
}

func join(parts ...[]Card) []Card {
	out := make([]Card, 0, 5)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// combinations returns every k-subset of cards, preserving input order.
func combinations(cards []Card, k int) [][]Card {
	if k > len(cards) || k <= 0 {
		return nil
	}
	var out [][]Card
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		set := make([]Card, k)
		for i, j := range idx {
			set[i] = cards[j]
		}
		out = append(out, set)
		i := k - 1
		for i >= 0 && idx[i] == len(cards)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func cartesian(groups [][]Card) [][]Card {
	out := [][]Card{{}}
	for _, g := range groups {
		next := make([][]Card, 0, len(out)*len(g))
		for _, prefix := range out {
			for _, c := range g {
				set := make([]Card, len(prefix), len(prefix)+1)
				copy(set, prefix)
				next = append(next, append(set, c))
			}
		}
		out = next
	}
	return out
}
