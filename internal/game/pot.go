package game

import (
	"sort"

	"poker-platform/internal/money"
)

// Contribution is what one seat has put into the hand.
type Contribution struct {
	Place  int
	Amount money.Money
	Folded bool
}

type Pot struct {
	Amount   money.Money
	Eligible []int
}

// ComputePots splits contributions into a main pot and side pots. Each
// all-in level of a live seat closes a pot; folded chips stay in the pots
// they reached but folded seats are never eligible.
func ComputePots(contribs []Contribution) []Pot {
	levels := []money.Money{}
	for _, c := range contribs {
		if c.Folded || !c.Amount.IsPositive() {
			continue
		}
		dup := false
		for _, l := range levels {
			if l.Equal(c.Amount) {
				dup = true
				break
			}
		}
		if !dup {
			levels = append(levels, c.Amount)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].LessThan(levels[j]) })

	var pots []Pot
	prev := money.Zero
	for _, level := range levels {
		pot := Pot{}
		for _, c := range contribs {
			pot.Amount = pot.Amount.Add(layer(c.Amount, prev, level))
			if !c.Folded && !c.Amount.LessThan(level) {
				pot.Eligible = append(pot.Eligible, c.Place)
			}
		}
		if pot.Amount.IsPositive() {
			pots = append(pots, pot)
		}
		prev = level
	}
	// Folded chips above the highest live level go to the last pot.
	extra := money.Zero
	for _, c := range contribs {
		if c.Amount.GreaterThan(prev) {
			extra = extra.Add(c.Amount.Sub(prev))
		}
	}
	if !extra.IsPositive() {
		return pots
	}
	if len(pots) > 0 {
		pots[len(pots)-1].Amount = pots[len(pots)-1].Amount.Add(extra)
		return pots
	}
	pot := Pot{Amount: extra}
	for _, c := range contribs {
		if !c.Folded {
			pot.Eligible = append(pot.Eligible, c.Place)
		}
	}
	return append(pots, pot)
}

func layer(amount, from, to money.Money) money.Money {
	if !amount.GreaterThan(from) {
		return money.Zero
	}
	return money.Min(amount, to).Sub(from)
}

// Total sums every pot.
func Total(pots []Pot) money.Money {
	out := money.Zero
	for _, p := range pots {
		out = out.Add(p.Amount)
	}
	return out
}
