package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount is kept at.
const Scale = 2

// Money is a fixed-point amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

func New(units int64) Money {
	return Money{d: decimal.NewFromInt(units)}
}

func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Scale)}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(Scale)}
}

func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) Neg() Money { return Money{d: m.d.Neg()} }

// MulRate multiplies by a fraction and rounds half-up to the cent.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).Round(Scale)}
}

func (m Money) MulInt(n int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }

func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Cents() int64 { return m.d.Shift(Scale).IntPart() }

func (m Money) String() string { return m.d.StringFixed(Scale) }

func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

func Max(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func Sum(ms ...Money) Money {
	out := Zero
	for _, m := range ms {
		out = out.Add(m)
	}
	return out
}

// Split divides m into n shares that differ by at most one cent.
// Leftover cents go to the first shares.
func (m Money) Split(n int) []Money {
	if n <= 0 {
		return nil
	}
	cents := m.Cents()
	base := cents / int64(n)
	rest := cents % int64(n)
	out := make([]Money, n)
	for i := range out {
		c := base
		if int64(i) < rest {
			c++
		}
		out[i] = FromCents(c)
	}
	return out
}

// Rake returns min(amount*rate, limit) rounded half-up to the cent.
// A zero limit means uncapped.
func Rake(amount Money, rate decimal.Decimal, limit Money) Money {
	r := amount.MulRate(rate)
	if limit.IsPositive() && r.GreaterThan(limit) {
		return limit
	}
	return r
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = FromDecimal(d)
	return nil
}

func (m Money) Value() (driver.Value, error) { return m.String(), nil }

func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	*m = FromDecimal(d)
	return nil
}
