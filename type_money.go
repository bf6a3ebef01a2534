package tradebook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// D is a shorthand for decimal literals.
func D[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal { return newDecimal(value) }

// round2 rounds to currency-cent precision. Every comparison between
// declared and computed amounts goes through it.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// equalCents reports whether a and b are equal once rounded to cents.
func equalCents(a, b decimal.Decimal) bool { return round2(a).Equal(round2(b)) }

// Money represents a monetary value for display.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, rounded to
// the currency fraction.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string       { return m.cur }
func (m Money) Value() decimal.Decimal { return m.value }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) Equal(n Money) bool     { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) Add(n Money) Money      { return Money{value: m.value.Add(n.value), cur: m.cur} }
func (m Money) Mul(q int64) Money {
	return Money{value: m.value.Mul(decimal.NewFromInt(q)), cur: m.cur}
}
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }
