package tradebook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a share of a total, expressed in percent and rounded to 2 decimals.
type Percent struct {
	value decimal.Decimal
}

// PercentOf returns part / total × 100 rounded to 2 decimals. A zero total gives 0%.
func PercentOf(part, total decimal.Decimal) Percent {
	if total.IsZero() {
		return Percent{}
	}
	return Percent{value: round2(part.Div(total).Mul(decimal.NewFromInt(100)))}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) Cmp(q Percent) int        { return p.value.Cmp(q.value) }

func (p Percent) String() string {
	return fmt.Sprintf("%s%%", p.value.StringFixed(2))
}

func (p Percent) MarshalJSON() ([]byte, error) { return p.value.MarshalJSON() }
func (p *Percent) UnmarshalJSON(b []byte) error {
	return p.value.UnmarshalJSON(b)
}
