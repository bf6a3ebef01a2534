package tradebook

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

// Intake is a planned purchase.
type Intake struct {
	Symbol string
	Shares int64
	Price  decimal.Decimal // current price per share.
}

// IntakePreview shows how a position changes after the planned intakes.
type IntakePreview struct {
	Symbol        string
	AvgPrice      decimal.Decimal
	Investment    decimal.Decimal
	Percent       Percent
	Total         decimal.Decimal // cost of the intake.
	NewAvgPrice   decimal.Decimal
	NewInvestment decimal.Decimal
	NewPercent    Percent
}

// PreviewIntake applies intakes to positions. Symbols without a position are
// previewed as new positions. Amounts are rounded to cents like the rest of
// the portfolio.
func PreviewIntake(positions []Position, intakes []Intake) ([]IntakePreview, error) {
	type state struct {
		position Position
		shares   int64
		total    decimal.Decimal
	}
	var order []string
	states := make(map[string]*state)
	for _, p := range positions {
		states[p.Symbol] = &state{position: p, total: decimal.Zero}
		order = append(order, p.Symbol)
	}
	for _, in := range intakes {
		s, ok := states[in.Symbol]
		if !ok {
			s = &state{position: Position{Symbol: in.Symbol, Investment: decimal.Zero, AvgPrice: decimal.Zero}, total: decimal.Zero}
			states[in.Symbol] = s
			order = append(order, in.Symbol)
		}
		s.shares += in.Shares
		s.total = s.total.Add(in.Price.Mul(decimal.NewFromInt(in.Shares)))
	}

	oldTotal, newTotal := decimal.Zero, decimal.Zero
	for _, s := range states {
		oldTotal = oldTotal.Add(s.position.Investment)
		newTotal = newTotal.Add(s.total)
	}

	var errs error
	res := make([]IntakePreview, 0, len(order))
	for _, symbol := range order {
		s := states[symbol]
		newInvestment := round2(s.position.Investment.Add(s.total))
		amount := s.position.Amount + s.shares
		if amount == 0 {
			errs = errors.Join(errs, &ZeroPositionDivisionError{Symbol: symbol})
			continue
		}
		res = append(res, IntakePreview{
			Symbol:        symbol,
			AvgPrice:      round2(s.position.AvgPrice),
			Investment:    round2(s.position.Investment),
			Percent:       s.position.PercentOfTotal,
			Total:         round2(s.total),
			NewAvgPrice:   round2(newInvestment.Div(decimal.NewFromInt(amount))),
			NewInvestment: newInvestment,
			NewPercent:    PercentOf(newInvestment, oldTotal.Add(newTotal)),
		})
	}
	slices.SortStableFunc(res, func(a, b IntakePreview) int { return b.NewPercent.Cmp(a.NewPercent) })
	return res, errs
}
