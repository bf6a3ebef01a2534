package tradebook

import (
	"errors"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// ConsolidatedTable is the name of the consolidated portfolio table.
const ConsolidatedTable = "consolidated_portfolio"

// AnnualTable returns the name of the annual amounts table of symbol.
func AnnualTable(symbol string) string { return "annual_amounts-" + symbol }

// Position is the current holding of a symbol.
type Position struct {
	Symbol         string          `json:"symbol"`
	Amount         int64           `json:"amount"`
	AvgPrice       decimal.Decimal `json:"avg_price"`
	Investment     decimal.Decimal `json:"investment"`
	PercentOfTotal Percent         `json:"percent_of_total"`
}

func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", p.Symbol)
	w.Append("amount", p.Amount)
	w.Cents("avg_price", p.AvgPrice)
	w.Cents("investment", p.Investment)
	w.Append("percent_of_total", p.PercentOfTotal)
	return w.MarshalJSON()
}

// Consolidate sums every ledger into a Position and computes each position's
// share of the total investment.
//
// Positions are sorted by decreasing share, then decreasing investment. A
// symbol whose amounts sum to zero has no average price: it is reported as a
// ZeroPositionDivisionError and left out, the other symbols are still returned.
func Consolidate(ledgers map[string][]LedgerRecord) ([]Position, error) {
	var errs error
	positions := make([]Position, 0, len(ledgers))
	total := decimal.Zero
	for _, symbol := range slices.Sorted(maps.Keys(ledgers)) {
		records := ledgers[symbol]
		if len(records) == 0 {
			continue
		}
		p := Position{Symbol: symbol, Investment: decimal.Zero}
		for _, r := range records {
			p.Amount += r.Amount
			p.Investment = p.Investment.Add(r.Value)
		}
		if p.Amount == 0 {
			errs = errors.Join(errs, &ZeroPositionDivisionError{Symbol: symbol})
			continue
		}
		p.AvgPrice = p.Investment.Div(decimal.NewFromInt(p.Amount))
		total = total.Add(p.Investment)
		positions = append(positions, p)
	}

	for i := range positions {
		positions[i].PercentOfTotal = PercentOf(positions[i].Investment, total)
	}
	slices.SortStableFunc(positions, func(a, b Position) int {
		if c := b.PercentOfTotal.Cmp(a.PercentOfTotal); c != 0 {
			return c
		}
		return b.Investment.Cmp(a.Investment)
	})
	return positions, errs
}

// AnnualAmount is the yearly investment in a symbol.
type AnnualAmount struct {
	Year        int             `json:"year"`
	Symbol      string          `json:"symbol"`
	Amount      int64           `json:"amount"`
	Investment  decimal.Decimal `json:"investment"`
	Accumulated decimal.Decimal `json:"accumulated"` // running investment up to Year.
}

func (a AnnualAmount) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", a.Year)
	w.Append("symbol", a.Symbol)
	w.Append("amount", a.Amount)
	w.Cents("investment", a.Investment)
	w.Cents("accumulated", a.Accumulated)
	return w.MarshalJSON()
}

// AnnualAmounts returns the yearly amounts of every symbol, sorted by symbol
// then year.
func AnnualAmounts(ledgers map[string][]LedgerRecord) []AnnualAmount {
	var res []AnnualAmount
	for _, symbol := range slices.Sorted(maps.Keys(ledgers)) {
		res = append(res, SymbolAnnualAmounts(symbol, ledgers[symbol])...)
	}
	return res
}

// SymbolAnnualAmounts sums the ledger of symbol per year. The first row is a
// zero row for the year before the first operation, so that the accumulation
// starts from zero.
func SymbolAnnualAmounts(symbol string, records []LedgerRecord) []AnnualAmount {
	if len(records) == 0 {
		return nil
	}
	years := make(map[int]*AnnualAmount)
	for _, r := range records {
		y := r.Date.Year()
		a, ok := years[y]
		if !ok {
			a = &AnnualAmount{Year: y, Symbol: symbol, Investment: decimal.Zero}
			years[y] = a
		}
		a.Amount += r.Amount
		a.Investment = a.Investment.Add(r.Value)
	}

	sorted := slices.Sorted(maps.Keys(years))
	res := make([]AnnualAmount, 0, len(sorted)+1)
	res = append(res, AnnualAmount{
		Year:        sorted[0] - 1,
		Symbol:      symbol,
		Investment:  decimal.Zero,
		Accumulated: decimal.Zero,
	})
	acc := decimal.Zero
	for _, y := range sorted {
		a := *years[y]
		acc = acc.Add(a.Investment)
		a.Accumulated = acc
		res = append(res, a)
	}
	return res
}
