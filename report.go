package tradebook

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// DividendFeed returns the dividend events announced for a symbol.
type DividendFeed func(symbol string) ([]DividendEvent, error)

// DirFeed reads the dividend feeds stored in dir.
func DirFeed(dir string) DividendFeed {
	return func(symbol string) ([]DividendEvent, error) { return ReadEarnings(dir, symbol) }
}

// SymbolReport gathers everything derived from the ledger of one symbol.
type SymbolReport struct {
	Symbol    string
	History   []HistoryEntry
	Annual    []AnnualAmount
	Dividends []DividendAttribution
}

// Report is the state of the whole book.
type Report struct {
	Positions []Position
	Symbols   []*SymbolReport // in alphabetical order.
	// Problems lists the symbols or events that could not be processed.
	// They never prevent the rest of the report.
	Problems []error
}

// Symbol returns the report of symbol, or nil.
func (r *Report) Symbol(symbol string) *SymbolReport {
	for _, s := range r.Symbols {
		if s.Symbol == symbol {
			return s
		}
	}
	return nil
}

// Annual returns the annual amounts of every symbol.
func (r *Report) Annual() []AnnualAmount {
	var res []AnnualAmount
	for _, s := range r.Symbols {
		res = append(res, s.Annual...)
	}
	return res
}

// TotalInvestment sums the investment of all positions.
func (r *Report) TotalInvestment() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Positions {
		total = total.Add(p.Investment)
	}
	return total
}

// TotalDividends sums the dividends received on every symbol.
func (r *Report) TotalDividends() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Symbols {
		total = total.Add(TotalReceived(s.Dividends))
	}
	return total
}

func (r *Report) addProblem(err error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			r.addProblem(e)
		}
		return
	}
	r.Problems = append(r.Problems, err)
}

// BuildReport derives positions, annual amounts, position histories and
// dividend stories from the book. feed may be nil when no dividend data is
// available.
//
// A symbol that cannot be processed is recorded in Report.Problems; only a
// failure to read the book itself is returned as an error.
func BuildReport(ctx context.Context, book *Book, feed DividendFeed) (*Report, error) {
	ledgers, err := book.SymbolLedgers(ctx)
	if ledgers == nil {
		return nil, fmt.Errorf("could not read ledgers: %w", err)
	}

	r := &Report{}
	r.addProblem(err) // unreadable ledgers are missing from ledgers.
	r.Positions, err = Consolidate(ledgers)
	r.addProblem(err)

	for _, symbol := range slices.Sorted(maps.Keys(ledgers)) {
		records := ledgers[symbol]
		s := &SymbolReport{
			Symbol: symbol,
			Annual: SymbolAnnualAmounts(symbol, records),
		}
		r.Symbols = append(r.Symbols, s)

		s.History, err = PositionHistory(records)
		if err != nil {
			r.addProblem(err)
			continue
		}
		if feed == nil {
			continue
		}
		events, err := feed(symbol)
		if err != nil {
			r.addProblem(fmt.Errorf("dividends of %s: %w", symbol, err))
			continue
		}
		s.Dividends, err = Reconcile(symbol, s.History, events)
		r.addProblem(err)
	}
	return r, nil
}

// SaveReport persists the derived tables of r: the consolidated portfolio
// and, per symbol, its annual amounts, position history and dividend story.
func SaveReport(ctx context.Context, store Store, r *Report) error {
	if err := WriteRows(ctx, store, ConsolidatedTable, r.Positions); err != nil {
		return err
	}
	var errs error
	for _, s := range r.Symbols {
		errs = errors.Join(errs,
			WriteRows(ctx, store, AnnualTable(s.Symbol), s.Annual),
			WriteRows(ctx, store, StoryTable(s.Symbol), s.History),
			WriteRows(ctx, store, DividendsTable(s.Symbol), s.Dividends),
		)
	}
	return errs
}
