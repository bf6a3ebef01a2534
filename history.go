package tradebook

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// StoryTable returns the name of the position history table of symbol.
func StoryTable(symbol string) string { return "story-" + symbol }

// HistoryEntry is the position held in a symbol at the end of a day.
// Amount and Value are cumulative since the first operation.
type HistoryEntry struct {
	Date   Date            `json:"date"`
	Symbol string          `json:"symbol"`
	Amount int64           `json:"amount"`
	Value  decimal.Decimal `json:"value"`
	Price  decimal.Decimal `json:"price"` // running average price: Value / Amount.
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", e.Date)
	w.Append("symbol", e.Symbol)
	w.Append("amount", e.Amount)
	w.Cents("value", e.Value)
	w.Cents("price", e.Price)
	return w.MarshalJSON()
}

// PositionHistory rebuilds the day by day position of a symbol from its
// ledger. Operations of the same day are merged: their relative order is lost.
//
// The history is recomputed on every call. A day where the cumulative amount
// is zero has no average price and fails with a ZeroPositionDivisionError.
func PositionHistory(records []LedgerRecord) ([]HistoryEntry, error) {
	type day struct {
		amount int64
		value  decimal.Decimal
	}
	days := make(map[Date]*day)
	var dates []Date
	symbol := ""
	for _, r := range records {
		if symbol == "" {
			symbol = r.Symbol
		}
		d, ok := days[r.Date]
		if !ok {
			d = &day{value: decimal.Zero}
			days[r.Date] = d
			dates = append(dates, r.Date)
		}
		d.amount += r.Amount
		d.value = d.value.Add(r.Value)
	}
	slices.SortFunc(dates, Date.Compare)

	history := make([]HistoryEntry, 0, len(dates))
	var amount int64
	value := decimal.Zero
	for _, date := range dates {
		amount += days[date].amount
		value = value.Add(days[date].value)
		if amount == 0 {
			return nil, &ZeroPositionDivisionError{Symbol: symbol, Date: date}
		}
		history = append(history, HistoryEntry{
			Date:   date,
			Symbol: symbol,
			Amount: amount,
			Value:  value,
			Price:  value.Div(decimal.NewFromInt(amount)),
		})
	}
	return history, nil
}

// SnapshotBefore returns the latest entry of history strictly before on.
// history must be sorted by date.
//
// When no entry precedes on, it fails with a DividendPredatesHoldingError.
func SnapshotBefore(history []HistoryEntry, on Date) (HistoryEntry, error) {
	// leftmost index where on could be inserted keeping the order.
	i := sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(on) })
	if i == 0 {
		err := &DividendPredatesHoldingError{RecordDate: on}
		if len(history) > 0 {
			err.Symbol = history[0].Symbol
			err.FirstHolding = history[0].Date
		}
		return HistoryEntry{}, err
	}
	return history[i-1], nil
}
