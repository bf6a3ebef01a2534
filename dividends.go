package tradebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DividendsTable returns the name of the dividend story table of symbol.
func DividendsTable(symbol string) string { return "dividends-" + symbol }

// EarningType is the kind of a distribution paid to shareholders.
type EarningType int

const (
	Dividend EarningType = iota + 1
	// InterestOnCapital is a distribution taxed at the source (JCP).
	InterestOnCapital
	// TaxedIncome is a taxed distribution of income ("Rend. Tributado").
	TaxedIncome
	Amortization
)

var earningTypes = []struct {
	t      EarningType
	name   string
	labels []string // as found in earnings documents.
}{
	{Dividend, "dividend", []string{"Dividendo"}},
	{InterestOnCapital, "interest-on-capital", []string{"JCP"}},
	{TaxedIncome, "taxed-income", []string{"Rend. Tributado"}},
	{Amortization, "amortization", []string{"Amortização", "Amortizacao"}},
}

func (t EarningType) String() string {
	for _, e := range earningTypes {
		if e.t == t {
			return e.name
		}
	}
	return "unknown"
}

// ParseEarningType accepts both canonical names and source labels.
func ParseEarningType(s string) (EarningType, error) {
	s = strings.TrimSpace(s)
	for _, e := range earningTypes {
		if strings.EqualFold(s, e.name) {
			return e.t, nil
		}
		for _, l := range e.labels {
			if strings.EqualFold(s, l) {
				return e.t, nil
			}
		}
	}
	return 0, &UnknownEarningTypeError{Label: s}
}

// Withheld reports whether the distribution is paid net of the withholding tax.
func (t EarningType) Withheld() bool { return t == InterestOnCapital || t == TaxedIncome }

func (t EarningType) MarshalJSON() ([]byte, error) {
	if t.String() == "unknown" {
		return nil, &UnknownEarningTypeError{Label: fmt.Sprint(int(t))}
	}
	return json.Marshal(t.String())
}

func (t *EarningType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseEarningType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DividendEvent is a distribution announced for a symbol.
type DividendEvent struct {
	Symbol             string          `json:"symbol"`
	RecordDate         Date            `json:"record_date"` // last day of ownership entitling to the payment.
	ExDate             Date            `json:"ex_date"`
	PaymentDate        Date            `json:"payment_date"` // zero when not announced.
	Type               EarningType     `json:"type"`
	GrossValuePerShare decimal.Decimal `json:"gross_value_per_share"`
	ValuePerShare      decimal.Decimal `json:"value_per_share"` // net of withholding.
}

func (e DividendEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", e.Symbol)
	w.Append("record_date", e.RecordDate)
	w.Append("ex_date", e.ExDate)
	w.Append("payment_date", e.PaymentDate)
	w.Append("type", e.Type)
	w.Append("gross_value_per_share", e.GrossValuePerShare)
	w.Append("value_per_share", e.ValuePerShare)
	return w.MarshalJSON()
}

// DividendAttribution is a dividend event joined with the position held
// just before its record date.
type DividendAttribution struct {
	Symbol           string          `json:"symbol"`
	RecordDate       Date            `json:"record_date"`
	PaymentDate      Date            `json:"payment_date"`
	Type             EarningType     `json:"type"`
	DividendPerShare decimal.Decimal `json:"dividend_per_share"`
	Amount           int64           `json:"amount"`
	Investment       decimal.Decimal `json:"investment"`
	Price            decimal.Decimal `json:"price"`
	DividendReceived decimal.Decimal `json:"dividend_received"`
	SnapshotDate     Date            `json:"-"`
}

func (a DividendAttribution) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", a.Symbol)
	w.Append("record_date", a.RecordDate)
	w.Append("payment_date", a.PaymentDate)
	w.Append("type", a.Type)
	w.Append("dividend_per_share", a.DividendPerShare)
	w.Append("amount", a.Amount)
	w.Cents("investment", a.Investment)
	w.Cents("price", a.Price)
	w.Cents("dividend_received", a.DividendReceived)
	return w.MarshalJSON()
}

// Reconcile attributes each dividend event of symbol to the position held at
// the latest history date strictly before the event's record date.
//
// Events recorded before the first history date are ignored: nothing was held
// yet. An event recorded on the first history date has no prior snapshot and
// is reported as a DividendPredatesHoldingError, the other events are still
// attributed. Events of other symbols are ignored.
//
// The result is sorted by payment date then record date, most recent first.
func Reconcile(symbol string, history []HistoryEntry, events []DividendEvent) ([]DividendAttribution, error) {
	if len(history) == 0 {
		return nil, nil
	}
	first := history[0].Date

	kept := make([]DividendEvent, 0, len(events))
	for _, e := range events {
		if e.Symbol != "" && e.Symbol != symbol {
			continue
		}
		if e.RecordDate.Before(first) {
			continue
		}
		kept = append(kept, e)
	}
	slices.SortStableFunc(kept, func(a, b DividendEvent) int { return a.RecordDate.Compare(b.RecordDate) })

	var errs error
	res := make([]DividendAttribution, 0, len(kept))
	for _, e := range kept {
		snap, err := SnapshotBefore(history, e.RecordDate)
		if err != nil {
			var predates *DividendPredatesHoldingError
			if errors.As(err, &predates) {
				predates.Symbol = symbol
			}
			errs = errors.Join(errs, err)
			continue
		}
		res = append(res, DividendAttribution{
			Symbol:           symbol,
			RecordDate:       e.RecordDate,
			PaymentDate:      e.PaymentDate,
			Type:             e.Type,
			DividendPerShare: e.ValuePerShare,
			Amount:           snap.Amount,
			Investment:       snap.Value,
			Price:            snap.Price,
			DividendReceived: e.ValuePerShare.Mul(decimal.NewFromInt(snap.Amount)),
			SnapshotDate:     snap.Date,
		})
	}

	slices.SortStableFunc(res, func(a, b DividendAttribution) int {
		if c := b.PaymentDate.Compare(a.PaymentDate); c != 0 {
			return c
		}
		return b.RecordDate.Compare(a.RecordDate)
	})
	return res, errs
}

// TotalReceived sums the dividends received.
func TotalReceived(attributions []DividendAttribution) decimal.Decimal {
	total := decimal.Zero
	for _, a := range attributions {
		total = total.Add(a.DividendReceived)
	}
	return total
}
