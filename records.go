package tradebook

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Names of the tables maintained by a Book.
const (
	FeesTable        = "fees"
	SpentValuesTable = "spent_values"
	portfolioPrefix  = "portfolio-"
)

// PortfolioTable returns the name of the ledger table of symbol.
func PortfolioTable(symbol string) string { return portfolioPrefix + symbol }

// symbolOf returns the symbol of a ledger table name.
func symbolOf(table string) (string, bool) {
	return strings.CutPrefix(table, portfolioPrefix)
}

// Row is a persisted table row. Rows sharing a key are replaced together.
type Row interface {
	Key() string // the tc_name identity.
	When() Date
}

// LedgerRecord is one operation in the ledger of a symbol.
type LedgerRecord struct {
	Date             Date            `json:"date"`
	Symbol           string          `json:"symbol"`
	Amount           int64           `json:"amount"`
	Price            decimal.Decimal `json:"price"`
	Value            decimal.Decimal `json:"value"`
	CostOfFees       decimal.Decimal `json:"cost_of_fees"`
	ValueWithoutFees decimal.Decimal `json:"value_without_fees"`
	PriceWithoutFees decimal.Decimal `json:"price_without_fees"`
	TCName           string          `json:"tc_name"`
}

// NewLedgerRecord converts an operation of tc into its ledger row.
func NewLedgerRecord(tc *TradeConfirmation, op Operation) LedgerRecord {
	return LedgerRecord{
		Date:             tc.Date,
		Symbol:           op.Symbol,
		Amount:           op.Amount,
		Price:            op.Price,
		Value:            op.Value,
		CostOfFees:       op.CostOfFees,
		ValueWithoutFees: op.ValueWithoutFees,
		PriceWithoutFees: op.PriceWithoutFees,
		TCName:           op.ID(tc.Name),
	}
}

func (r LedgerRecord) Key() string { return r.TCName }
func (r LedgerRecord) When() Date  { return r.Date }

// MarshalJSON writes the columns in ledger order, amounts rounded to cents.
func (r LedgerRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("symbol", r.Symbol)
	w.Append("amount", r.Amount)
	w.Cents("price", r.Price)
	w.Cents("value", r.Value)
	w.Cents("cost_of_fees", r.CostOfFees)
	w.Cents("value_without_fees", r.ValueWithoutFees)
	w.Cents("price_without_fees", r.PriceWithoutFees)
	w.Append("tc_name", r.TCName)
	return w.MarshalJSON()
}

// FeeRecord is one fee line of a trade confirmation.
type FeeRecord struct {
	Date   Date            `json:"date"`
	Broker string          `json:"broker"`
	Fee    string          `json:"fee"`
	Value  decimal.Decimal `json:"value"`
	TCName string          `json:"tc_name"`
}

func (r FeeRecord) Key() string { return r.TCName }
func (r FeeRecord) When() Date  { return r.Date }

func (r FeeRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Append("broker", r.Broker)
	w.Append("fee", r.Fee)
	w.Cents("value", r.Value)
	w.Append("tc_name", r.TCName)
	return w.MarshalJSON()
}

// NewFeeRecords returns one row per fee label of tc, in label order.
func NewFeeRecords(tc *TradeConfirmation) []FeeRecord {
	rows := make([]FeeRecord, 0, len(tc.Fees))
	for _, label := range tc.FeeLabels() {
		rows = append(rows, FeeRecord{
			Date:   tc.Date,
			Broker: tc.Broker,
			Fee:    label,
			Value:  tc.Fees[label],
			TCName: tc.Name,
		})
	}
	return rows
}

// SpentValueRecord summarizes the cash spent by a trade confirmation.
type SpentValueRecord struct {
	Date             Date            `json:"date"`
	OperationsValue  decimal.Decimal `json:"operations_value"`
	SettlementAmount decimal.Decimal `json:"settlement_amount"`
	TCName           string          `json:"tc_name"`
}

func (r SpentValueRecord) Key() string { return r.TCName }
func (r SpentValueRecord) When() Date  { return r.Date }

func (r SpentValueRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.Date)
	w.Cents("operations_value", r.OperationsValue)
	w.Cents("settlement_amount", r.SettlementAmount)
	w.Append("tc_name", r.TCName)
	return w.MarshalJSON()
}

// NewSpentValueRecord returns the settlement summary row of tc.
func NewSpentValueRecord(tc *TradeConfirmation) SpentValueRecord {
	return SpentValueRecord{
		Date:             tc.Date,
		OperationsValue:  tc.OperationsValue,
		SettlementAmount: tc.SettlementAmount,
		TCName:           tc.Name,
	}
}
