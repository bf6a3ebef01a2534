package tradebook

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every concrete error below unwraps to one of them so callers
// can test with errors.Is and still recover the numbers with errors.As.
var (
	ErrInvalidDateFormat       = errors.New("invalid date format")
	ErrOperationsValueMismatch = errors.New("operations value mismatch")
	ErrOperationValueMismatch  = errors.New("operation value mismatch")
	ErrSettlementMismatch      = errors.New("settlement mismatch")
	ErrUnknownEarningType      = errors.New("unknown earning type")
	ErrDividendPredatesHolding = errors.New("dividend predates holding")
	ErrZeroPositionDivision    = errors.New("zero position division")
	ErrInvalidOperation        = errors.New("invalid operation")
	ErrUnknownBroker           = errors.New("unknown broker")
	ErrUnknownSymbol           = errors.New("unknown symbol")
)

// cents formats a decimal at currency-cent precision.
func cents(d decimal.Decimal) string { return d.StringFixed(2) }

type InvalidDateFormatError struct {
	Input  string
	Layout string // expected layout, YYYY-MM-DD when empty.
	cause  error
}

func (e *InvalidDateFormatError) Error() string {
	layout := e.Layout
	if layout == "" {
		layout = "YYYY-MM-DD"
	}
	return fmt.Sprintf("the date %q must respect the format %s", e.Input, layout)
}
func (e *InvalidDateFormatError) Unwrap() error { return ErrInvalidDateFormat }

// OperationsValueMismatchError reports a declared operations value that does
// not match the sum of the operations.
type OperationsValueMismatchError struct {
	Declared decimal.Decimal
	Computed decimal.Decimal
}

func (e *OperationsValueMismatchError) Error() string {
	return fmt.Sprintf("the operations value is not matching (%s != %s): verify that no operation is missing and the values are right",
		cents(e.Declared), cents(e.Computed))
}
func (e *OperationsValueMismatchError) Unwrap() error { return ErrOperationsValueMismatch }

// OperationValueMismatchError reports an operation whose value is not price × amount.
type OperationValueMismatchError struct {
	Symbol string
	Price  decimal.Decimal
	Amount int64
	Value  decimal.Decimal
}

func (e *OperationValueMismatchError) Error() string {
	return fmt.Sprintf("the operation value of %s is not matching with the amount and price (%s * %d != %s)",
		e.Symbol, e.Price.String(), e.Amount, cents(e.Value))
}
func (e *OperationValueMismatchError) Unwrap() error { return ErrOperationValueMismatch }

// SettlementMismatchError reports a settlement amount that is not fees + operations.
type SettlementMismatchError struct {
	Settlement decimal.Decimal
	Fees       decimal.Decimal
	Operations decimal.Decimal
}

func (e *SettlementMismatchError) Error() string {
	return fmt.Sprintf("the settlement amount does not match with the fees cost and the operations value (%s != %s + %s)",
		cents(e.Settlement), cents(e.Fees), cents(e.Operations))
}
func (e *SettlementMismatchError) Unwrap() error { return ErrSettlementMismatch }

type UnknownEarningTypeError struct {
	Label string
}

func (e *UnknownEarningTypeError) Error() string {
	return fmt.Sprintf("earning type %q is not defined", e.Label)
}
func (e *UnknownEarningTypeError) Unwrap() error { return ErrUnknownEarningType }

// DividendPredatesHoldingError reports a dividend whose record date is not
// strictly after the first day the symbol was held.
type DividendPredatesHoldingError struct {
	Symbol       string
	RecordDate   Date
	FirstHolding Date
}

func (e *DividendPredatesHoldingError) Error() string {
	return fmt.Sprintf("dividend of %s with record date %s has no holding strictly before it (first holding on %s)",
		e.Symbol, e.RecordDate, e.FirstHolding)
}
func (e *DividendPredatesHoldingError) Unwrap() error { return ErrDividendPredatesHolding }

// ZeroPositionDivisionError reports an average price computed over a zero position.
// Date is zero when the whole ledger sums to zero shares.
type ZeroPositionDivisionError struct {
	Symbol string
	Date   Date
}

func (e *ZeroPositionDivisionError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("cannot compute the average price of %s: total amount is zero", e.Symbol)
	}
	return fmt.Sprintf("cannot compute the average price of %s on %s: cumulative amount is zero", e.Symbol, e.Date)
}
func (e *ZeroPositionDivisionError) Unwrap() error { return ErrZeroPositionDivision }

type InvalidOperationError struct {
	Symbol string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	if e.Symbol == "" {
		return "invalid operation: " + e.Reason
	}
	return fmt.Sprintf("invalid operation on %s: %s", e.Symbol, e.Reason)
}
func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

type UnknownBrokerError struct {
	Broker string
}

func (e *UnknownBrokerError) Error() string {
	return fmt.Sprintf("the broker %q does not exist in the brokers list", e.Broker)
}
func (e *UnknownBrokerError) Unwrap() error { return ErrUnknownBroker }

type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("the company %q does not exist in the companies list", e.Symbol)
}
func (e *UnknownSymbolError) Unwrap() error { return ErrUnknownSymbol }
