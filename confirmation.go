package tradebook

import (
	"maps"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// Operation is one validated line item of a trade confirmation, enriched
// with its share of the confirmation fees.
//
// A positive Amount is a purchase, a negative one a sale. Value carries the
// same sign.
type Operation struct {
	Symbol           string
	Amount           int64
	Price            decimal.Decimal // price including its share of fees.
	Value            decimal.Decimal // value including its share of fees.
	CostOfFees       decimal.Decimal
	ValueWithoutFees decimal.Decimal
	PriceWithoutFees decimal.Decimal
	Counter          int // 1-based position within the confirmation.
}

// ID returns the ledger identity of the operation within the named confirmation.
func (op Operation) ID(confirmation string) string {
	return confirmation + "-" + strconv.Itoa(op.Counter)
}

// TradeConfirmation is a brokerage statement that passed validation.
// Only a Validator creates them.
type TradeConfirmation struct {
	Name             string
	Broker           string
	Date             Date
	Fees             map[string]decimal.Decimal
	OperationsValue  decimal.Decimal
	SettlementAmount decimal.Decimal
	Operations       []Operation
}

// FeesCost returns the sum of all fees.
func (tc *TradeConfirmation) FeesCost() decimal.Decimal {
	return feesCost(tc.Fees)
}

// FeeLabels returns the fee labels in alphabetical order.
func (tc *TradeConfirmation) FeeLabels() []string {
	return slices.Sorted(maps.Keys(tc.Fees))
}

func feesCost(fees map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range fees {
		total = total.Add(v)
	}
	return total
}

// Registry knows the brokers and companies a confirmation may refer to.
type Registry interface {
	HasBroker(id string) bool
	HasSymbol(symbol string) bool
}

// Validator turns Documents into TradeConfirmations.
// Its zero value validates arithmetic only.
type Validator struct {
	Registry Registry // optional master lists of brokers and companies.
}

// Validate checks the internal arithmetic of doc and allocates its fees to
// its operations. name identifies the confirmation in the ledger (usually
// its file name).
//
// Every failure is terminal and reports the conflicting numbers.
func (v Validator) Validate(name string, doc Document) (*TradeConfirmation, error) {
	on, err := ParseDate(doc.Date)
	if err != nil {
		return nil, err
	}

	if v.Registry != nil {
		if !v.Registry.HasBroker(doc.Broker) {
			return nil, &UnknownBrokerError{Broker: doc.Broker}
		}
		for _, op := range doc.Operations {
			if !v.Registry.HasSymbol(op.Symbol) {
				return nil, &UnknownSymbolError{Symbol: op.Symbol}
			}
		}
	}

	if len(doc.Operations) == 0 {
		return nil, &InvalidOperationError{Reason: "a trade confirmation needs at least one operation"}
	}
	for _, op := range doc.Operations {
		if op.Symbol == "" {
			return nil, &InvalidOperationError{Reason: "symbol is missing"}
		}
		if op.Amount == 0 {
			return nil, &InvalidOperationError{Symbol: op.Symbol, Reason: "amount must not be zero"}
		}
		if !op.Price.IsPositive() {
			return nil, &InvalidOperationError{Symbol: op.Symbol, Reason: "price must be positive, got " + op.Price.String()}
		}
	}

	fees := feesCost(doc.Fees)

	total := decimal.Zero
	for _, op := range doc.Operations {
		total = total.Add(op.Value)
	}
	if !equalCents(doc.OperationsValue, total) {
		return nil, &OperationsValueMismatchError{Declared: doc.OperationsValue, Computed: total}
	}

	for _, op := range doc.Operations {
		if !equalCents(op.Price.Mul(decimal.NewFromInt(op.Amount)), op.Value) {
			return nil, &OperationValueMismatchError{Symbol: op.Symbol, Price: op.Price, Amount: op.Amount, Value: op.Value}
		}
	}

	if !equalCents(fees.Add(doc.OperationsValue), doc.SettlementAmount) {
		return nil, &SettlementMismatchError{Settlement: doc.SettlementAmount, Fees: fees, Operations: doc.OperationsValue}
	}

	if doc.OperationsValue.IsZero() {
		// the allocation share is value / operations value.
		return nil, &InvalidOperationError{Reason: "fees cannot be allocated when the operations value is zero"}
	}

	tc := &TradeConfirmation{
		Name:             name,
		Broker:           doc.Broker,
		Date:             on,
		Fees:             maps.Clone(doc.Fees),
		OperationsValue:  doc.OperationsValue,
		SettlementAmount: doc.SettlementAmount,
		Operations:       allocateFees(doc.Operations, doc.OperationsValue, fees),
	}
	if tc.Fees == nil {
		tc.Fees = make(map[string]decimal.Decimal)
	}
	return tc, nil
}

// allocateFees distributes the fees cost proportionally to each operation's
// notional value. The amount is left untouched; price and value absorb the cost.
func allocateFees(ops []DocumentOperation, operationsValue, fees decimal.Decimal) []Operation {
	res := make([]Operation, 0, len(ops))
	for i, op := range ops {
		share := op.Value.Div(operationsValue)
		cost := fees.Mul(share)
		res = append(res, Operation{
			Symbol:           op.Symbol,
			Amount:           op.Amount,
			Price:            op.Price.Add(cost.Div(decimal.NewFromInt(op.Amount))),
			Value:            op.Value.Add(cost),
			CostOfFees:       cost,
			ValueWithoutFees: op.Value,
			PriceWithoutFees: op.Price,
			Counter:          i + 1,
		})
	}
	return res
}
