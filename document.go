package tradebook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// Document is a trade confirmation as written by the user, before validation.
//
//	{
//	  "broker": "xp",
//	  "date": "2021-03-04",
//	  "operations_value": 1000.00,
//	  "settlement_amount": 1010.00,
//	  "fees": {"brokerage": 10.00},
//	  "operations": [{"symbol": "ABC", "amount": 100, "price": 10.00, "value": 1000.00}]
//	}
type Document struct {
	Broker           string                     `json:"broker"`
	Date             string                     `json:"date"`
	OperationsValue  decimal.Decimal            `json:"operations_value"`
	SettlementAmount decimal.Decimal            `json:"settlement_amount"`
	Fees             map[string]decimal.Decimal `json:"fees"`
	Operations       []DocumentOperation        `json:"operations"`
}

// DocumentOperation is one line item of a Document.
type DocumentOperation struct {
	Symbol string          `json:"symbol"`
	Amount int64           `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// DecodeDocument reads a single JSON trade confirmation. Unknown keys, such
// as notes kept by the user, are ignored.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("could not decode trade confirmation: %w", err)
	}
	return doc, nil
}

// ReadDocument opens and decodes the trade confirmation file at path.
func ReadDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("could not open trade confirmation %q: %w", path, err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
