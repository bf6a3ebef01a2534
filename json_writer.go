package tradebook

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonObjectWriter builds a JSON object whose fields keep their insertion
// order, so that ledger lines stay diffable. Its zero value is ready to use.
type jsonObjectWriter struct {
	fields [][]byte // each one is `"key":value`
	err    error
}

// Append adds a field. The value is encoded with json.Marshal; the first
// encoding error is kept and reported by MarshalJSON.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return w
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	field := make([]byte, 0, len(k)+1+len(v))
	field = append(append(append(field, k...), ':'), v...)
	w.fields = append(w.fields, field)
	return w
}

// Cents appends a decimal rounded to 2 places, the precision of every
// persisted amount.
func (w *jsonObjectWriter) Cents(key string, value decimal.Decimal) *jsonObjectWriter {
	return w.Append(key, round2(value))
}

// MarshalJSON returns the object built so far.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	var b bytes.Buffer
	b.WriteByte('{')
	b.Write(bytes.Join(w.fields, []byte{','}))
	b.WriteByte('}')
	return b.Bytes(), nil
}
