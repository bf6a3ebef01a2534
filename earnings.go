package tradebook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DefaultEarningsPath locates the rows of an earnings document.
const DefaultEarningsPath = "$.results[*]"

// withholdingTax is the rate withheld at the source from taxed distributions.
var withholdingTax = decimal.RequireFromString("0.15")

// EarningsFile returns the path of the canonical dividend feed of symbol in dir.
func EarningsFile(dir, symbol string) string {
	return filepath.Join(dir, "dividends-"+symbol+".jsonl")
}

// DecodeEarnings reads a JSONL dividend feed.
func DecodeEarnings(r io.Reader) ([]DividendEvent, error) {
	var events []DividendEvent
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue
		}
		var e DividendEvent
		if err := json.Unmarshal(lineBytes, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}

// EncodeEarnings writes events as a JSONL dividend feed.
func EncodeEarnings(w io.Writer, events []DividendEvent) error {
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// ReadEarnings reads the dividend feed of symbol in dir. A missing feed has no events.
func ReadEarnings(dir, symbol string) ([]DividendEvent, error) {
	filename := EarningsFile(dir, symbol)
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open dividend feed %q: %w", filename, err)
	}
	defer f.Close()
	events, err := DecodeEarnings(f)
	if err != nil {
		return nil, fmt.Errorf("format error in %q: %w", filename, err)
	}
	for i := range events {
		if events[i].Symbol == "" {
			events[i].Symbol = symbol
		}
	}
	return events, nil
}

// WriteEarnings replaces the dividend feed of symbol in dir.
func WriteEarnings(dir, symbol string, events []DividendEvent) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for dividend feed: %w", err)
	}
	var buf bytes.Buffer
	if err := EncodeEarnings(&buf, events); err != nil {
		return err
	}
	return os.WriteFile(EarningsFile(dir, symbol), buf.Bytes(), 0644)
}

// ParseEarningsDocument converts an earnings document, as exported by the
// dividend website, into dividend events of symbol.
//
// path is a JSONPath to the earning rows (DefaultEarningsPath if empty).
// Each row has a record date "ed" and a payment date "pd" (dd/mm/yyyy), a
// gross value per share "v" and a type "et". Rows given as an embedded JSON
// string are decoded too.
func ParseEarningsDocument(symbol string, data []byte, path string) ([]DividendEvent, error) {
	if path == "" {
		path = DefaultEarningsPath
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not decode earnings document: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing earnings document with %q: %w", path, err)
	}

	rows, err := earningRows(jval)
	if err != nil {
		return nil, err
	}
	events := make([]DividendEvent, 0, len(rows))
	var errs error
	for i, row := range rows {
		e, err := parseEarningRow(symbol, row)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("earning row %d: %w", i+1, err))
			continue
		}
		events = append(events, e)
	}
	return events, errs
}

// earningRows flattens what a JSONPath query returned into row objects.
func earningRows(jval any) ([]map[string]any, error) {
	switch v := jval.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case string:
		dec := json.NewDecoder(strings.NewReader(v))
		dec.UseNumber()
		var embedded any
		if err := dec.Decode(&embedded); err != nil {
			return nil, fmt.Errorf("could not decode embedded earnings: %w", err)
		}
		return earningRows(embedded)
	case []any:
		var rows []map[string]any
		for _, item := range v {
			r, err := earningRows(item)
			if err != nil {
				return nil, err
			}
			rows = append(rows, r...)
		}
		return rows, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected earnings value %T", jval)
	}
}

func parseEarningRow(symbol string, row map[string]any) (DividendEvent, error) {
	label, _ := row["et"].(string)
	t, err := ParseEarningType(label)
	if err != nil {
		return DividendEvent{}, err
	}
	ed, _ := row["ed"].(string)
	record, err := parseBrazilianDate(ed)
	if err != nil {
		return DividendEvent{}, err
	}
	pd, _ := row["pd"].(string)
	payment, err := parseBrazilianDate(pd)
	if err != nil {
		payment = Date{} // not announced yet
	}
	gross, err := jsonDecimal(row["v"])
	if err != nil {
		return DividendEvent{}, fmt.Errorf("invalid value per share: %w", err)
	}
	net := gross
	if t.Withheld() {
		net = gross.Mul(decimal.NewFromInt(1).Sub(withholdingTax))
	}
	return DividendEvent{
		Symbol:             symbol,
		RecordDate:         record,
		ExDate:             record.Add(1),
		PaymentDate:        payment,
		Type:               t,
		GrossValuePerShare: gross,
		ValuePerShare:      net,
	}, nil
}

// parseBrazilianDate parses a dd/mm/yyyy date.
func parseBrazilianDate(s string) (Date, error) {
	t, err := time.Parse("2/1/2006", strings.TrimSpace(s))
	if err != nil {
		return Date{}, &InvalidDateFormatError{Input: s, Layout: "DD/MM/YYYY", cause: err}
	}
	return NewDate(t.Date()), nil
}

func jsonDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", "."))
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
	}
}
