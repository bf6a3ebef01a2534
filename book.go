package tradebook

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Book is the set of ledgers of a portfolio, persisted in a Store.
//
// A Book serialises its own writes. Several processes writing the same
// Store must be coordinated by the caller.
type Book struct {
	mu    sync.Mutex
	store Store
	log   zerolog.Logger
}

// NewBook returns a Book over store.
func NewBook(store Store, log zerolog.Logger) *Book {
	return &Book{
		store: store,
		log:   log.With().Str("component", "book").Logger(),
	}
}

// Store returns the underlying store.
func (b *Book) Store() Store { return b.store }

// Record merges a validated confirmation into the fees, spent_values and
// per-symbol ledgers. Recording the same confirmation again replaces its rows.
func (b *Book) Record(ctx context.Context, tc *TradeConfirmation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(ctx, b.log, tc)
}

func (b *Book) record(ctx context.Context, log zerolog.Logger, tc *TradeConfirmation) error {
	log = log.With().Str("tc_name", tc.Name).Stringer("date", tc.Date).Logger()

	n, err := Upsert(ctx, b.store, FeesTable, tc.Name, NewFeeRecords(tc)...)
	if err != nil {
		return fmt.Errorf("could not record fees of %q: %w", tc.Name, err)
	}
	logUpsert(log, FeesTable, n)

	n, err = Upsert(ctx, b.store, SpentValuesTable, tc.Name, NewSpentValueRecord(tc))
	if err != nil {
		return fmt.Errorf("could not record spent values of %q: %w", tc.Name, err)
	}
	logUpsert(log, SpentValuesTable, n)

	return b.recordOperations(ctx, log, tc)
}

// recordOperations replaces the ledger rows of tc in every symbol ledger.
// Rows of operations tc no longer has, on any symbol, are removed.
func (b *Book) recordOperations(ctx context.Context, log zerolog.Logger, tc *TradeConfirmation) error {
	bySymbol := make(map[string][]LedgerRecord)
	for _, op := range tc.Operations {
		bySymbol[op.Symbol] = append(bySymbol[op.Symbol], NewLedgerRecord(tc, op))
	}

	tables, err := b.store.Tables(ctx, portfolioPrefix)
	if err != nil {
		return fmt.Errorf("could not list ledgers: %w", err)
	}
	for symbol := range bySymbol {
		tables = append(tables, PortfolioTable(symbol))
	}
	slices.Sort(tables)
	tables = slices.Compact(tables)

	for _, table := range tables {
		symbol, _ := symbolOf(table)
		rows := bySymbol[symbol]

		t, err := LoadTable[LedgerRecord](ctx, b.store, table)
		if err != nil {
			return fmt.Errorf("could not record operations of %q: %w", tc.Name, err)
		}
		removed := t.DeleteFunc(func(key string) bool { return isOperationOf(key, tc.Name) })
		if removed == 0 && len(rows) == 0 {
			continue
		}
		for _, r := range rows {
			t.Upsert(r.Key(), r)
		}
		if err := WriteRows(ctx, b.store, table, t.Rows()); err != nil {
			return fmt.Errorf("could not record operations of %q: %w", tc.Name, err)
		}
		logUpsert(log, table, removed)
	}
	return nil
}

// isOperationOf reports whether key is an operation id of the confirmation
// named name, that is name, a dash and a counter.
func isOperationOf(key, name string) bool {
	counter, ok := strings.CutPrefix(key, name+"-")
	if !ok || counter == "" {
		return false
	}
	for _, c := range counter {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func logUpsert(log zerolog.Logger, table string, replaced int) {
	action := "append"
	if replaced > 0 {
		action = "replace"
	}
	log.Debug().Str("table", table).Int("replaced", replaced).Msg(action)
}

// Ingest records confirmations in ascending date order. Confirmations of the
// same date keep their relative order. A failure stops the run; the
// confirmations recorded before it stay recorded.
func (b *Book) Ingest(ctx context.Context, tcs []*TradeConfirmation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sorted := slices.Clone(tcs)
	slices.SortStableFunc(sorted, func(x, y *TradeConfirmation) int { return x.Date.Compare(y.Date) })

	log := b.log.With().Str("run", uuid.NewString()).Logger()
	log.Info().Int("confirmations", len(sorted)).Msg("ingest started")
	for _, tc := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.record(ctx, log, tc); err != nil {
			log.Error().Err(err).Str("tc_name", tc.Name).Msg("ingest failed")
			return err
		}
		log.Info().Str("tc_name", tc.Name).Int("operations", len(tc.Operations)).Msg("recorded")
	}
	log.Info().Msg("ingest done")
	return nil
}

// Symbols returns the symbols that have a ledger, in alphabetical order.
func (b *Book) Symbols(ctx context.Context) ([]string, error) {
	tables, err := b.store.Tables(ctx, portfolioPrefix)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(tables))
	for _, t := range tables {
		if s, ok := symbolOf(t); ok && s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols, nil
}

// SymbolLedger returns the ledger of symbol sorted by date and tc_name.
func (b *Book) SymbolLedger(ctx context.Context, symbol string) ([]LedgerRecord, error) {
	return ReadRows[LedgerRecord](ctx, b.store, PortfolioTable(symbol))
}

// SymbolLedgers returns the ledgers of every symbol. A ledger that cannot be
// read is left out of the map and its error joined to the returned one; the
// map is nil only when the symbols themselves cannot be listed.
func (b *Book) SymbolLedgers(ctx context.Context) (map[string][]LedgerRecord, error) {
	symbols, err := b.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	var errs error
	ledgers := make(map[string][]LedgerRecord, len(symbols))
	for _, s := range symbols {
		records, err := b.SymbolLedger(ctx, s)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("ledger of %s: %w", s, err))
			continue
		}
		ledgers[s] = records
	}
	return ledgers, errs
}

// Fees returns the fees table.
func (b *Book) Fees(ctx context.Context) ([]FeeRecord, error) {
	return ReadRows[FeeRecord](ctx, b.store, FeesTable)
}

// SpentValues returns the spent_values table.
func (b *Book) SpentValues(ctx context.Context) ([]SpentValueRecord, error) {
	return ReadRows[SpentValueRecord](ctx, b.store, SpentValuesTable)
}
