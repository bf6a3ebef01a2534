package tradebook

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	return NewBook(NewDirStore(t.TempDir()), zerolog.Nop())
}

func mustValidate(t *testing.T, name string, doc Document) *TradeConfirmation {
	t.Helper()
	tc, err := Validator{}.Validate(name, doc)
	require.NoError(t, err)
	return tc
}

func TestBook_Record(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)
	tc := mustValidate(t, "2022-11-21", multiOps())

	require.NoError(t, book.Record(ctx, tc))

	symbols, err := book.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "DEF", "GHI"}, symbols)

	fees, err := book.Fees(ctx)
	require.NoError(t, err)
	require.Len(t, fees, 5)
	for _, f := range fees {
		assert.Equal(t, "2022-11-21", f.TCName)
		assert.Equal(t, "xp", f.Broker)
	}

	spent, err := book.SpentValues(ctx)
	require.NoError(t, err)
	require.Len(t, spent, 1)
	assert.True(t, dec("1736.12").Equal(spent[0].SettlementAmount))

	ghi, err := book.SymbolLedger(ctx, "GHI")
	require.NoError(t, err)
	require.Len(t, ghi, 1)
	assert.Equal(t, "2022-11-21-3", ghi[0].TCName)
	assert.Equal(t, int64(-10), ghi[0].Amount)
}

func TestBook_RecordTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)
	tc := mustValidate(t, "tc", multiOps())

	require.NoError(t, book.Record(ctx, tc))
	first, err := book.SymbolLedgers(ctx)
	require.NoError(t, err)
	fees, err := book.Fees(ctx)
	require.NoError(t, err)

	require.NoError(t, book.Record(ctx, tc))
	second, err := book.SymbolLedgers(ctx)
	require.NoError(t, err)
	feesAgain, err := book.Fees(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fees, feesAgain)
}

func TestBook_RecordEditedConfirmation(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	two := singleBuy()
	two.OperationsValue = dec("2000")
	two.SettlementAmount = dec("2010")
	two.Operations = append(two.Operations, two.Operations[0])
	require.NoError(t, book.Record(ctx, mustValidate(t, "tc1", two)))
	other := singleBuy()
	require.NoError(t, book.Record(ctx, mustValidate(t, "tc1-2", other)))

	abc, err := book.SymbolLedger(ctx, "ABC")
	require.NoError(t, err)
	require.Len(t, abc, 3)

	// tc1 is corrected: a single operation, and it was on DEF.
	one := singleBuy()
	one.Operations[0].Symbol = "DEF"
	require.NoError(t, book.Record(ctx, mustValidate(t, "tc1", one)))

	abc, err = book.SymbolLedger(ctx, "ABC")
	require.NoError(t, err)
	require.Len(t, abc, 1, "only the other confirmation is left on ABC")
	assert.Equal(t, "tc1-2-1", abc[0].TCName)

	def, err := book.SymbolLedger(ctx, "DEF")
	require.NoError(t, err)
	require.Len(t, def, 1)
	assert.Equal(t, "tc1-1", def[0].TCName)
	assert.Equal(t, int64(100), def[0].Amount)
}

func TestIsOperationOf(t *testing.T) {
	tests := []struct {
		key, name string
		want      bool
	}{
		{"tc1-1", "tc1", true},
		{"tc1-12", "tc1", true},
		{"tc1-2-1", "tc1", false},
		{"tc1-", "tc1", false},
		{"tc1", "tc1", false},
		{"tc10-1", "tc1", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isOperationOf(tt.key, tt.name); got != tt.want {
				t.Errorf("isOperationOf(%q, %q) = %v, want %v", tt.key, tt.name, got, tt.want)
			}
		})
	}
}

func TestBook_IngestSortsByDate(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	late := singleBuy()
	late.Date = "2021-06-01"
	early := singleBuy()
	early.Date = "2021-01-01"
	sameDay := singleBuy()
	sameDay.Date = "2021-06-01"

	err := book.Ingest(ctx, []*TradeConfirmation{
		mustValidate(t, "z-late", late),
		mustValidate(t, "b-early", early),
		mustValidate(t, "a-same-day", sameDay),
	})
	require.NoError(t, err)

	ledger, err := book.SymbolLedger(ctx, "ABC")
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "b-early-1", ledger[0].TCName)
	// same date rows are ordered by tc_name.
	assert.Equal(t, "a-same-day-1", ledger[1].TCName)
	assert.Equal(t, "z-late-1", ledger[2].TCName)

	spent, err := book.SpentValues(ctx)
	require.NoError(t, err)
	require.Len(t, spent, 3)
}
