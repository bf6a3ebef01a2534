package tradebook

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerRow(date, tcName string, amount int64, value string) LedgerRecord {
	return LedgerRecord{
		Date:   MustParse(date),
		Symbol: "ABC",
		Amount: amount,
		Price:  dec(value).Div(D(amount)),
		Value:  dec(value),
		TCName: tcName,
	}
}

func TestTable_UpsertReplaces(t *testing.T) {
	table := NewTable(
		ledgerRow("2021-01-02", "b-1", 10, "100"),
		ledgerRow("2021-01-01", "a-1", 10, "100"),
	)
	assert.Equal(t, 0, table.Upsert("c-1", ledgerRow("2021-01-01", "c-1", 5, "50")))
	assert.Equal(t, 1, table.Upsert("a-1", ledgerRow("2021-01-01", "a-1", 20, "200")))

	rows := table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a-1", "c-1", "b-1"}, []string{rows[0].TCName, rows[1].TCName, rows[2].TCName})
	assert.Equal(t, int64(20), rows[0].Amount)
	assert.True(t, table.Has("c-1"))
	assert.False(t, table.Has("d-1"))
}

func TestTable_UpsertWithoutRowsRemoves(t *testing.T) {
	var table Table[FeeRecord]
	table.Upsert("tc", FeeRecord{Date: MustParse("2021-01-01"), Fee: "a", TCName: "tc"}, FeeRecord{Date: MustParse("2021-01-01"), Fee: "b", TCName: "tc"})
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Upsert("tc"))
	assert.Equal(t, 0, table.Len())
}

func TestDirStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewDirStore(t.TempDir())

	rows, err := s.ReadTable(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)

	want := []json.RawMessage{json.RawMessage(`{"a": 1}`), json.RawMessage(`{"b":"x"}`)}
	require.NoError(t, s.WriteTable(ctx, "portfolio-ABC", want))
	require.NoError(t, s.WriteTable(ctx, "fees", nil))

	got, err := s.ReadTable(ctx, "portfolio-ABC")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"a":1}`, string(got[0]))

	content, err := os.ReadFile(filepath.Join(s.Dir(), "portfolio-ABC.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":\"x\"}\n", string(content))

	names, err := s.Tables(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"fees", "portfolio-ABC"}, names)

	names, err = s.Tables(ctx, "portfolio-")
	require.NoError(t, err)
	assert.Equal(t, []string{"portfolio-ABC"}, names)

	assert.Error(t, s.WriteTable(ctx, "../escape", nil))
}

func TestUpsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewDirStore(t.TempDir())
	tc, err := Validator{}.Validate("tc-1", singleBuy())
	require.NoError(t, err)
	row := NewLedgerRecord(tc, tc.Operations[0])

	_, err = Upsert(ctx, s, "portfolio-ABC", row.TCName, row)
	require.NoError(t, err)
	once, err := os.ReadFile(filepath.Join(s.Dir(), "portfolio-ABC.jsonl"))
	require.NoError(t, err)

	replaced, err := Upsert(ctx, s, "portfolio-ABC", row.TCName, row)
	require.NoError(t, err)
	assert.Equal(t, 1, replaced)
	twice, err := os.ReadFile(filepath.Join(s.Dir(), "portfolio-ABC.jsonl"))
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
	assert.Equal(t, 1, strings.Count(string(twice), "\n"))
	assert.Equal(t,
		`{"date":"2021-03-04","symbol":"ABC","amount":100,"price":10.1,"value":1010,"cost_of_fees":10,"value_without_fees":1000,"price_without_fees":10,"tc_name":"tc-1-1"}`+"\n",
		string(twice))
}

func TestReadRows_RoundsOnWrite(t *testing.T) {
	ctx := context.Background()
	s := NewDirStore(t.TempDir())
	rows := []SpentValueRecord{{
		Date:             MustParse("2021-01-01"),
		OperationsValue:  dec("100.004"),
		SettlementAmount: dec("101.005"),
		TCName:           "tc",
	}}
	require.NoError(t, WriteRows(ctx, s, SpentValuesTable, rows))

	got, err := ReadRows[SpentValueRecord](ctx, s, SpentValuesTable)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, dec("100").Equal(got[0].OperationsValue))
	assert.True(t, dec("101.01").Equal(got[0].SettlementAmount))
	assert.Equal(t, MustParse("2021-01-01"), got[0].Date)
}
