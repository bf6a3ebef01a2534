package renderer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledger(symbol string, rows ...string) []tradebook.LedgerRecord {
	var res []tradebook.LedgerRecord
	for _, r := range rows {
		var date string
		var amount int64
		var value float64
		fmt.Sscanf(r, "%s %d %f", &date, &amount, &value)
		res = append(res, tradebook.LedgerRecord{
			Date:   tradebook.MustParse(date),
			Symbol: symbol,
			Amount: amount,
			Value:  tradebook.D(value),
			TCName: symbol + "-" + date,
		})
	}
	return res
}

func TestRenderPortfolio(t *testing.T) {
	positions, err := tradebook.Consolidate(map[string][]tradebook.LedgerRecord{
		"ABC": ledger("ABC", "2021-01-01 100 1000"),
		"DEF": ledger("DEF", "2021-01-01 10 3000"),
	})
	require.NoError(t, err)

	got := RenderPortfolio(positions, []error{errors.New("GHI is broken")}, Options{Currency: "EUR"})

	assert.True(t, strings.HasPrefix(got, "# Portfolio\n"), got)
	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, fmt.Sprintf("| DEF | 10 | %s | %s | 75.00%% |", tradebook.M(300, "EUR"), tradebook.M(3000, "EUR")), lines[4])
	assert.Equal(t, fmt.Sprintf("| ABC | 100 | %s | %s | 25.00%% |", tradebook.M(10, "EUR"), tradebook.M(1000, "EUR")), lines[5])
	assert.Contains(t, got, fmt.Sprintf("**%s**", tradebook.M(4000, "EUR")))
	assert.Contains(t, got, "## Problems")
	assert.Contains(t, got, "- GHI is broken")
}

func TestRenderPortfolio_NoProblems(t *testing.T) {
	got := RenderPortfolio(nil, nil, Options{})
	assert.NotContains(t, got, "Problems")
	assert.NotContains(t, got, "error")
}

func TestRenderAnnualAndHistory(t *testing.T) {
	records := ledger("ABC", "2020-05-01 100 1000", "2021-05-01 50 600")

	annual := RenderAnnual(tradebook.SymbolAnnualAmounts("ABC", records), Options{})
	assert.Contains(t, annual, "| ABC | 2019 | 0 |")
	assert.Contains(t, annual, "| ABC | 2021 | 50 |")

	history, err := tradebook.PositionHistory(records)
	require.NoError(t, err)
	got := RenderHistory("ABC", history, Options{})
	assert.Contains(t, got, "# History of ABC")
	assert.Contains(t, got, "| 2021-05-01 | 150 |")
}

func TestRenderDividends(t *testing.T) {
	history, err := tradebook.PositionHistory(ledger("ABC", "2021-01-01 100 1000"))
	require.NoError(t, err)
	events := []tradebook.DividendEvent{{
		Symbol:        "ABC",
		RecordDate:    tradebook.MustParse("2021-03-01"),
		Type:          tradebook.InterestOnCapital,
		ValuePerShare: tradebook.D(0.85),
	}}
	dividends, err := tradebook.Reconcile("ABC", history, events)
	require.NoError(t, err)

	got := RenderDividends("ABC", dividends, nil, Options{})
	assert.Contains(t, got, "| _unknown_ | 2021-03-01 | interest-on-capital | 0.85 | 100 |")
	assert.Contains(t, got, tradebook.M(85, "BRL").String())

	empty := RenderDividends("XYZ", nil, nil, Options{})
	assert.Contains(t, empty, "_No dividend attributed._")
}

func TestRenderValidation(t *testing.T) {
	doc := tradebook.Document{
		Broker:           "xp",
		Date:             "2021-03-04",
		OperationsValue:  tradebook.D(1000),
		SettlementAmount: tradebook.D(1000),
		Operations: []tradebook.DocumentOperation{
			{Symbol: "ABC", Amount: 100, Price: tradebook.D(10), Value: tradebook.D(1000)},
		},
	}
	tc, err := tradebook.Validator{}.Validate("tc-1", doc)
	require.NoError(t, err)

	got := RenderValidation([]*tradebook.TradeConfirmation{tc}, Problems(errors.Join(errors.New("a.json: bad"), errors.New("b.json: worse"))), Options{})
	assert.Contains(t, got, "| tc-1 | 2021-03-04 | xp |")
	assert.Contains(t, got, "- a.json: bad")
	assert.Contains(t, got, "- b.json: worse")
}

func TestRenderIntake(t *testing.T) {
	positions, err := tradebook.Consolidate(map[string][]tradebook.LedgerRecord{
		"ABC": ledger("ABC", "2021-01-01 100 1000"),
	})
	require.NoError(t, err)
	previews, err := tradebook.PreviewIntake(positions, []tradebook.Intake{{Symbol: "ABC", Shares: 100, Price: tradebook.D(12)}})
	require.NoError(t, err)

	got := RenderIntake(previews, Options{})
	assert.Contains(t, got, "| ABC |")
	assert.Contains(t, got, "100.00%")
	assert.Contains(t, got, tradebook.M(11, "BRL").String())
}

func TestProblems(t *testing.T) {
	assert.Nil(t, Problems(nil))
	nested := errors.Join(errors.New("a"), errors.Join(errors.New("b"), errors.New("c")))
	assert.Len(t, Problems(nested), 3)
}
