package tradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewIntake(t *testing.T) {
	positions, err := Consolidate(map[string][]LedgerRecord{
		"ABC": {symbolRow("ABC", "2021-01-01", 100, "1000")},
		"DEF": {symbolRow("DEF", "2021-01-01", 100, "3000")},
	})
	require.NoError(t, err)

	preview, err := PreviewIntake(positions, []Intake{
		{Symbol: "ABC", Shares: 100, Price: dec("12.00")},
		{Symbol: "GHI", Shares: 10, Price: dec("80.00")},
	})
	require.NoError(t, err)
	require.Len(t, preview, 3)

	bySymbol := map[string]IntakePreview{}
	for _, p := range preview {
		bySymbol[p.Symbol] = p
	}

	abc := bySymbol["ABC"]
	assert.True(t, dec("1200").Equal(abc.Total))
	assert.True(t, dec("2200").Equal(abc.NewInvestment))
	assert.True(t, dec("11").Equal(abc.NewAvgPrice))
	assert.Equal(t, "25.00%", abc.Percent.String())
	assert.Equal(t, "36.67%", abc.NewPercent.String())

	def := bySymbol["DEF"]
	assert.True(t, dec("3000").Equal(def.NewInvestment))
	assert.Equal(t, "50.00%", def.NewPercent.String())

	ghi := bySymbol["GHI"]
	assert.True(t, ghi.Investment.IsZero())
	assert.True(t, dec("80").Equal(ghi.NewAvgPrice))

	assert.Equal(t, "DEF", preview[0].Symbol, "sorted by new percentage")
}

func TestPreviewIntake_SellEverything(t *testing.T) {
	positions, err := Consolidate(map[string][]LedgerRecord{
		"ABC": {symbolRow("ABC", "2021-01-01", 100, "1000")},
	})
	require.NoError(t, err)
	_, err = PreviewIntake(positions, []Intake{{Symbol: "ABC", Shares: -100, Price: dec("10")}})
	assert.ErrorIs(t, err, ErrZeroPositionDivision)
}
