package tradebook

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const confirmationJSON = `{
	"broker": "xp",
	"date": %q,
	"operations_value": 1000.00,
	"settlement_amount": %s,
	"fees": {"brokerage": 10.00},
	"operations": [{"symbol": "ABC", "amount": 100, "price": 10.00, "value": 1000.00}]
}`

func TestLoadConfirmations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), fmt.Sprintf(confirmationJSON, "2021-01-01", "1010.00"))
	writeFile(t, filepath.Join(dir, "a.json"), fmt.Sprintf(confirmationJSON, "2021-06-01", "1010.00"))
	writeFile(t, filepath.Join(dir, "c.json"), fmt.Sprintf(confirmationJSON, "2021-06-01", "1010.00"))
	writeFile(t, filepath.Join(dir, "bad.json"), fmt.Sprintf(confirmationJSON, "2021-02-01", "1005.00"))
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	tcs, err := LoadConfirmations(dir, Validator{})
	assert.ErrorIs(t, err, ErrSettlementMismatch)
	assert.Contains(t, err.Error(), "bad.json")

	require.Len(t, tcs, 3)
	assert.Equal(t, "b", tcs[0].Name)
	assert.Equal(t, "a", tcs[1].Name)
	assert.Equal(t, "c", tcs[2].Name)
}

func TestLoadConfirmations_MissingDir(t *testing.T) {
	tcs, err := LoadConfirmations(filepath.Join(t.TempDir(), "none"), Validator{})
	require.NoError(t, err)
	assert.Empty(t, tcs)
}
