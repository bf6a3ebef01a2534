package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env file
	for _, key := range []string{"TRADEBOOK_DATA_DIR", "TRADEBOOK_STORE", "TRADEBOOK_CURRENCY", "TRADEBOOK_PORT", "LOG_LEVEL", "LOG_PRETTY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, StoreJSONL, cfg.Store)
	assert.Equal(t, "BRL", cfg.Currency)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, filepath.Join("data", "confirmations"), cfg.ConfirmationsDir())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRADEBOOK_DATA_DIR", "/srv/book")
	t.Setenv("TRADEBOOK_STORE", "sqlite")
	t.Setenv("TRADEBOOK_PORT", "9090")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "/srv/book/ledger.db", cfg.DatabasePath())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DataDir: "data", Store: "csv", Port: 8080}
	assert.Error(t, cfg.Validate())

	cfg.Store = StoreJSONL
	assert.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}
