// Package config reads the tbk configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreJSONL  = "jsonl"
	StoreSQLite = "sqlite"
)

// Config holds application configuration
type Config struct {
	DataDir   string // root of confirmations/, earnings/ and the ledger.
	Store     string // jsonl or sqlite
	Currency  string // used to format amounts only.
	Port      int
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:   getEnv("TRADEBOOK_DATA_DIR", "./data"),
		Store:     getEnv("TRADEBOOK_STORE", StoreJSONL),
		Currency:  getEnv("TRADEBOOK_CURRENCY", "BRL"),
		Port:      getEnvAsInt("TRADEBOOK_PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("TRADEBOOK_DATA_DIR is required")
	}
	switch c.Store {
	case StoreJSONL, StoreSQLite:
	default:
		return fmt.Errorf("TRADEBOOK_STORE must be %q or %q, got %q", StoreJSONL, StoreSQLite, c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("TRADEBOOK_PORT is out of range: %d", c.Port)
	}
	return nil
}

// ConfirmationsDir holds the trade confirmation documents.
func (c *Config) ConfirmationsDir() string { return filepath.Join(c.DataDir, "confirmations") }

// EarningsDir holds the dividend feeds.
func (c *Config) EarningsDir() string { return filepath.Join(c.DataDir, "earnings") }

// LedgerDir holds the JSONL tables.
func (c *Config) LedgerDir() string { return filepath.Join(c.DataDir, "ledger") }

// DatabasePath is the SQLite ledger file.
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, "ledger.db") }

// BrokersFile and CompaniesFile are the optional master lists.
func (c *Config) BrokersFile() string   { return filepath.Join(c.DataDir, "brokers.json") }
func (c *Config) CompaniesFile() string { return filepath.Join(c.DataDir, "companies.json") }

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
