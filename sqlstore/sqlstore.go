// Package sqlstore stores ledger tables in a SQLite database.
//
// It is an alternative to the JSONL directory store for users who prefer a
// single file. Every table rewrite runs in one transaction, so a table is
// either fully replaced or left untouched.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schema string

// Profile selects the durability PRAGMAs of the database.
type Profile string

const (
	// ProfileLedger fsyncs every commit and never shrinks the file.
	ProfileLedger Profile = "ledger"
	// ProfileStandard fsyncs at checkpoints.
	ProfileStandard Profile = "standard"
)

// Config holds database configuration
type Config struct {
	Path    string
	Profile Profile // defaults to ProfileLedger
	Name    string  // Friendly name for error messages
}

// Store is a tradebook.Store backed by SQLite.
type Store struct {
	conn *sql.DB
	path string
	name string
}

// Open opens or creates the database at cfg.Path and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Name == "" {
		cfg.Name = "ledger"
	}
	inMemory := cfg.Path == ":memory:" || strings.HasPrefix(cfg.Path, "file:")
	if !inMemory {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileLedger
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}
	if inMemory {
		// each connection would see its own empty database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxIdleTime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	s := &Store{conn: conn, path: cfg.Path, name: cfg.Name}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// buildConnectionString creates SQLite connection string with profile-specific PRAGMAs
func buildConnectionString(path string, profile Profile) string {
	connStr := path + "?_pragma=journal_mode(WAL)"

	switch profile {
	case ProfileLedger:
		connStr += "&_pragma=synchronous(FULL)"
		connStr += "&_pragma=auto_vacuum(NONE)"
	default:
		connStr += "&_pragma=synchronous(NORMAL)"
		connStr += "&_pragma=auto_vacuum(INCREMENTAL)"
	}

	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=busy_timeout(5000)"
	return connStr
}

func (s *Store) migrate(ctx context.Context) error {
	return withTransaction(ctx, s.conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to apply schema for %s: %w", s.name, err)
		}
		return nil
	})
}

// Close closes the database connection
func (s *Store) Close() error { return s.conn.Close() }

// Path returns the database file path
func (s *Store) Path() string { return s.path }

// ReadTable returns the rows of the named table in order.
func (s *Store) ReadTable(ctx context.Context, name string) ([]json.RawMessage, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT data FROM ledger_rows WHERE table_name = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", name, err)
	}
	defer rows.Close()

	var res []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan table %q: %w", name, err)
		}
		res = append(res, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", name, err)
	}
	return res, nil
}

// WriteTable replaces the named table in a single transaction.
func (s *Store) WriteTable(ctx context.Context, name string, rows []json.RawMessage) error {
	if name == "" {
		return fmt.Errorf("invalid table name %q", name)
	}
	for i, row := range rows {
		if !json.Valid(row) {
			return fmt.Errorf("table %q row %d: invalid JSON", name, i+1)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return withTransaction(ctx, s.conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_tables (name, updated_at) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`, name, now); err != nil {
			return fmt.Errorf("failed to register table %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE table_name = ?`, name); err != nil {
			return fmt.Errorf("failed to clear table %q: %w", name, err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_rows (table_name, position, data) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, row := range rows {
			if _, err := stmt.ExecContext(ctx, name, i, string(row)); err != nil {
				return fmt.Errorf("failed to insert row %d of table %q: %w", i+1, name, err)
			}
		}
		return nil
	})
}

// Tables lists the table names starting with prefix, in alphabetical order.
func (s *Store) Tables(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT name FROM ledger_tables WHERE substr(name, 1, length(?)) = ? ORDER BY name`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// withTransaction executes fn within a transaction, rolling it back if fn
// returns an error or panics.
func withTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rollbackErr)
			} else {
				err = fmt.Errorf("transaction failed: %w", err)
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}
