package tradebook

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Store persists named tables of JSON rows.
//
// WriteTable replaces the whole table at once: a reader sees either the
// previous version or the new one, never a partial table. A Store is not
// safe for concurrent writers of the same table.
type Store interface {
	// ReadTable returns the rows of the named table, or no rows if it does not exist.
	ReadTable(ctx context.Context, name string) ([]json.RawMessage, error)
	WriteTable(ctx context.Context, name string, rows []json.RawMessage) error
	// Tables lists the table names starting with prefix, in alphabetical order.
	Tables(ctx context.Context, prefix string) ([]string, error)
}

// ReadRows reads and decodes every row of the named table.
func ReadRows[T any](ctx context.Context, s Store, name string) ([]T, error) {
	raws, err := s.ReadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	rows := make([]T, 0, len(raws))
	for i, raw := range raws {
		var r T
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("table %q row %d: %w", name, i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// WriteRows encodes rows and replaces the named table with them.
func WriteRows[T any](ctx context.Context, s Store, name string, rows []T) error {
	raws := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("table %q: %w", name, err)
		}
		raws = append(raws, raw)
	}
	return s.WriteTable(ctx, name, raws)
}

// LoadTable reads the named table as a keyed Table.
func LoadTable[R Row](ctx context.Context, s Store, name string) (*Table[R], error) {
	rows, err := ReadRows[R](ctx, s, name)
	if err != nil {
		return nil, err
	}
	return NewTable(rows...), nil
}

// Upsert replaces the rows of tcName in the named table with rows and
// persists the table sorted by date and tc_name. It returns the number of
// rows that were replaced.
//
// Upserting the same rows twice leaves the table as upserting them once.
func Upsert[R Row](ctx context.Context, s Store, name, tcName string, rows ...R) (int, error) {
	t, err := LoadTable[R](ctx, s, name)
	if err != nil {
		return 0, err
	}
	replaced := t.Upsert(tcName, rows...)
	if err := WriteRows(ctx, s, name, t.Rows()); err != nil {
		return 0, err
	}
	return replaced, nil
}

// DirStore stores each table as a JSONL file in a directory: one JSON
// object per line, in table order.
type DirStore struct {
	dir string
}

// NewDirStore returns a Store writing "<dir>/<name>.jsonl" files.
func NewDirStore(dir string) *DirStore { return &DirStore{dir: dir} }

// Dir returns the directory of the store.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return filepath.Join(s.dir, name+".jsonl"), nil
}

func (s *DirStore) ReadTable(ctx context.Context, name string) ([]json.RawMessage, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open table file %q: %w", filePath, err)
	}
	defer f.Close()

	var rows []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue // Skip empty lines
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("could not decode table file %q: invalid line %q", filePath, line)
		}
		rows = append(rows, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read table file %q: %w", filePath, err)
	}
	return rows, ctx.Err()
}

// WriteTable writes the table into a temporary file of the same directory,
// then renames it over the previous version.
func (s *DirStore) WriteTable(ctx context.Context, name string, rows []json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for table %q: %w", filePath, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("error opening table file %q for writing: %w", filePath, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	w := bufio.NewWriter(tmp)
	for _, row := range rows {
		var compact bytes.Buffer
		if err := json.Compact(&compact, row); err != nil {
			tmp.Close()
			return fmt.Errorf("table %q: %w", name, err)
		}
		compact.WriteByte('\n')
		if _, err := w.Write(compact.Bytes()); err != nil {
			tmp.Close()
			return fmt.Errorf("error writing table file %q: %w", filePath, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing table file %q: %w", filePath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing table file %q: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing table file %q: %w", filePath, err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("could not replace table file %q: %w", filePath, err)
	}
	return nil
}

func (s *DirStore) Tables(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list tables in %q: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), ".jsonl")
		if !ok || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, ctx.Err()
}
