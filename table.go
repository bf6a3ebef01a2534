package tradebook

import (
	"cmp"
	"slices"
)

// Table is a keyed collection of rows. Rows are grouped by their tc_name so
// that reprocessing a confirmation replaces its rows instead of duplicating them.
//
// The zero value is an empty table ready to use.
type Table[R Row] struct {
	keys []string       // first appearance order of every key.
	rows map[string][]R // by tc_name.
}

// NewTable builds a table from rows, typically read back from a Store.
func NewTable[R Row](rows ...R) *Table[R] {
	t := &Table[R]{}
	for _, r := range rows {
		t.add(r.Key(), r)
	}
	return t
}

func (t *Table[R]) add(key string, rows ...R) {
	if t.rows == nil {
		t.rows = make(map[string][]R)
	}
	if _, exists := t.rows[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.rows[key] = append(t.rows[key], rows...)
}

// Upsert removes every row keyed by tcName, then appends rows under that key.
// It returns the number of rows that were removed.
func (t *Table[R]) Upsert(tcName string, rows ...R) int {
	removed := len(t.rows[tcName])
	if removed > 0 {
		delete(t.rows, tcName)
		t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == tcName })
	}
	if len(rows) > 0 {
		t.add(tcName, rows...)
	}
	return removed
}

// DeleteFunc removes the rows of every key for which del returns true.
// It returns the number of rows removed.
func (t *Table[R]) DeleteFunc(del func(key string) bool) int {
	removed := 0
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool {
		if !del(k) {
			return false
		}
		removed += len(t.rows[k])
		delete(t.rows, k)
		return true
	})
	return removed
}

// Has reports whether the table contains rows for tcName.
func (t *Table[R]) Has(tcName string) bool { return len(t.rows[tcName]) > 0 }

// Len returns the number of rows.
func (t *Table[R]) Len() int {
	n := 0
	for _, rows := range t.rows {
		n += len(rows)
	}
	return n
}

// Rows returns all rows sorted by date then tc_name. The sort is stable:
// rows sharing both keep the order in which they were upserted.
func (t *Table[R]) Rows() []R {
	res := make([]R, 0, t.Len())
	for _, k := range t.keys {
		res = append(res, t.rows[k]...)
	}
	slices.SortStableFunc(res, compareRows[R])
	return res
}

func compareRows[R Row](a, b R) int {
	if c := a.When().Compare(b.When()); c != 0 {
		return c
	}
	return cmp.Compare(a.Key(), b.Key())
}
