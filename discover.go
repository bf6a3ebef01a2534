package tradebook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LoadConfirmations reads and validates every "*.json" trade confirmation in dir.
//
// Each file is validated on its own: the valid confirmations are returned
// sorted by date (files of the same date in name order) along with the joined
// errors of the rejected ones. A confirmation is named after its file, without
// the extension.
func LoadConfirmations(dir string, v Validator) ([]*TradeConfirmation, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list trade confirmations in %q: %w", dir, err)
	}

	var tcs []*TradeConfirmation
	var errs error
	for _, e := range entries { // ReadDir sorts by name.
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		doc, err := ReadDocument(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		tc, err := v.Validate(name, doc)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		tcs = append(tcs, tc)
	}
	slices.SortStableFunc(tcs, func(a, b *TradeConfirmation) int { return a.Date.Compare(b.Date) })
	return tcs, errs
}
