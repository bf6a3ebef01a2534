package tradebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Catalog is the master list of brokers and companies.
// It implements Registry.
type Catalog struct {
	brokers   map[string]struct{}
	companies map[string]struct{}
}

// NewCatalog creates a catalog from broker ids and company symbols.
// A nil list disables the corresponding check.
func NewCatalog(brokers, symbols []string) *Catalog {
	c := &Catalog{}
	if brokers != nil {
		c.brokers = make(map[string]struct{}, len(brokers))
		for _, b := range brokers {
			c.brokers[b] = struct{}{}
		}
	}
	if symbols != nil {
		c.companies = make(map[string]struct{}, len(symbols))
		for _, s := range symbols {
			c.companies[s] = struct{}{}
		}
	}
	return c
}

// HasBroker reports whether the broker id is declared, or true when no broker list was loaded.
func (c *Catalog) HasBroker(id string) bool {
	if c.brokers == nil {
		return true
	}
	_, ok := c.brokers[id]
	return ok
}

// HasSymbol reports whether the company is declared, or true when no company list was loaded.
func (c *Catalog) HasSymbol(symbol string) bool {
	if c.companies == nil {
		return true
	}
	_, ok := c.companies[symbol]
	return ok
}

// LoadCatalog reads brokersFile (`[{"id": "xp"}]`) and companiesFile
// (`[{"symbol": "ABC"}]`). A missing file disables its check.
func LoadCatalog(brokersFile, companiesFile string) (*Catalog, error) {
	var brokers []struct {
		ID string `json:"id"`
	}
	var companies []struct {
		Symbol string `json:"symbol"`
	}
	okBrokers, err := readJSONFile(brokersFile, &brokers)
	if err != nil {
		return nil, err
	}
	okCompanies, err := readJSONFile(companiesFile, &companies)
	if err != nil {
		return nil, err
	}

	var ids, symbols []string
	if okBrokers {
		ids = make([]string, 0, len(brokers))
		for _, b := range brokers {
			ids = append(ids, b.ID)
		}
	}
	if okCompanies {
		symbols = make([]string, 0, len(companies))
		for _, c := range companies {
			symbols = append(symbols, c.Symbol)
		}
	}
	return NewCatalog(ids, symbols), nil
}

// readJSONFile decodes filename into v. It returns false if the file does not exist.
func readJSONFile(filename string, v any) (bool, error) {
	if filename == "" {
		return false, nil
	}
	content, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("format error in %q: %w", filename, err)
	}
	return true, nil
}
