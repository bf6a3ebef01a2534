// Package cmd implements the tbk command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/config"
	"github.com/etnz/tradebook/logger"
	"github.com/etnz/tradebook/renderer"
	"github.com/etnz/tradebook/sqlstore"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&validateCmd{}, "confirmations")
	c.Register(&ingestCmd{}, "confirmations")

	c.Register(&portfolioCmd{}, "reports")
	c.Register(&annualCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&dividendsCmd{}, "reports")
	c.Register(&intakeCmd{}, "reports")

	c.Register(&earningsCmd{}, "earnings")
	c.Register(&serveCmd{}, "server")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataDir   = flag.String("data", "", "Data folder. Overrides TRADEBOOK_DATA_DIR.")
	storeKind = flag.String("store", "", "Ledger backend, jsonl or sqlite. Overrides TRADEBOOK_STORE.")
	verbose   = flag.Bool("v", false, "Log debug messages.")
	plain     = flag.Bool("plain", false, "Print raw markdown instead of styled output.")
)

// app is what every command needs: the configuration and the logger.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// newApp loads the configuration and applies the global flags.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *storeKind != "" {
		cfg.Store = *storeKind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: cfg.LogPretty})
	return &app{cfg: cfg, log: log}, nil
}

// mustApp is newApp for Execute methods: it reports the error itself.
func mustApp() (*app, bool) {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, false
	}
	return a, true
}

// openBook opens the ledger selected by the configuration.
// The returned function releases the store.
func (a *app) openBook(ctx context.Context) (*tradebook.Book, func(), error) {
	switch a.cfg.Store {
	case config.StoreSQLite:
		s, err := sqlstore.Open(ctx, sqlstore.Config{Path: a.cfg.DatabasePath(), Name: "ledger"})
		if err != nil {
			return nil, nil, err
		}
		closeStore := func() {
			if err := s.Close(); err != nil {
				a.log.Error().Err(err).Msg("closing ledger")
			}
		}
		return tradebook.NewBook(s, a.log), closeStore, nil
	default:
		return tradebook.NewBook(tradebook.NewDirStore(a.cfg.LedgerDir()), a.log), func() {}, nil
	}
}

// validator checks confirmations against the brokers and companies files when they exist.
func (a *app) validator() (tradebook.Validator, error) {
	catalog, err := tradebook.LoadCatalog(a.cfg.BrokersFile(), a.cfg.CompaniesFile())
	if err != nil {
		return tradebook.Validator{}, err
	}
	return tradebook.Validator{Registry: catalog}, nil
}

func (a *app) feed() tradebook.DividendFeed { return tradebook.DirFeed(a.cfg.EarningsDir()) }

func (a *app) options() renderer.Options { return renderer.Options{Currency: a.cfg.Currency} }

// warn logs every problem as a warning.
func (a *app) warn(problems []error) {
	for _, p := range problems {
		a.log.Warn().Err(p).Msg("problem")
	}
}

// printMarkdown prints md styled for the terminal, or raw with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
