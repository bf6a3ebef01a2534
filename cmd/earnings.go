package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
)

type earningsCmd struct {
	symbol string
	path   string
}

func (*earningsCmd) Name() string     { return "earnings" }
func (*earningsCmd) Synopsis() string { return "import the earnings announced for a symbol" }
func (*earningsCmd) Usage() string {
	return `tbk earnings -s <symbol> [-path <jsonpath>] [<file.json>|-]

  Reads an earnings document (from stdin by default) and replaces the
  earnings feed of the symbol. Rows that cannot be read are reported and
  skipped.
`
}

func (c *earningsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol the earnings belong to (required).")
	f.StringVar(&c.path, "path", tradebook.DefaultEarningsPath, "JSONPath of the earning rows in the document.")
}

func (c *earningsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "earnings needs a symbol, use -s")
		return subcommands.ExitUsageError
	}
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "earnings reads at most one document")
		return subcommands.ExitUsageError
	}

	a, ok := mustApp()
	if !ok {
		return subcommands.ExitFailure
	}

	data, err := readInput(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading earnings document: %v\n", err)
		return subcommands.ExitFailure
	}

	events, err := tradebook.ParseEarningsDocument(c.symbol, data, c.path)
	problems := renderer.Problems(err)
	a.warn(problems)
	if len(events) == 0 && len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "no earning could be read for %s\n", c.symbol)
		return subcommands.ExitFailure
	}

	if err := tradebook.WriteEarnings(a.cfg.EarningsDir(), c.symbol, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing earnings of %s: %v\n", c.symbol, err)
		return subcommands.ExitFailure
	}
	a.log.Info().Str("symbol", c.symbol).Int("events", len(events)).Int("skipped", len(problems)).Msg("earnings imported")
	fmt.Printf("Imported %d earnings for %s into %s\n", len(events), c.symbol, tradebook.EarningsFile(a.cfg.EarningsDir(), c.symbol))
	return subcommands.ExitSuccess
}

// readInput reads file, or stdin when file is empty or "-".
func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}
