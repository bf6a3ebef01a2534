package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
)

type annualCmd struct {
	symbol string
}

func (*annualCmd) Name() string     { return "annual" }
func (*annualCmd) Synopsis() string { return "display the yearly investments" }
func (*annualCmd) Usage() string {
	return `tbk annual [-s <symbol>]

  Lists, for each symbol and year, the shares bought, the money invested
  and the accumulated investment.
`
}

func (c *annualCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Restrict to one symbol.")
}

func (c *annualCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := mustApp()
	if !ok {
		return subcommands.ExitFailure
	}
	book, closeBook, err := a.openBook(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	var annual []tradebook.AnnualAmount
	if c.symbol != "" {
		ledger, err := book.SymbolLedger(ctx, c.symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ledger of %s: %v\n", c.symbol, err)
			return subcommands.ExitFailure
		}
		annual = tradebook.SymbolAnnualAmounts(c.symbol, ledger)
	} else {
		ledgers, err := book.SymbolLedgers(ctx)
		if ledgers == nil {
			fmt.Fprintf(os.Stderr, "Error reading ledgers: %v\n", err)
			return subcommands.ExitFailure
		}
		a.warn(renderer.Problems(err))
		annual = tradebook.AnnualAmounts(ledgers)
	}

	printMarkdown(renderer.RenderAnnual(annual, a.options()))
	return subcommands.ExitSuccess
}
