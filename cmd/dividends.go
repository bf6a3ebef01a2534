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

type dividendsCmd struct{}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "attribute the dividends of a symbol to its positions" }
func (*dividendsCmd) Usage() string {
	return `tbk dividends <symbol>

  Attributes every earning announced for the symbol to the position held
  just before its record date.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "dividends needs exactly one symbol")
		return subcommands.ExitUsageError
	}
	symbol := f.Arg(0)

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

	history, err := symbolHistory(ctx, book, symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing history of %s: %v\n", symbol, err)
		return subcommands.ExitFailure
	}
	events, err := a.feed()(symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading earnings of %s: %v\n", symbol, err)
		return subcommands.ExitFailure
	}
	dividends, err := tradebook.Reconcile(symbol, history, events)
	printMarkdown(renderer.RenderDividends(symbol, dividends, renderer.Problems(err), a.options()))
	return subcommands.ExitSuccess
}
