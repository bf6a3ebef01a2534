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

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily positions of a symbol" }
func (*historyCmd) Usage() string {
	return `tbk history <symbol>

  Displays the cumulative shares, investment and average price of a
  symbol after each day it was traded.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "history needs exactly one symbol")
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

	printMarkdown(renderer.RenderHistory(symbol, history, a.options()))
	return subcommands.ExitSuccess
}

// symbolHistory reads the ledger of symbol and computes its position history.
func symbolHistory(ctx context.Context, book *tradebook.Book, symbol string) ([]tradebook.HistoryEntry, error) {
	ledger, err := book.SymbolLedger(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(ledger) == 0 {
		return nil, fmt.Errorf("no ledger for %s: %w", symbol, tradebook.ErrUnknownSymbol)
	}
	return tradebook.PositionHistory(ledger)
}
