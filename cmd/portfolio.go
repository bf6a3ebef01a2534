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

type portfolioCmd struct {
	save bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the consolidated positions" }
func (*portfolioCmd) Usage() string {
	return `tbk portfolio [-save]

  Consolidates the ledger into positions, sorted by share of the total
  investment.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.save, "save", false, "Also write the consolidated, annual, history and dividends tables.")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := tradebook.BuildReport(ctx, book, a.feed())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building the portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.save {
		if err := tradebook.SaveReport(ctx, book.Store(), report); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving the reports: %v\n", err)
			return subcommands.ExitFailure
		}
		a.log.Info().Int("symbols", len(report.Symbols)).Msg("reports saved")
	}

	printMarkdown(renderer.RenderPortfolio(report.Positions, report.Problems, a.options()))
	return subcommands.ExitSuccess
}
