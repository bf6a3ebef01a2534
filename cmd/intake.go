package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
)

type intakeCmd struct{}

func (*intakeCmd) Name() string     { return "intake" }
func (*intakeCmd) Synopsis() string { return "preview the effect of planned purchases" }
func (*intakeCmd) Usage() string {
	return `tbk intake <symbol>:<shares>:<price>...

  Shows how the planned purchases would change the average price, the
  investment and the share of each symbol. Nothing is recorded.
`
}

func (c *intakeCmd) SetFlags(f *flag.FlagSet) {}

func (c *intakeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "intake needs at least one planned purchase")
		return subcommands.ExitUsageError
	}
	intakes := make([]tradebook.Intake, 0, f.NArg())
	for _, arg := range f.Args() {
		in, err := parseIntake(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %q: %v\n", arg, err)
			return subcommands.ExitUsageError
		}
		intakes = append(intakes, in)
	}

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

	ledgers, err := book.SymbolLedgers(ctx)
	if ledgers == nil {
		fmt.Fprintf(os.Stderr, "Error reading ledgers: %v\n", err)
		return subcommands.ExitFailure
	}
	a.warn(renderer.Problems(err))
	positions, err := tradebook.Consolidate(ledgers)
	a.warn(renderer.Problems(err))

	previews, err := tradebook.PreviewIntake(positions, intakes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error previewing intake: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderIntake(previews, a.options()))
	return subcommands.ExitSuccess
}

// parseIntake reads "ABC:100:12.50".
func parseIntake(s string) (tradebook.Intake, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" {
		return tradebook.Intake{}, fmt.Errorf("want <symbol>:<shares>:<price>")
	}
	shares, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || shares <= 0 {
		return tradebook.Intake{}, fmt.Errorf("invalid shares %q", parts[1])
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil || !price.IsPositive() {
		return tradebook.Intake{}, fmt.Errorf("invalid price %q", parts[2])
	}
	return tradebook.Intake{Symbol: parts[0], Shares: shares, Price: price}, nil
}
