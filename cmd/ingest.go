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

type ingestCmd struct {
	strict bool
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "record trade confirmations in the ledger" }
func (*ingestCmd) Usage() string {
	return `tbk ingest [-strict] [<file.json>...]

  Validates trade confirmations and records the valid ones in the ledger.
  Recording a confirmation again replaces its rows.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "Record nothing if any confirmation is invalid.")
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := mustApp()
	if !ok {
		return subcommands.ExitFailure
	}
	v, err := a.validator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading brokers and companies: %v\n", err)
		return subcommands.ExitFailure
	}

	var tcs []*tradebook.TradeConfirmation
	if f.NArg() == 0 {
		tcs, err = tradebook.LoadConfirmations(a.cfg.ConfirmationsDir(), v)
	} else {
		tcs, err = validateFiles(v, f.Args())
	}
	problems := renderer.Problems(err)
	a.warn(problems)
	if c.strict && len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "%d invalid trade confirmations, nothing recorded\n", len(problems))
		return subcommands.ExitFailure
	}

	book, closeBook, err := a.openBook(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	if err := book.Ingest(ctx, tcs); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording trade confirmations: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded %d trade confirmations, rejected %d\n", len(tcs), len(problems))
	if len(problems) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
