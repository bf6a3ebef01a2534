package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
)

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check trade confirmations without recording them" }
func (*validateCmd) Usage() string {
	return `tbk validate [<file.json>...]

  Checks the arithmetic of trade confirmations. Without arguments, every
  confirmation of the data folder is checked. Nothing is written.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {}

func (c *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.RenderValidation(tcs, renderer.Problems(err), a.options()))
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// validateFiles validates each file independently.
func validateFiles(v tradebook.Validator, files []string) ([]*tradebook.TradeConfirmation, error) {
	var tcs []*tradebook.TradeConfirmation
	var errs []error
	for _, file := range files {
		doc, err := tradebook.ReadDocument(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		tc, err := v.Validate(name, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		tcs = append(tcs, tc)
	}
	return tcs, errors.Join(errs...)
}
