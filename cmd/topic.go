package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook/docs"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `topic [-l] [<topic>...]

Show documentation for the given topics, "*" for all of them.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "List the topics.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing topics: %v\n", err)
			return subcommands.ExitFailure
		}
		var b strings.Builder
		for _, t := range topics {
			fmt.Fprintf(&b, "* **%s**: %s\n", t.Name, t.Title)
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)

	return subcommands.ExitSuccess
}
