// Command tbk keeps a ledger of trade confirmations and reports on it.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook/cmd"
)

func main() {
	// Answers shell completion requests and exits, a no-op otherwise.
	cmd.Completion().Complete("tbk")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
