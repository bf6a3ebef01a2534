package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/etnz/tradebook/server"
)

type serveCmd struct {
	dev bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the reports as a JSON API" }
func (*serveCmd) Usage() string {
	return `tbk serve [-dev]

  Serves the portfolio, annual, history and dividends reports over HTTP
  on TRADEBOOK_PORT until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dev, "dev", false, "Disable response compression.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	srv := server.New(server.Config{
		Log:     a.log,
		Book:    book,
		Feed:    a.feed(),
		Port:    a.cfg.Port,
		DevMode: c.dev,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("server forced to shutdown")
			return subcommands.ExitFailure
		}
	}
	a.log.Info().Msg("server stopped")
	return subcommands.ExitSuccess
}
