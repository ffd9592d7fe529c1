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

	"github.com/ewallis/finboard"
	"github.com/ewallis/finboard/lookup"
	"github.com/ewallis/finboard/server"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the dashboard API over HTTP" }
func (*serveCmd) Usage() string {
	return `finboard serve [-addr <address>]

Starts the HTTP server exposing accounts, transactions, holdings, price
sync and advice under /api. Requires the GEMINI_API_KEY environment
variable for the sync and advice endpoints.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides the configured one.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	client, err := lookup.New(ctx, a.cfg.Model, a.log)
	if err != nil {
		return fail(fmt.Errorf("could not initialize lookup client: %w", err))
	}
	syncer := finboard.NewSyncer(a.store, client, a.log)

	addr := a.cfg.ListenAddr
	if c.addr != "" {
		addr = c.addr
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.New(a.store, a.ledger, syncer, client, a.log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("server shutdown")
		}
	}()

	a.log.Info().Str("addr", addr).Msg("serving dashboard")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
