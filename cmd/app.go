// Package cmd implements the CLI application to manage the dashboard.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/ewallis/finboard"
	"github.com/ewallis/finboard/config"
	"github.com/ewallis/finboard/docstore"
	"github.com/ewallis/finboard/lookup"
)

// Register the subcommands.
// A main package calls Register() to allow subcommands, and Execute() on the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&accountAddCmd{}, "accounts")
	c.Register(&accountsCmd{}, "accounts")
	c.Register(&accountDeleteCmd{}, "accounts")
	c.Register(&checkCmd{}, "accounts")

	c.Register(&txCmd{}, "transactions")
	c.Register(&revertCmd{}, "transactions")
	c.Register(&transactionsCmd{}, "transactions")

	c.Register(&holdingAddCmd{}, "holdings")
	c.Register(&holdingsCmd{}, "holdings")
	c.Register(&syncCmd{}, "holdings")
	c.Register(&fetchCmd{}, "holdings")

	c.Register(&adviseCmd{}, "ai")
	c.Register(&demoCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "finboard.yaml", "Path to the configuration file (YAML format)")

// app bundles everything a subcommand needs, built once from the config.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  finboard.Store
	ledger *finboard.Ledger
	close  func() error
}

// openApp loads the configuration and opens the configured store.
func openApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	a := &app{cfg: cfg, log: log, close: func() error { return nil }}
	switch cfg.Store {
	case "memory":
		a.store = finboard.NewMemoryStore()
	case "sqlite":
		store, err := docstore.Open(cfg.DBPath, log)
		if err != nil {
			return nil, fmt.Errorf("could not open store %q: %w", cfg.DBPath, err)
		}
		a.store = store
		a.close = store.Close
	}
	a.ledger = finboard.NewLedger(a.store, log)
	return a, nil
}

// newSyncer builds the price sync coordinator over the AI lookup client.
func (a *app) newSyncer(ctx context.Context) (*finboard.Syncer, error) {
	client, err := lookup.New(ctx, a.cfg.Model, a.log)
	if err != nil {
		return nil, fmt.Errorf("could not initialize lookup client: %w", err)
	}
	return finboard.NewSyncer(a.store, client, a.log), nil
}

// fail prints the error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
