package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches holding prices from the intraday quote endpoint" }
func (*fetchCmd) Usage() string {
	return `finboard fetch

Fetches the current price of every held symbol directly from the
configured intraday quote endpoint (no AI involved) and stores the
updates. Responses are cached on disk for the day.
`
}
func (*fetchCmd) SetFlags(_ *flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	if a.cfg.IntradayURL == "" {
		return fail(fmt.Errorf("no intraday endpoint configured, set intraday_url"))
	}

	holdings, err := a.store.Holdings(ctx)
	if err != nil {
		return fail(err)
	}
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	if len(symbols) == 0 {
		fmt.Println("No holdings to fetch.")
		return subcommands.ExitSuccess
	}

	provider := finboard.NewIntradayProvider(a.cfg.IntradayURL, a.cfg.IntradayPath)
	quotes, err := provider.Quotes(symbols)
	if err != nil {
		// Partial failures still carry usable quotes, report and keep going.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if len(quotes) == 0 {
		return fail(fmt.Errorf("no quotes could be fetched"))
	}

	// The syncer owns the match-and-write phase and its in-flight guard.
	syncer := finboard.NewSyncer(a.store, nil, a.log)
	result, err := syncer.ApplyQuotes(ctx, quotes)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Updated %d of %d holdings.\n", result.Updated, len(result.Holdings))
	return subcommands.ExitSuccess
}
