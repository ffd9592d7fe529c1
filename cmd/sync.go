package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "refreshes holding prices through the AI lookup" }
func (*syncCmd) Usage() string {
	return `finboard sync

Asks the AI lookup service for the current price of every held symbol,
matches the answer against the holdings, and stores the updates.
Requires the GEMINI_API_KEY environment variable.
`
}
func (*syncCmd) SetFlags(_ *flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	syncer, err := a.newSyncer(ctx)
	if err != nil {
		return fail(err)
	}

	result, err := syncer.Sync(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Updated %d of %d holdings.\n", result.Updated, len(result.Holdings))
	for _, s := range result.Sources {
		fmt.Printf("  source: %s (%s)\n", s.Title, s.URL)
	}
	return subcommands.ExitSuccess
}
