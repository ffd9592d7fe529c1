package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
	"github.com/ewallis/finboard/lookup"
)

type adviseCmd struct{}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "asks the AI for advice on the current finances" }
func (*adviseCmd) Usage() string {
	return `finboard advise [question...]

  Summarizes the accounts and holdings, sends the summary to the AI
  advice service along with an optional question, and renders the answer.
  Requires the GEMINI_API_KEY environment variable.
`
}
func (*adviseCmd) SetFlags(_ *flag.FlagSet) {}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	summary, err := financialSummary(ctx, a.store)
	if err != nil {
		return fail(err)
	}
	if f.NArg() > 0 {
		summary += "\nQuestion: " + strings.Join(f.Args(), " ")
	}

	client, err := lookup.New(ctx, a.cfg.Model, a.log)
	if err != nil {
		return fail(err)
	}
	advice, err := client.Advise(ctx, summary)
	if err != nil {
		return fail(err)
	}
	printMarkdown(advice)
	return subcommands.ExitSuccess
}

// financialSummary renders accounts and holdings as a compact text block for
// the advice prompt.
func financialSummary(ctx context.Context, store finboard.Store) (string, error) {
	accounts, err := store.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("could not list accounts: %w", err)
	}
	holdings, err := store.Holdings(ctx)
	if err != nil {
		return "", fmt.Errorf("could not list holdings: %w", err)
	}

	var b strings.Builder
	b.WriteString("Accounts:\n")
	for _, a := range accounts {
		fmt.Fprintf(&b, "- %s (%s): %s\n", a.Name, a.Type, a.Balance)
	}
	b.WriteString("Holdings:\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "- %s: %s units, market value %.2f\n", h.Symbol, h.Quantity, h.MarketValue())
	}
	return b.String(), nil
}
