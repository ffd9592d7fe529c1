package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
)

type holdingAddCmd struct {
	symbol  string
	name    string
	qty     float64
	avgCost float64
}

func (*holdingAddCmd) Name() string     { return "add-holding" }
func (*holdingAddCmd) Synopsis() string { return "adds or replaces an investment holding" }
func (*holdingAddCmd) Usage() string {
	return `finboard add-holding -s <symbol> [-n <name>] -q <quantity> [-cost <average-cost>]

  Adds a holding to the portfolio, or replaces it if the symbol already
  exists. Prices are filled in by 'sync' or 'fetch'.

Usage Examples:
$ finboard add-holding -s AAPL -n "Apple Inc." -q 10 -cost 182.50
`
}

func (c *holdingAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
	f.StringVar(&c.name, "n", "", "Display name. Defaults to the symbol.")
	f.Float64Var(&c.qty, "q", 0, "Number of units held.")
	f.Float64Var(&c.avgCost, "cost", 0, "Average cost per unit.")
}

func (c *holdingAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		return fail(fmt.Errorf("symbol is required"))
	}
	if c.qty <= 0 {
		return fail(fmt.Errorf("quantity must be positive"))
	}
	name := c.name
	if name == "" {
		name = c.symbol
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	h := finboard.Holding{
		Symbol:      c.symbol,
		Name:        name,
		Quantity:    finboard.Q(c.qty),
		AverageCost: c.avgCost,
	}
	if err := a.store.PutHolding(ctx, h); err != nil {
		return fail(err)
	}
	fmt.Printf("Stored holding %s (%s x %s).\n", h.Symbol, h.Name, h.Quantity)
	return subcommands.ExitSuccess
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "lists the portfolio holdings" }
func (*holdingsCmd) Usage() string {
	return `finboard holdings

  Lists the holdings with their last synced price and market value.
`
}
func (*holdingsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	holdings, err := a.store.Holdings(ctx)
	if err != nil {
		return fail(err)
	}

	var b strings.Builder
	b.WriteString("| Symbol | Name | Quantity | Price | Value | Updated |\n")
	b.WriteString("|---|---|---:|---:|---:|---|\n")
	for _, h := range holdings {
		updated := "never"
		if !h.LastUpdated.IsZero() {
			updated = h.LastUpdated.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %.2f | %s |\n",
			h.Symbol, h.Name, h.Quantity, h.CurrentPrice, h.MarketValue(), updated)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
