package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
)

type demoCmd struct{}

func (*demoCmd) Name() string     { return "demo" }
func (*demoCmd) Synopsis() string { return "seeds the store with sample data" }
func (*demoCmd) Usage() string {
	return `finboard demo

  Seeds a couple of accounts, transactions and holdings so the dashboard
  has something to show. Safe to run on an empty store only.
`
}
func (*demoCmd) SetFlags(_ *flag.FlagSet) {}

func (c *demoCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	accounts, err := a.store.Accounts(ctx)
	if err != nil {
		return fail(err)
	}
	if len(accounts) > 0 {
		return fail(fmt.Errorf("store is not empty, refusing to seed demo data"))
	}

	checking, err := a.ledger.CreateAccount(ctx, finboard.Account{
		ID:             "checking",
		Name:           "Checking",
		Type:           finboard.Bank,
		Currency:       "EUR",
		OpeningBalance: finboard.M(5000, "EUR"),
	})
	if err != nil {
		return fail(err)
	}
	wallet, err := a.ledger.CreateAccount(ctx, finboard.Account{
		ID:       "wallet",
		Name:     "Wallet",
		Type:     finboard.Cash,
		Currency: "EUR",
	})
	if err != nil {
		return fail(err)
	}

	txs := []finboard.Transaction{
		{AccountID: checking.ID, Amount: finboard.M(3200, "EUR"), Type: finboard.Income, Category: "salary", Date: monthStart(), Description: "Monthly salary"},
		{AccountID: checking.ID, Amount: finboard.M(950, "EUR"), Type: finboard.Expense, Category: "rent", Date: monthStart().AddDate(0, 0, 2)},
		{AccountID: checking.ID, Amount: finboard.M(86.40, "EUR"), Type: finboard.Expense, Category: "groceries", Date: monthStart().AddDate(0, 0, 5)},
		{AccountID: wallet.ID, Amount: finboard.M(25, "EUR"), Type: finboard.Expense, Category: "dining", Date: monthStart().AddDate(0, 0, 6)},
	}
	for _, tx := range txs {
		if _, err := a.ledger.Apply(ctx, tx); err != nil {
			return fail(err)
		}
	}

	holdings := []finboard.Holding{
		{Symbol: "AAPL", Name: "Apple Inc.", Quantity: finboard.Q(10), AverageCost: 182.50},
		{Symbol: "VWCE.DE", Name: "Vanguard FTSE All-World", Quantity: finboard.Q(42), AverageCost: 118.20},
		{Symbol: "BTC", Name: "Bitcoin", Quantity: finboard.Q(0.05), AverageCost: 61000},
	}
	for _, h := range holdings {
		if err := a.store.PutHolding(ctx, h); err != nil {
			return fail(err)
		}
	}

	fmt.Printf("Seeded %d accounts, %d transactions and %d holdings.\n", 2, len(txs), len(holdings))
	return subcommands.ExitSuccess
}

func monthStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.Local)
}
