package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
)

type accountAddCmd struct {
	id       string
	name     string
	accType  string
	currency string
	opening  float64
}

func (*accountAddCmd) Name() string     { return "add-account" }
func (*accountAddCmd) Synopsis() string { return "creates a new account" }
func (*accountAddCmd) Usage() string {
	return `finboard add-account -n <name> -cur <currency> [-t <type>] [-id <id>] [-opening <amount>]

  Creates an account. Its balance starts at the opening balance and from
  then on only moves through transactions.

Usage Examples:
$ finboard add-account -n "Checking" -cur EUR -t bank -opening 5000
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Account id. Generated when empty.")
	f.StringVar(&c.name, "n", "", "Account name.")
	f.StringVar(&c.accType, "t", "bank", "Account type (bank, cash, investment, credit-card).")
	f.StringVar(&c.currency, "cur", "", "Account currency (ISO 4217 code).")
	f.Float64Var(&c.opening, "opening", 0, "Opening balance.")
}

func (c *accountAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	accType, err := finboard.ParseAccountType(c.accType)
	if err != nil {
		return fail(err)
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	account, err := a.ledger.CreateAccount(ctx, finboard.Account{
		ID:             c.id,
		Name:           c.name,
		Type:           accType,
		Currency:       c.currency,
		OpeningBalance: finboard.M(c.opening, c.currency),
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created account %q (%s), balance %s.\n", account.Name, account.ID, account.Balance)
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "lists all accounts with their balances" }
func (*accountsCmd) Usage() string {
	return `finboard accounts

  Lists all accounts with their current balances.
`
}
func (*accountsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	accounts, err := a.store.Accounts(ctx)
	if err != nil {
		return fail(err)
	}

	var b strings.Builder
	b.WriteString("| Name | Type | Balance | ID |\n")
	b.WriteString("|---|---|---:|---|\n")
	for _, account := range accounts {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", account.Name, account.Type, account.Balance, account.ID)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type accountDeleteCmd struct{}

func (*accountDeleteCmd) Name() string     { return "delete-account" }
func (*accountDeleteCmd) Synopsis() string { return "deletes an account without transactions" }
func (*accountDeleteCmd) Usage() string {
	return `finboard delete-account <account-id>

  Deletes an account. Deletion is refused while transactions still
  reference the account; revert them first.
`
}
func (*accountDeleteCmd) SetFlags(_ *flag.FlagSet) {}

func (c *accountDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return fail(fmt.Errorf("expected exactly one account id"))
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	if err := a.ledger.DeleteAccount(ctx, f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted account %s.\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verifies account balances against their transactions" }
func (*checkCmd) Usage() string {
	return `finboard check

  Recomputes every account balance from its opening balance and its
  transactions and reports the first drift found.
`
}
func (*checkCmd) SetFlags(_ *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	if err := a.ledger.CheckIntegrity(ctx); err != nil {
		return fail(err)
	}
	fmt.Println("All account balances are consistent.")
	return subcommands.ExitSuccess
}
