package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/ewallis/finboard"
)

type txCmd struct {
	account  string
	amount   float64
	txType   string
	category string
	date     string
	desc     string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "records an income or expense transaction" }
func (*txCmd) Usage() string {
	return `finboard tx -a <account> -amount <amount> -c <category> [-t income|expense] [-d <date>] [-m <description>]

  Records a transaction against an account and updates its balance by the
  signed amount. The amount is always positive, the sign comes from the type.

Usage Examples:
$ finboard tx -a checking -amount 1000 -c salary -t income
$ finboard tx -a checking -amount 42.50 -c groceries
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id.")
	f.Float64Var(&c.amount, "amount", 0, "Transaction amount, always positive.")
	f.StringVar(&c.txType, "t", "expense", "Transaction type (income or expense).")
	f.StringVar(&c.category, "c", "", "Transaction category.")
	f.StringVar(&c.date, "d", "", "Transaction date (2006-01-02). Defaults to today.")
	f.StringVar(&c.desc, "m", "", "Free-form description.")
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txType, err := finboard.ParseTxType(c.txType)
	if err != nil {
		return fail(err)
	}
	var date time.Time
	if c.date != "" {
		date, err = time.Parse("2006-01-02", c.date)
		if err != nil {
			return fail(fmt.Errorf("could not parse date %q: %w", c.date, err))
		}
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	tx, err := a.ledger.Apply(ctx, finboard.Transaction{
		AccountID:   c.account,
		Amount:      finboard.M(c.amount, ""),
		Type:        txType,
		Category:    c.category,
		Date:        date,
		Description: c.desc,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %s on %q (transaction %s).\n", tx.Type, tx.Amount, tx.AccountID, tx.ID)
	return subcommands.ExitSuccess
}

type revertCmd struct{}

func (*revertCmd) Name() string     { return "revert" }
func (*revertCmd) Synopsis() string { return "reverts an applied transaction" }
func (*revertCmd) Usage() string {
	return `finboard revert <transaction-id>

  Undoes a previously applied transaction: the account balance is restored
  to its exact pre-apply value and the transaction record is removed.
`
}
func (*revertCmd) SetFlags(_ *flag.FlagSet) {}

func (c *revertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return fail(fmt.Errorf("expected exactly one transaction id"))
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	if err := a.ledger.Revert(ctx, f.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("Reverted transaction %s.\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type transactionsCmd struct {
	account string
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "lists the applied transactions" }
func (*transactionsCmd) Usage() string {
	return `finboard transactions [-a <account>]

  Lists the transactions currently applied, oldest first.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Only list transactions of this account.")
}

func (c *transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.close()

	txs, err := a.store.Transactions(ctx)
	if err != nil {
		return fail(err)
	}

	var b strings.Builder
	b.WriteString("| Date | Account | Type | Category | Amount | ID |\n")
	b.WriteString("|---|---|---|---|---:|---|\n")
	for _, tx := range txs {
		if c.account != "" && tx.AccountID != c.account {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Date.Format("2006-01-02"), tx.AccountID, tx.Type, tx.Category, tx.Signed().SignedString(), tx.ID)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
