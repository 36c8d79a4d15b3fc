package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

// rangeUsage documents the -r flag of reports.
const rangeUsage = "Date range as <from>..<to>, either side optional, dates as YYYY-MM-DD or relative like -1m. All dates when empty."

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their balance, and payment methods" }
func (*accountsCmd) Usage() string {
	return `pft accounts

  Lists the accounts with their current balance, the net worth, and the
  payment methods with the account they are bound to.
`
}
func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *session) error {
		printMarkdown(renderer.AccountsMarkdown(s.ledger.Snapshot()))
		return nil
	})
}

type categoriesCmd struct {
	typ string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories and their subcategories" }
func (*categoriesCmd) Usage() string {
	return `pft categories [-type expense|income]

  Lists the categories with their ids, both types when -type is empty.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Category type, expense or income.")
}

func (c *categoriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dirs := []budget.Direction{budget.Outgoing, budget.Incoming}
	if c.typ != "" {
		dir, err := budget.ParseDirection(c.typ)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		dirs = []budget.Direction{dir}
	}
	return withSession(ctx, func(s *session) error {
		snap := s.ledger.Snapshot()
		var md string
		for _, dir := range dirs {
			md += renderer.CategoriesMarkdown(snap, dir)
		}
		printMarkdown(md)
		return nil
	})
}

type journalCmd struct {
	period string
}

func (*journalCmd) Name() string     { return "journal" }
func (*journalCmd) Synopsis() string { return "list every transaction with the running total" }
func (*journalCmd) Usage() string {
	return `pft journal [-r <from>..<to>]

  Lists expenses, incomes and transfers in date order with the total balance
  of all accounts after each of them.

Usage Examples:
$ pft journal -r -1m..
`
}

func (c *journalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "r", "", rangeUsage)
}

func (c *journalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := budget.ParseRange(c.period)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		printMarkdown(renderer.JournalMarkdown(s.ledger.Snapshot(), r))
		return nil
	})
}

type ledgerCmd struct {
	account string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "show the debits and credits of one account" }
func (*ledgerCmd) Usage() string {
	return `pft ledger -account <account>

  Shows the T-account of an account given by id or by name: every movement
  with the running balance, ending with the current balance.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account id or name.")
}

func (c *ledgerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := c.account
	if ref == "" && f.NArg() == 1 {
		ref = f.Arg(0)
	}
	if ref == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		snap := s.ledger.Snapshot()
		a, err := resolveAccount(snap, ref)
		if err != nil {
			return err
		}
		md, err := renderer.AccountLedgerMarkdown(snap, a.ID)
		if err != nil {
			return err
		}
		printMarkdown(md)
		return nil
	})
}

type dashboardCmd struct {
	recent int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "summarize balances and spending" }
func (*dashboardCmd) Usage() string {
	return `pft dashboard [-recent <n>]

  Shows the net worth, cash, bank and credit card totals, the most recent
  expenses and the spending per category.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.recent, "recent", 5, "Number of recent expenses to show.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *session) error {
		printMarkdown(renderer.DashboardMarkdown(s.ledger.Snapshot(), c.recent))
		return nil
	})
}

type breakdownCmd struct {
	typ    string
	period string
}

func (*breakdownCmd) Name() string     { return "breakdown" }
func (*breakdownCmd) Synopsis() string { return "total expenses or incomes per category and subcategory" }
func (*breakdownCmd) Usage() string {
	return `pft breakdown [-type expense|income] [-r <from>..<to>]

  Totals the expenses, or incomes, of a date range per category and
  subcategory, largest first.

Usage Examples:
$ pft breakdown -r 2024-07-01..2024-07-31
`
}

func (c *breakdownCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", string(budget.Outgoing), "Transaction type, expense or income.")
	f.StringVar(&c.period, "r", "", rangeUsage)
}

func (c *breakdownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dir, err := budget.ParseDirection(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	r, err := budget.ParseRange(c.period)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		printMarkdown(renderer.BreakdownMarkdown(s.ledger.Snapshot().Breakdown(dir, r)))
		return nil
	})
}
