package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

type transferCmd struct {
	update bool

	id     string
	date   string
	desc   string
	amount string
	from   string
	to     string
}

func (c *transferCmd) Name() string {
	if c.update {
		return "update-transfer"
	}
	return "transfer"
}

func (c *transferCmd) Synopsis() string {
	if c.update {
		return "modify a transfer between accounts"
	}
	return "move money from one account to another"
}

func (c *transferCmd) Usage() string {
	if c.update {
		return `pft update-transfer -id <id> [-d <date>] [-desc <text>] [-a <amount>] [-from <account>] [-to <account>]

  Modifies a transfer. Only the flags present change it.
`
	}
	return `pft transfer -a <amount> -from <account> -to <account> [-desc <text>] [-d <date>]

  Records a transfer. Accounts are given by id or by name. Overdrafts are
  allowed, a transfer to the same account is not.

Usage Examples:
$ pft transfer -a 500 -from "Checking Account" -to acc_bank2 -desc "Monthly savings"
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	date, desc := "0d", "Transfer"
	if c.update {
		date, desc = "", ""
		f.StringVar(&c.id, "id", "", "Id of the transfer to modify.")
	}
	f.StringVar(&c.date, "d", date, "Date, as YYYY-MM-DD or relative to today like -1d.")
	f.StringVar(&c.desc, "desc", desc, "Description.")
	f.StringVar(&c.amount, "a", "", "Amount, strictly positive.")
	f.StringVar(&c.from, "from", "", "Source account id or name.")
	f.StringVar(&c.to, "to", "", "Destination account id or name.")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.update && c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required.")
		return subcommands.ExitUsageError
	}
	set := visited(f)
	apply := func(name string) bool { return !c.update || set[name] }
	return withSession(ctx, func(s *session) error {
		snap := s.ledger.Snapshot()
		var t budget.Transfer
		if c.update {
			i := slices.IndexFunc(snap.Transfers, func(t budget.Transfer) bool { return t.ID == c.id })
			if i < 0 {
				return fmt.Errorf("cannot update transfer %q: %w", c.id, budget.ErrNotFound)
			}
			t = snap.Transfers[i]
		}
		var err error
		if apply("d") {
			if t.Date, err = budget.ParseDate(c.date); err != nil {
				return err
			}
		}
		if apply("desc") {
			t.Description = c.desc
		}
		if apply("a") {
			if t.Amount, err = parseAmount(c.amount); err != nil {
				return err
			}
		}
		if apply("from") && c.from != "" {
			a, err := resolveAccount(snap, c.from)
			if err != nil {
				return err
			}
			t.FromAccountID = a.ID
		}
		if apply("to") && c.to != "" {
			a, err := resolveAccount(snap, c.to)
			if err != nil {
				return err
			}
			t.ToAccountID = a.ID
		}

		verb := "Updated"
		if c.update {
			err = s.ledger.UpdateTransfer(t)
		} else {
			verb = "Recorded"
			t, err = s.ledger.AddTransfer(t)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s transfer %s: %s %s from %q to %q\n", verb, t.ID, t.Date,
			budget.M(t.Amount, snap.Currency()), snap.AccountName(t.FromAccountID), snap.AccountName(t.ToAccountID))
		return nil
	})
}
