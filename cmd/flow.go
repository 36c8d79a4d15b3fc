package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// flowCmd records or modifies an expense or an income.
type flowCmd struct {
	dir    budget.Direction
	update bool

	id          string
	date        string
	desc        string
	amount      string
	category    string
	subcategory string
	payment     string
}

func (c *flowCmd) kind() string { return string(c.dir) }

func (c *flowCmd) Name() string {
	if c.update {
		return "update-" + c.kind()
	}
	return "add-" + c.kind()
}

func (c *flowCmd) Synopsis() string {
	if c.update {
		return fmt.Sprintf("modify an %s", c.kind())
	}
	return fmt.Sprintf("record an %s", c.kind())
}

func (c *flowCmd) Usage() string {
	if c.update {
		return fmt.Sprintf(`pft %s -id <id> [-d <date>] [-desc <text>] [-a <amount>] [-c <category>] [-s <subcategory>] [-pm <payment method>]

  Modifies the %[2]s with the given id. Only the flags present change the
  %[2]s; balances are corrected for the old and the new amounts.
`, c.Name(), c.kind())
	}
	return fmt.Sprintf(`pft %s -desc <text> -a <amount> -c <category> -s <subcategory> -pm <payment method> [-d <date>]

  Records an %[2]s. Categories, subcategories and payment methods are given by
  id or by name. The balance of the account bound to the payment method is
  updated.

Usage Examples:
$ pft %[1]s -desc "Weekly groceries" -a 150.75 -c "Food & Dining" -s Groceries -pm pm_debit1
`, c.Name(), c.kind())
}

func (c *flowCmd) SetFlags(f *flag.FlagSet) {
	date := "0d"
	if c.update {
		date = ""
		f.StringVar(&c.id, "id", "", fmt.Sprintf("Id of the %s to modify.", c.kind()))
	}
	f.StringVar(&c.date, "d", date, "Date, as YYYY-MM-DD or relative to today like -1d.")
	f.StringVar(&c.desc, "desc", "", "Description.")
	f.StringVar(&c.amount, "a", "", "Amount, strictly positive.")
	f.StringVar(&c.category, "c", "", "Category id or name.")
	f.StringVar(&c.subcategory, "s", "", "Subcategory id or name.")
	f.StringVar(&c.payment, "pm", "", "Payment method id or name.")
}

func (c *flowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.update && c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required.")
		return subcommands.ExitUsageError
	}
	set := visited(f)
	return withSession(ctx, func(s *session) error {
		snap := s.ledger.Snapshot()
		var base budget.Flow
		if c.update {
			old, ok := c.lookup(snap)
			if !ok {
				return fmt.Errorf("cannot update %s %q: %w", c.kind(), c.id, budget.ErrNotFound)
			}
			base = old
		}
		rec, err := c.build(snap, base, func(name string) bool { return !c.update || set[name] })
		if err != nil {
			return err
		}
		rec, err = c.save(s.ledger, rec)
		if err != nil {
			return err
		}
		verb := "Recorded"
		if c.update {
			verb = "Updated"
		}
		fmt.Fprintf(stdout, "%s %s %s: %s %q %s\n", verb, c.kind(), rec.ID, rec.Date, rec.Description, budget.M(rec.Amount, snap.Currency()))
		return nil
	})
}

func (c *flowCmd) lookup(snap budget.Snapshot) (budget.Flow, bool) {
	if c.dir == budget.Incoming {
		i := slices.IndexFunc(snap.Incomes, func(r budget.Income) bool { return r.ID == c.id })
		if i < 0 {
			return budget.Flow{}, false
		}
		return budget.Flow(snap.Incomes[i]), true
	}
	i := slices.IndexFunc(snap.Expenses, func(r budget.Expense) bool { return r.ID == c.id })
	if i < 0 {
		return budget.Flow{}, false
	}
	return budget.Flow(snap.Expenses[i]), true
}

// build applies the flags selected by apply on top of rec.
func (c *flowCmd) build(snap budget.Snapshot, rec budget.Flow, apply func(string) bool) (budget.Flow, error) {
	var err error
	if apply("d") {
		if rec.Date, err = budget.ParseDate(c.date); err != nil {
			return rec, err
		}
	}
	if apply("desc") {
		rec.Description = c.desc
	}
	if apply("a") {
		if rec.Amount, err = parseAmount(c.amount); err != nil {
			return rec, err
		}
	}
	if apply("c") && c.category != "" {
		cat, err := resolveCategory(snap, c.dir, c.category)
		if err != nil {
			return rec, err
		}
		rec.CategoryID = cat.ID
	}
	if apply("s") && c.subcategory != "" {
		cat, err := resolveCategory(snap, c.dir, rec.CategoryID)
		if err != nil {
			return rec, err
		}
		sub, err := resolveSubcategory(cat, c.subcategory)
		if err != nil {
			return rec, err
		}
		rec.SubcategoryID = sub.ID
	}
	if apply("pm") && c.payment != "" {
		pm, err := resolvePaymentMethod(snap, c.payment)
		if err != nil {
			return rec, err
		}
		rec.PaymentMethodID = pm.ID
	}
	return rec, nil
}

func (c *flowCmd) save(l *budget.Ledger, rec budget.Flow) (budget.Flow, error) {
	switch {
	case c.dir == budget.Incoming && c.update:
		return rec, l.UpdateIncome(budget.Income(rec))
	case c.dir == budget.Incoming:
		i, err := l.AddIncome(budget.Income(rec))
		return budget.Flow(i), err
	case c.update:
		return rec, l.UpdateExpense(budget.Expense(rec))
	default:
		e, err := l.AddExpense(budget.Expense(rec))
		return budget.Flow(e), err
	}
}

// deleteCmd deletes records of one collection by id.
type deleteCmd struct {
	collection budget.Collection
}

// kind is the singular of the collection name.
func (c *deleteCmd) kind() string {
	switch c.collection {
	case budget.Incomes:
		return "income"
	case budget.Transfers:
		return "transfer"
	default:
		return "expense"
	}
}

func (c *deleteCmd) Name() string     { return "delete-" + c.kind() }
func (c *deleteCmd) Synopsis() string { return fmt.Sprintf("delete %ss", c.kind()) }
func (c *deleteCmd) Usage() string {
	return fmt.Sprintf(`pft %s <id>...

  Deletes the %[2]ss with the given ids and reverses their effect on the
  account balances.
`, c.Name(), c.kind())
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing %s id.\n", c.kind())
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		del := s.ledger.DeleteExpense
		switch c.collection {
		case budget.Incomes:
			del = s.ledger.DeleteIncome
		case budget.Transfers:
			del = s.ledger.DeleteTransfer
		}
		for _, id := range f.Args() {
			if err := del(id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted %s %s\n", c.kind(), id)
		}
		return nil
	})
}

// visited returns the names of the flags set on the command line.
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return d, fmt.Errorf("invalid amount %q: %w", s, budget.ErrInvalid)
	}
	return d, nil
}
