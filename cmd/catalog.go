package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

type addCategoryCmd struct {
	name string
	typ  string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "create an expense or income category" }
func (*addCategoryCmd) Usage() string {
	return `pft add-category -name <name> [-type expense|income]

  Creates a category without subcategories.
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category name.")
	f.StringVar(&c.typ, "type", string(budget.Outgoing), "Category type, expense or income.")
}

func (c *addCategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dir, err := budget.ParseDirection(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		cat, err := s.ledger.AddCategory(c.name, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Created %s category %s: %q\n", cat.Type, cat.ID, cat.Name)
		return nil
	})
}

type addSubcategoryCmd struct {
	category string
	name     string
	typ      string
}

func (*addSubcategoryCmd) Name() string     { return "add-subcategory" }
func (*addSubcategoryCmd) Synopsis() string { return "add a subcategory to a category" }
func (*addSubcategoryCmd) Usage() string {
	return `pft add-subcategory -c <category> -name <name> [-type expense|income]

  Appends a subcategory to a category given by id or by name.
`
}

func (c *addSubcategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "Parent category id or name.")
	f.StringVar(&c.name, "name", "", "Subcategory name.")
	f.StringVar(&c.typ, "type", string(budget.Outgoing), "Type of the parent category, expense or income.")
}

func (c *addSubcategoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dir, err := budget.ParseDirection(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		parent, err := resolveCategory(s.ledger.Snapshot(), dir, c.category)
		if err != nil {
			return err
		}
		sub, err := s.ledger.AddSubcategory(parent, c.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Created subcategory %s: %q in %q\n", sub.ID, sub.Name, parent.Name)
		return nil
	})
}

type addAccountCmd struct {
	name    string
	typ     string
	balance string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create an account with its opening balance" }
func (*addAccountCmd) Usage() string {
	return `pft add-account -name <name> [-type cash|bank|credit-card] [-balance <amount>]

  Creates an account. A credit card account carries a negative balance for
  the amount owed.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name.")
	f.StringVar(&c.typ, "type", string(budget.BankAccount), "Account type: cash, bank or credit-card.")
	f.StringVar(&c.balance, "balance", "0", "Opening balance.")
}

func (c *addAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := budget.ParseAccountType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	balance, err := parseAmount(c.balance)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		a, err := s.ledger.AddAccount(budget.Account{Name: c.name, Type: typ, Balance: balance})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Created %s account %s: %q %s\n", a.Type, a.ID, a.Name, budget.M(a.Balance, s.ledger.Snapshot().Currency()))
		return nil
	})
}

type addPaymentMethodCmd struct {
	name    string
	typ     string
	account string
}

func (*addPaymentMethodCmd) Name() string     { return "add-payment-method" }
func (*addPaymentMethodCmd) Synopsis() string { return "create a payment method" }
func (*addPaymentMethodCmd) Usage() string {
	return `pft add-payment-method -name <name> [-type cash|debit-card|credit-card] [-account <account>]

  Creates a payment method. Expenses and incomes paid with it move the balance
  of its account; without an account they move no balance.
`
}

func (c *addPaymentMethodCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Payment method name.")
	f.StringVar(&c.typ, "type", string(budget.DebitCardPayment), "Payment method type: cash, debit-card or credit-card.")
	f.StringVar(&c.account, "account", "", "Account id or name.")
}

func (c *addPaymentMethodCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := budget.ParsePaymentType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		snap := s.ledger.Snapshot()
		pm := budget.PaymentMethod{Name: c.name, Type: typ}
		if c.account != "" {
			a, err := resolveAccount(snap, c.account)
			if err != nil {
				return err
			}
			pm.AccountID = a.ID
		}
		pm, err := s.ledger.AddPaymentMethod(pm)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Created payment method %s: %q on %q\n", pm.ID, pm.Name, snap.AccountName(pm.AccountID))
		return nil
	})
}

type currencyCmd struct{}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "show or change the display currency" }
func (*currencyCmd) Usage() string {
	return `pft currency [<code>]

  Prints the display currency, or sets it to the ISO 4217 code given.
  Amounts are not converted.
`
}

func (*currencyCmd) SetFlags(f *flag.FlagSet) {}

func (*currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expected at most one currency code.")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *session) error {
		if f.NArg() == 1 {
			if err := s.ledger.SetCurrency(f.Arg(0)); err != nil {
				return err
			}
		}
		fmt.Fprintln(stdout, s.ledger.Snapshot().Currency())
		return nil
	})
}
