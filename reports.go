package budget

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Dashboard is the overview of accounts and recent spending.
type Dashboard struct {
	Currency string
	// Cash is the total of cash accounts.
	Cash decimal.Decimal
	// Bank is the total of bank accounts.
	Bank decimal.Decimal
	// CreditCardDue is the total of credit-card balances, negative when owed.
	CreditCardDue decimal.Decimal
	NetWorth      decimal.Decimal
	Recent        []Expense
	ByCategory    []Total
}

// Total is an amount attached to a name.
type Total struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

// Dashboard computes the overview with the most recent expenses.
//
// Expenses in a category that cannot be resolved are left out of ByCategory.
func (s Snapshot) Dashboard(recent int) Dashboard {
	d := Dashboard{Currency: s.Currency()}
	for _, a := range s.Accounts {
		switch a.Type {
		case CashAccount:
			d.Cash = d.Cash.Add(a.Balance)
		case BankAccount:
			d.Bank = d.Bank.Add(a.Balance)
		case CreditCardAccount:
			d.CreditCardDue = d.CreditCardDue.Add(a.Balance)
		}
	}
	d.NetWorth = s.Total()

	// expenses are kept most recent first.
	d.Recent = slices.Clone(s.Expenses[:min(max(recent, 0), len(s.Expenses))])

	totals := make(map[string]decimal.Decimal)
	for _, e := range s.Expenses {
		if _, ok := s.Category(e.CategoryID); !ok {
			continue
		}
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.Amount)
	}
	d.ByCategory = sortedTotals(totals, s.CategoryName)
	return d
}

// sortedTotals orders totals by decreasing amount then name.
func sortedTotals(totals map[string]decimal.Decimal, name func(string) string) []Total {
	list := make([]Total, 0, len(totals))
	for id, amount := range totals {
		list = append(list, Total{ID: id, Name: name(id), Amount: amount})
	}
	slices.SortFunc(list, func(a, b Total) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return list
}

// Breakdown is the split of expenses or incomes per category.
type Breakdown struct {
	Direction  Direction
	Range      Range
	Currency   string
	Total      decimal.Decimal
	Categories []CategoryTotal
}

// CategoryTotal is the total of one category and of each of its subcategories.
type CategoryTotal struct {
	Total
	Subcategories []Total
}

// Breakdown totals the expenses or incomes within r per category and
// subcategory. Unresolvable categories are reported under NotAvailable.
func (s Snapshot) Breakdown(dir Direction, r Range) Breakdown {
	var flows []Flow
	if dir == Incoming {
		for _, i := range s.Incomes {
			flows = append(flows, Flow(i))
		}
	} else {
		for _, e := range s.Expenses {
			flows = append(flows, Flow(e))
		}
	}

	b := Breakdown{Direction: dir, Range: r, Currency: s.Currency()}
	cats := make(map[string]decimal.Decimal)
	subs := make(map[string]map[string]decimal.Decimal)
	for _, f := range flows {
		if !r.Contains(f.Date) {
			continue
		}
		b.Total = b.Total.Add(f.Amount)
		cats[f.CategoryID] = cats[f.CategoryID].Add(f.Amount)
		if subs[f.CategoryID] == nil {
			subs[f.CategoryID] = make(map[string]decimal.Decimal)
		}
		subs[f.CategoryID][f.SubcategoryID] = subs[f.CategoryID][f.SubcategoryID].Add(f.Amount)
	}
	for _, t := range sortedTotals(cats, s.CategoryName) {
		subName := func(id string) string { return s.SubcategoryName(t.ID, id) }
		b.Categories = append(b.Categories, CategoryTotal{Total: t, Subcategories: sortedTotals(subs[t.ID], subName)})
	}
	return b
}
