package renderer

import (
	"github.com/etnz/budget"
)

// Journal is the chronological list of all records with the running total.
type Journal struct {
	Currency string
	Range    budget.Range
	// Start is the total of all accounts before the first entry.
	Start   budget.Money
	End     budget.Money
	Entries []JournalEntry
}

// JournalEntry is a line of the journal. Debit and Credit are zero for transfers.
type JournalEntry struct {
	Date        budget.Date
	Kind        budget.Kind
	Description string
	Debit       budget.Money
	Credit      budget.Money
	Amount      budget.Money
	Balance     budget.Money
}

// NewJournal builds the journal of s restricted to the entries within r.
// Balances always account for the entries before r.
func NewJournal(s budget.Snapshot, r budget.Range) *Journal {
	cur := s.Currency()
	j := &Journal{Currency: cur, Range: r}
	entries := s.Journal()
	start := s.Total()
	for _, e := range entries {
		start = start.Sub(e.Effect)
	}
	for _, e := range entries {
		if !r.From.IsZero() && e.Date.Before(r.From) {
			start = e.Balance
			continue
		}
		if !r.Contains(e.Date) {
			continue
		}
		j.Entries = append(j.Entries, JournalEntry{
			Date:        e.Date,
			Kind:        e.Kind,
			Description: e.Description,
			Debit:       budget.M(e.Debit, cur),
			Credit:      budget.M(e.Credit, cur),
			Amount:      budget.M(e.Amount, cur),
			Balance:     budget.M(e.Balance, cur),
		})
	}
	j.Start = budget.M(start, cur)
	j.End = j.Start
	if n := len(j.Entries); n > 0 {
		j.End = j.Entries[n-1].Balance
	}
	return j
}

// AccountLedger is the T-account of one account.
type AccountLedger struct {
	Account budget.Account
	Start   budget.Money
	Balance budget.Money
	Lines   []AccountLine
}

// AccountLine is one movement of an account.
type AccountLine struct {
	Date        budget.Date
	Description string
	In          budget.Money
	Out         budget.Money
	Balance     budget.Money
}

// NewAccountLedger builds the T-account of accountID.
func NewAccountLedger(s budget.Snapshot, accountID string) (*AccountLedger, error) {
	lines, err := s.AccountLedger(accountID)
	if err != nil {
		return nil, err
	}
	account, _ := s.Account(accountID)
	cur := s.Currency()
	l := &AccountLedger{Account: account, Balance: budget.M(account.Balance, cur)}
	start := account.Balance
	for _, line := range lines {
		start = start.Sub(line.In).Add(line.Out)
		l.Lines = append(l.Lines, AccountLine{
			Date:        line.Date,
			Description: line.Description,
			In:          budget.M(line.In, cur),
			Out:         budget.M(line.Out, cur),
			Balance:     budget.M(line.Balance, cur),
		})
	}
	l.Start = budget.M(start, cur)
	return l, nil
}

// Dashboard is the overview of balances and recent spending.
type Dashboard struct {
	Cash          budget.Money
	Bank          budget.Money
	CreditCardDue budget.Money
	NetWorth      budget.Money
	Recent        []RecentExpense
	ByCategory    []Total
}

// RecentExpense is an expense with its category resolved.
type RecentExpense struct {
	Date        budget.Date
	Description string
	Category    string
	Amount      budget.Money
}

// Total is a named amount.
type Total struct {
	Name   string
	Amount budget.Money
}

// NewDashboard builds the dashboard of s with the recent most recent expenses.
func NewDashboard(s budget.Snapshot, recent int) *Dashboard {
	d := s.Dashboard(recent)
	cur := d.Currency
	v := &Dashboard{
		Cash:          budget.M(d.Cash, cur),
		Bank:          budget.M(d.Bank, cur),
		CreditCardDue: budget.M(d.CreditCardDue, cur),
		NetWorth:      budget.M(d.NetWorth, cur),
	}
	for _, e := range d.Recent {
		v.Recent = append(v.Recent, RecentExpense{
			Date:        e.Date,
			Description: e.Description,
			Category:    s.CategoryName(e.CategoryID),
			Amount:      budget.M(e.Amount, cur),
		})
	}
	v.ByCategory = totals(d.ByCategory, cur)
	return v
}

// Breakdown is the split of expenses or incomes per category.
type Breakdown struct {
	Title      string
	Range      budget.Range
	Total      budget.Money
	Categories []CategoryTotal
}

// CategoryTotal is a category total with its subcategories.
type CategoryTotal struct {
	Total
	Subcategories []Total
}

// NewBreakdown converts b.
func NewBreakdown(b budget.Breakdown) *Breakdown {
	v := &Breakdown{Title: "Expenses", Range: b.Range, Total: budget.M(b.Total, b.Currency)}
	if b.Direction == budget.Incoming {
		v.Title = "Incomes"
	}
	for _, c := range b.Categories {
		v.Categories = append(v.Categories, CategoryTotal{
			Total:         Total{Name: c.Name, Amount: budget.M(c.Amount, b.Currency)},
			Subcategories: totals(c.Subcategories, b.Currency),
		})
	}
	return v
}

func totals(list []budget.Total, cur string) []Total {
	var result []Total
	for _, t := range list {
		result = append(result, Total{Name: t.Name, Amount: budget.M(t.Amount, cur)})
	}
	return result
}

// Accounts lists accounts and payment methods.
type Accounts struct {
	Currency       string
	NetWorth       budget.Money
	Accounts       []AccountBalance
	PaymentMethods []PaymentMethod
}

// AccountBalance is an account with its balance.
type AccountBalance struct {
	ID      string
	Name    string
	Type    budget.AccountType
	Balance budget.Money
}

// PaymentMethod is a payment method with its account resolved.
type PaymentMethod struct {
	ID      string
	Name    string
	Type    budget.PaymentType
	Account string
}

// NewAccounts builds the account list of s.
func NewAccounts(s budget.Snapshot) *Accounts {
	cur := s.Currency()
	v := &Accounts{Currency: cur, NetWorth: budget.M(s.Total(), cur)}
	for _, a := range s.Accounts {
		v.Accounts = append(v.Accounts, AccountBalance{ID: a.ID, Name: a.Name, Type: a.Type, Balance: budget.M(a.Balance, cur)})
	}
	for _, pm := range s.PaymentMethods {
		account := ""
		if pm.AccountID != "" {
			account = s.AccountName(pm.AccountID)
		}
		v.PaymentMethods = append(v.PaymentMethods, PaymentMethod{ID: pm.ID, Name: pm.Name, Type: pm.Type, Account: account})
	}
	return v
}

// Categories lists the categories of one direction.
type Categories struct {
	Title      string
	Categories []budget.Category
}

// NewCategories builds the category list of dir.
func NewCategories(s budget.Snapshot, dir budget.Direction) *Categories {
	v := &Categories{Title: "Expense categories", Categories: s.Categories(dir)}
	if dir == budget.Incoming {
		v.Title = "Income categories"
	}
	return v
}
