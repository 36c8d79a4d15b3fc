package budget

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Kind is the kind of record behind a journal entry.
type Kind string

const (
	ExpenseKind  Kind = "expense"
	IncomeKind   Kind = "income"
	TransferKind Kind = "transfer"
)

// Entry is one line of the journal.
//
// Expenses are debits, incomes are credits and transfers are neutral
// movements with neither.
type Entry struct {
	Date        Date
	ID          string
	Kind        Kind
	Description string
	Amount      decimal.Decimal
	Debit       decimal.Decimal
	Credit      decimal.Decimal

	// Effect is the change of the total of all accounts.
	Effect decimal.Decimal
	// Balance is the total of all accounts after this entry.
	Balance decimal.Decimal
}

// Total is the sum of every account balance.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Journal lists every expense, income and transfer in chronological order
// with the running total of all accounts.
func (s Snapshot) Journal() []Entry {
	entries := make([]Entry, 0, len(s.Expenses)+len(s.Incomes)+len(s.Transfers))
	for _, e := range s.Expenses {
		x := Entry{Date: e.Date, ID: e.ID, Kind: ExpenseKind, Description: e.Description, Amount: e.Amount, Debit: e.Amount}
		if _, ok := s.BoundAccount(e.PaymentMethodID); ok {
			x.Effect = e.Amount.Neg()
		}
		entries = append(entries, x)
	}
	for _, i := range s.Incomes {
		x := Entry{Date: i.Date, ID: i.ID, Kind: IncomeKind, Description: i.Description, Amount: i.Amount, Credit: i.Amount}
		if _, ok := s.BoundAccount(i.PaymentMethodID); ok {
			x.Effect = i.Amount
		}
		entries = append(entries, x)
	}
	for _, t := range s.Transfers {
		x := Entry{Date: t.Date, ID: t.ID, Kind: TransferKind, Amount: t.Amount}
		x.Description = fmt.Sprintf("Transfer from %s to %s", s.AccountName(t.FromAccountID), s.AccountName(t.ToAccountID))
		if _, ok := s.Account(t.FromAccountID); ok {
			x.Effect = x.Effect.Sub(t.Amount)
		}
		if _, ok := s.Account(t.ToAccountID); ok {
			x.Effect = x.Effect.Add(t.Amount)
		}
		entries = append(entries, x)
	}
	sortEntries(entries)

	effects := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		effects[i] = e.Effect
	}
	_, balances := RunningBalances(s.Total(), effects)
	for i := range entries {
		entries[i].Balance = balances[i]
	}
	return entries
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// LedgerLine is one line of the T-account of a single account.
type LedgerLine struct {
	Date        Date
	ID          string
	Kind        Kind
	Description string
	In          decimal.Decimal
	Out         decimal.Decimal
	Balance     decimal.Decimal
}

// AccountLedger lists the movements of one account in chronological order
// with its running balance.
func (s Snapshot) AccountLedger(accountID string) ([]LedgerLine, error) {
	account, ok := s.Account(accountID)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}
	bound := func(pm string) bool {
		a, ok := s.BoundAccount(pm)
		return ok && a.ID == accountID
	}
	var lines []LedgerLine
	for _, e := range s.Expenses {
		if bound(e.PaymentMethodID) {
			lines = append(lines, LedgerLine{Date: e.Date, ID: e.ID, Kind: ExpenseKind, Description: e.Description, Out: e.Amount})
		}
	}
	for _, i := range s.Incomes {
		if bound(i.PaymentMethodID) {
			lines = append(lines, LedgerLine{Date: i.Date, ID: i.ID, Kind: IncomeKind, Description: i.Description, In: i.Amount})
		}
	}
	for _, t := range s.Transfers {
		switch accountID {
		case t.FromAccountID:
			lines = append(lines, LedgerLine{Date: t.Date, ID: t.ID, Kind: TransferKind, Description: "Transfer to " + s.AccountName(t.ToAccountID), Out: t.Amount})
		case t.ToAccountID:
			lines = append(lines, LedgerLine{Date: t.Date, ID: t.ID, Kind: TransferKind, Description: "Transfer from " + s.AccountName(t.FromAccountID), In: t.Amount})
		}
	}
	slices.SortFunc(lines, func(a, b LedgerLine) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	effects := make([]decimal.Decimal, len(lines))
	for i, l := range lines {
		effects[i] = l.In.Sub(l.Out)
	}
	_, balances := RunningBalances(account.Balance, effects)
	for i := range lines {
		lines[i].Balance = balances[i]
	}
	return lines, nil
}

// RunningBalances replays effects in order from the starting balance implied
// by current: start is current minus the sum of all effects, and the last
// balance is current.
func RunningBalances(current decimal.Decimal, effects []decimal.Decimal) (start decimal.Decimal, balances []decimal.Decimal) {
	start = current
	for _, e := range effects {
		start = start.Sub(e)
	}
	balances = make([]decimal.Decimal, len(effects))
	running := start
	for i, e := range effects {
		running = running.Add(e)
		balances[i] = running
	}
	return start, balances
}
