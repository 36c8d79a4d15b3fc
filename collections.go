package budget

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Collection names a unit of persistence: an array of records of one type,
// or the settings document.
type Collection string

const (
	Expenses          Collection = "expenses"
	Incomes           Collection = "incomes"
	Transfers         Collection = "transfers"
	ExpenseCategories Collection = "expense-categories"
	IncomeCategories  Collection = "income-categories"
	Accounts          Collection = "accounts"
	PaymentMethods    Collection = "payment-methods"
	SettingsDocument  Collection = "settings"
)

// Collections lists every collection, reference data after transactions.
var Collections = []Collection{
	Expenses, Incomes, Transfers,
	ExpenseCategories, IncomeCategories,
	Accounts, PaymentMethods,
	SettingsDocument,
}

// ParseCollection checks that s is a known collection name.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !slices.Contains(Collections, c) {
		return "", fmt.Errorf("unknown collection %q: %w", s, ErrInvalid)
	}
	return c, nil
}

// Snapshot is a consistent copy of every collection.
//
// Slices are shared with the store and must not be modified in place.
type Snapshot struct {
	Expenses          []Expense
	Incomes           []Income
	Transfers         []Transfer
	ExpenseCategories []Category
	IncomeCategories  []Category
	Accounts          []Account
	PaymentMethods    []PaymentMethod
	Settings          Settings
}

// Value returns the value of collection c.
func (s Snapshot) Value(c Collection) any {
	switch c {
	case Expenses:
		return s.Expenses
	case Incomes:
		return s.Incomes
	case Transfers:
		return s.Transfers
	case ExpenseCategories:
		return s.ExpenseCategories
	case IncomeCategories:
		return s.IncomeCategories
	case Accounts:
		return s.Accounts
	case PaymentMethods:
		return s.PaymentMethods
	case SettingsDocument:
		return s.Settings
	}
	return nil
}

// set replaces the value of collection c, v must have the collection's type.
func (s *Snapshot) set(c Collection, v any) error {
	ok := true
	switch c {
	case Expenses:
		s.Expenses, ok = v.([]Expense)
	case Incomes:
		s.Incomes, ok = v.([]Income)
	case Transfers:
		s.Transfers, ok = v.([]Transfer)
	case ExpenseCategories:
		s.ExpenseCategories, ok = v.([]Category)
	case IncomeCategories:
		s.IncomeCategories, ok = v.([]Category)
	case Accounts:
		s.Accounts, ok = v.([]Account)
	case PaymentMethods:
		s.PaymentMethods, ok = v.([]PaymentMethod)
	case SettingsDocument:
		s.Settings, ok = v.(Settings)
	default:
		return fmt.Errorf("unknown collection %q: %w", c, ErrInvalid)
	}
	if !ok {
		return fmt.Errorf("collection %q cannot hold a %T: %w", c, v, ErrInvalid)
	}
	return nil
}

// DecodeCollection parses the JSON value of collection c.
func DecodeCollection(c Collection, data []byte) (any, error) {
	var s Snapshot
	var err error
	switch c {
	case Expenses:
		err = json.Unmarshal(data, &s.Expenses)
	case Incomes:
		err = json.Unmarshal(data, &s.Incomes)
	case Transfers:
		err = json.Unmarshal(data, &s.Transfers)
	case ExpenseCategories:
		err = json.Unmarshal(data, &s.ExpenseCategories)
	case IncomeCategories:
		err = json.Unmarshal(data, &s.IncomeCategories)
	case Accounts:
		err = json.Unmarshal(data, &s.Accounts)
	case PaymentMethods:
		err = json.Unmarshal(data, &s.PaymentMethods)
	case SettingsDocument:
		err = json.Unmarshal(data, &s.Settings)
	default:
		return nil, fmt.Errorf("unknown collection %q: %w", c, ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot decode collection %q: %w", c, err)
	}
	v := s.Value(c)
	if isNull(v) {
		// "null" documents read as empty, never as nil slices.
		v = emptyValue(c)
	}
	return v, nil
}

// IsEmpty reports whether the collection value holds no record.
// Settings are empty when no currency was chosen.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case []Expense:
		return len(x) == 0
	case []Income:
		return len(x) == 0
	case []Transfer:
		return len(x) == 0
	case []Category:
		return len(x) == 0
	case []Account:
		return len(x) == 0
	case []PaymentMethod:
		return len(x) == 0
	case Settings:
		return x.Currency == ""
	}
	return v == nil
}

func isNull(v any) bool {
	switch x := v.(type) {
	case []Expense:
		return x == nil
	case []Income:
		return x == nil
	case []Transfer:
		return x == nil
	case []Category:
		return x == nil
	case []Account:
		return x == nil
	case []PaymentMethod:
		return x == nil
	}
	return false
}

func emptyValue(c Collection) any {
	var s Snapshot
	s.Expenses, s.Incomes, s.Transfers = []Expense{}, []Income{}, []Transfer{}
	s.ExpenseCategories, s.IncomeCategories = []Category{}, []Category{}
	s.Accounts, s.PaymentMethods = []Account{}, []PaymentMethod{}
	return s.Value(c)
}

// defaultValue is the value of collection c when nothing was stored yet.
func defaultValue(c Collection) any { return DefaultSnapshot().Value(c) }

// Merge returns s with the collections it misses taken from base.
// Settings without a currency are missing.
func (s Snapshot) Merge(base Snapshot) Snapshot {
	for _, c := range Collections {
		v := s.Value(c)
		if isNull(v) || (c == SettingsDocument && IsEmpty(v)) {
			_ = s.set(c, base.Value(c))
		}
	}
	return s
}
