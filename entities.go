package budget

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of money pool an Account is.
type AccountType string

const (
	CashAccount       AccountType = "cash"
	BankAccount       AccountType = "bank"
	CreditCardAccount AccountType = "credit-card"
)

// ParseAccountType parses "cash", "bank" or "credit-card".
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case CashAccount, BankAccount, CreditCardAccount:
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q: %w", s, ErrInvalid)
}

// Account is a named money pool.
//
// A credit-card account carries a negative balance for the amount owed.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    AccountType     `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// PaymentType is the kind of a PaymentMethod.
type PaymentType string

const (
	CashPayment       PaymentType = "cash"
	DebitCardPayment  PaymentType = "debit-card"
	CreditCardPayment PaymentType = "credit-card"
)

// ParsePaymentType parses "cash", "debit-card" or "credit-card".
func ParsePaymentType(s string) (PaymentType, error) {
	switch t := PaymentType(s); t {
	case CashPayment, DebitCardPayment, CreditCardPayment:
		return t, nil
	}
	return "", fmt.Errorf("unknown payment method type %q: %w", s, ErrInvalid)
}

// PaymentMethod is a means of paying or receiving money.
//
// AccountID is optional: a payment method bound to no account has no effect
// on balances.
type PaymentMethod struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      PaymentType `json:"type"`
	AccountID string      `json:"accountId,omitempty"`
}

// Direction tells whether a category groups expenses or incomes.
type Direction string

const (
	Outgoing Direction = "expense"
	Incoming Direction = "income"
)

// ParseDirection parses "expense" or "income".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Outgoing, Incoming:
		return d, nil
	}
	return "", fmt.Errorf("unknown category type %q, want %q or %q: %w", s, Outgoing, Incoming, ErrInvalid)
}

// categories returns the collection holding categories of this direction.
func (d Direction) categories() Collection {
	if d == Incoming {
		return IncomeCategories
	}
	return ExpenseCategories
}

type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category groups transactions of one direction.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          Direction     `json:"type"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory returns the subcategory with this id.
func (c Category) Subcategory(id string) (Subcategory, bool) {
	for _, s := range c.Subcategories {
		if s.ID == id {
			return s, true
		}
	}
	return Subcategory{}, false
}

// Settings is the per-user settings document.
type Settings struct {
	Currency string `json:"currency"`
}

// UnmarshalJSON also accepts a bare currency string, the way settings were
// first stored by guests.
func (s *Settings) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &s.Currency)
	}
	type plain Settings
	return json.Unmarshal(data, (*plain)(s))
}
