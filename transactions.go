package budget

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Flow is the shape shared by expenses and incomes: money leaving or entering
// through a payment method.
type Flow struct {
	ID              string          `json:"id"`
	Date            Date            `json:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      string          `json:"categoryId"`
	SubcategoryID   string          `json:"subcategoryId"`
	PaymentMethodID string          `json:"paymentMethodId"`
}

// Expense decreases the balance of the account bound to its payment method.
type Expense Flow

// Income increases the balance of the account bound to its payment method.
type Income Flow

// Validate checks the fields required to record the flow.
// The ID is not checked, the ledger assigns it.
func (f Flow) Validate() error {
	var c checker
	c.date("date", f.Date)
	c.required("description", f.Description)
	c.positive("amount", f.Amount)
	c.required("category", f.CategoryID)
	c.required("subcategory", f.SubcategoryID)
	c.required("payment method", f.PaymentMethodID)
	return c.err()
}

func (f Flow) normalize() Flow {
	f.Description = strings.TrimSpace(f.Description)
	return f
}

func (e Expense) Validate() error { return Flow(e).Validate() }
func (i Income) Validate() error  { return Flow(i).Validate() }

// Transfer moves money from one account to another.
//
// Unlike expenses and incomes it references accounts directly.
type Transfer struct {
	ID            string          `json:"id"`
	Date          Date            `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
}

// Validate checks the transfer. Overdrafts are allowed.
func (t Transfer) Validate() error {
	var c checker
	c.date("date", t.Date)
	c.required("description", t.Description)
	c.positive("amount", t.Amount)
	c.required("source account", t.FromAccountID)
	c.required("destination account", t.ToAccountID)
	if t.FromAccountID != "" && t.FromAccountID == t.ToAccountID {
		c = append(c, ErrSameAccount)
	}
	return c.err()
}

// effects returns the signed balance change per account id.
func (t Transfer) effects() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		t.FromAccountID: t.Amount.Neg(),
		t.ToAccountID:   t.Amount,
	}
}
