package budget

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency label used until the user picks one.
const DefaultCurrency = "USD"

func init() {
	// amounts are numbers in documents, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an amount labelled with a currency, for display only.
// No conversion ever happens between currencies.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M creates a Money from any numeric value.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return decimal.Zero
}

func (m Money) currency() money.Currency {
	// money.New never returns a nil currency, unknown codes get a default format.
	return *money.New(0, m.cur).Currency()
}

// String formats the amount the way the currency is usually written, e.g. "$1,200.50".
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString is like String with an explicit "+" on positive amounts and "-" for zero.
func (m Money) SignedString() string {
	switch {
	case m.value.IsZero():
		return "-"
	case m.value.IsPositive():
		return "+" + m.String()
	default:
		return m.String()
	}
}

func (m Money) Amount() decimal.Decimal { return m.value }
func (m Money) Currency() string        { return m.cur }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) IsNegative() bool        { return m.value.IsNegative() }
func (m Money) Neg() Money              { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money              { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Equal(n Money) bool      { return m.value.Equal(n.value) && m.cur == n.cur }

// ValidateCurrency checks that code is a known ISO 4217 currency code and
// returns it upper cased.
func ValidateCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("unknown currency %q: %w", code, ErrInvalid)
	}
	return code, nil
}
