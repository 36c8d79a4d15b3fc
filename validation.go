package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is returned when an operation references an unknown record.
	ErrNotFound = errors.New("not found")
	// ErrSameAccount is returned for a transfer whose source is its destination.
	ErrSameAccount = errors.New("transfer source and destination are the same account")
	// ErrNoData is returned by a Backend when a collection was never written.
	ErrNoData = errors.New("no data")
)

// invalidf formats a validation failure wrapping ErrInvalid.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

// checker accumulates validation failures.
type checker []error

func (c *checker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		*c = append(*c, invalidf("%s is required", field))
	}
}

func (c *checker) positive(field string, value decimal.Decimal) {
	if !value.IsPositive() {
		*c = append(*c, invalidf("%s must be positive, got %s", field, value))
	}
}

func (c *checker) date(field string, value Date) {
	if value.IsZero() {
		*c = append(*c, invalidf("%s is required", field))
	}
}

func (c checker) err() error { return errors.Join(c...) }
