package budget

import (
	"fmt"
	"strings"
)

// Range is an inclusive range of days. A zero bound is open.
type Range struct{ From, To Date }

// NewRange creates a date range, swapping bounds when both are set and reversed.
func NewRange(from, to Date) Range {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains reports whether date is within the range, boundaries included.
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// IsAll reports whether the range has no bound at all.
func (r Range) IsAll() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) String() string {
	switch {
	case r.IsAll():
		return "all time"
	case r.From.IsZero():
		return "until " + r.To.String()
	case r.To.IsZero():
		return "since " + r.From.String()
	default:
		return fmt.Sprintf("%s to %s", r.From, r.To)
	}
}

// ParseRange reads "FROM..TO" where either side may be empty, or a single date
// meaning that day only.
func ParseRange(str string) (Range, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Range{}, nil
	}
	from, to, found := strings.Cut(str, "..")
	if !found {
		d, err := ParseDate(from)
		if err != nil {
			return Range{}, err
		}
		return NewRange(d, d), nil
	}
	var r Range
	var err error
	if strings.TrimSpace(from) != "" {
		if r.From, err = ParseDate(from); err != nil {
			return Range{}, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if r.To, err = ParseDate(to); err != nil {
			return Range{}, err
		}
	}
	return NewRange(r.From, r.To), nil
}
