package budget

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the canonical layout of dates in documents and views.
const DateFormat = "2006-01-02"

// lenient layout, accepts 2025-7-1.
const lenientDateFormat = "2006-1-2"

// Date is a calendar day, without time or location.
//
// The zero Date means "unset" and is rejected by validation.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns the normalized date, so that NewDate(2024, 1, 32) is 2024-02-01.
func NewDate(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Today is the current day in the local time zone.
func Today() Date { return NewDate(time.Now().Date()) }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) String() string     { return d.time().Format(DateFormat) }
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 like cmp.Compare.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns the date i days later (or earlier when i is negative).
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

var relativeDateRE = regexp.MustCompile(`^([+-]?)(\d+)([dwmy])$`)

// ParseDate reads a date in one of the formats accepted on the command line:
//
//	2025-07-01, 2025-7-1  absolute dates
//	-1d, +2w, -3m, -1y    relative to today
//	2025-07-01T10:00:00Z  timestamps, truncated to their day
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Date{}, fmt.Errorf("empty date: %w", ErrInvalid)
	}
	if m := relativeDateRE.FindStringSubmatch(str); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid relative date %q: %w", str, err)
		}
		if m[1] == "-" {
			n = -n
		}
		t := Today()
		switch m[3] {
		case "w":
			return t.Add(7 * n), nil
		case "m":
			return NewDate(t.y, t.m+time.Month(n), t.d), nil
		case "y":
			return NewDate(t.y+n, t.m, t.d), nil
		default:
			return t.Add(n), nil
		}
	}
	if on, err := time.Parse(lenientDateFormat, str); err == nil {
		return NewDate(on.Date()), nil
	}
	if on, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return NewDate(on.UTC().Date()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, ErrInvalid)
}

// MustParse is like ParseDate but panics on error.
func MustParse(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON accepts "YYYY-MM-DD" and full ISO timestamps, as found in older documents.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	on, err := time.Parse(lenientDateFormat, str)
	if err != nil {
		on, err = time.Parse(time.RFC3339Nano, str)
		on = on.UTC()
	}
	if err != nil {
		return fmt.Errorf("invalid date %q in document, want format %q: %w", str, DateFormat, err)
	}
	*d = NewDate(on.Date())
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
