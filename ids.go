package budget

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record identifier prefixes.
const (
	expensePrefix       = "exp_"
	incomePrefix        = "inc_"
	transferPrefix      = "trf_"
	categoryPrefix      = "cat"
	subcategoryPrefix   = "sub"
	accountPrefix       = "acc"
	paymentMethodPrefix = "pm"
)

// newRecordID returns a unique, time ordered identifier.
func newRecordID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		// the random source failed, v4 has the same uniqueness.
		id = uuid.New()
	}
	return prefix + id.String()
}

var spacesRE = regexp.MustCompile(`\s+`)

// slug lower cases name and replaces runs of white space by "_".
func slug(name string) string {
	return spacesRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// slugID returns "<prefix>_<slug>_<millis>", bumping the timestamp until the
// id is not taken.
func slugID(prefix, name string, now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("%s_%s_%d", prefix, slug(name), ms)
		if !taken(id) {
			return id
		}
		ms++
	}
}
