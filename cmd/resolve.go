package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/budget"
)

// find returns the element whose id is ref, or else whose name is ref
// regardless of case.
func find[T any](list []T, ref string, id, name func(T) string) (T, bool) {
	ref = strings.TrimSpace(ref)
	for _, v := range list {
		if id(v) == ref {
			return v, true
		}
	}
	for _, v := range list {
		if strings.EqualFold(name(v), ref) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func resolveCategory(s budget.Snapshot, dir budget.Direction, ref string) (budget.Category, error) {
	c, ok := find(s.Categories(dir), ref,
		func(c budget.Category) string { return c.ID },
		func(c budget.Category) string { return c.Name })
	if !ok {
		return c, fmt.Errorf("unknown %s category %q: %w", dir, ref, budget.ErrNotFound)
	}
	return c, nil
}

func resolveSubcategory(c budget.Category, ref string) (budget.Subcategory, error) {
	sub, ok := find(c.Subcategories, ref,
		func(s budget.Subcategory) string { return s.ID },
		func(s budget.Subcategory) string { return s.Name })
	if !ok {
		return sub, fmt.Errorf("unknown subcategory %q in %q: %w", ref, c.Name, budget.ErrNotFound)
	}
	return sub, nil
}

func resolvePaymentMethod(s budget.Snapshot, ref string) (budget.PaymentMethod, error) {
	pm, ok := find(s.PaymentMethods, ref,
		func(p budget.PaymentMethod) string { return p.ID },
		func(p budget.PaymentMethod) string { return p.Name })
	if !ok {
		return pm, fmt.Errorf("unknown payment method %q: %w", ref, budget.ErrNotFound)
	}
	return pm, nil
}

func resolveAccount(s budget.Snapshot, ref string) (budget.Account, error) {
	a, ok := find(s.Accounts, ref,
		func(a budget.Account) string { return a.ID },
		func(a budget.Account) string { return a.Name })
	if !ok {
		return a, fmt.Errorf("unknown account %q: %w", ref, budget.ErrNotFound)
	}
	return a, nil
}
