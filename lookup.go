package budget

import "slices"

// NotAvailable is the name of any reference that cannot be resolved.
const NotAvailable = "N/A"

// Category returns the category with this id, of either direction.
func (s Snapshot) Category(id string) (Category, bool) {
	for _, list := range [][]Category{s.ExpenseCategories, s.IncomeCategories} {
		if i := slices.IndexFunc(list, func(c Category) bool { return c.ID == id }); i >= 0 {
			return list[i], true
		}
	}
	return Category{}, false
}

// Categories returns the categories of one direction.
func (s Snapshot) Categories(dir Direction) []Category {
	if dir == Incoming {
		return s.IncomeCategories
	}
	return s.ExpenseCategories
}

func (s Snapshot) Account(id string) (Account, bool) {
	i := slices.IndexFunc(s.Accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Account{}, false
	}
	return s.Accounts[i], true
}

func (s Snapshot) PaymentMethod(id string) (PaymentMethod, bool) {
	i := slices.IndexFunc(s.PaymentMethods, func(p PaymentMethod) bool { return p.ID == id })
	if i < 0 {
		return PaymentMethod{}, false
	}
	return s.PaymentMethods[i], true
}

// BoundAccount returns the account a payment method moves money on.
func (s Snapshot) BoundAccount(paymentMethodID string) (Account, bool) {
	pm, ok := s.PaymentMethod(paymentMethodID)
	if !ok || pm.AccountID == "" {
		return Account{}, false
	}
	return s.Account(pm.AccountID)
}

func (s Snapshot) CategoryName(id string) string {
	if c, ok := s.Category(id); ok {
		return c.Name
	}
	return NotAvailable
}

func (s Snapshot) SubcategoryName(categoryID, subcategoryID string) string {
	if c, ok := s.Category(categoryID); ok {
		if sub, ok := c.Subcategory(subcategoryID); ok {
			return sub.Name
		}
	}
	return NotAvailable
}

func (s Snapshot) PaymentMethodName(id string) string {
	if p, ok := s.PaymentMethod(id); ok {
		return p.Name
	}
	return NotAvailable
}

func (s Snapshot) AccountName(id string) string {
	if a, ok := s.Account(id); ok {
		return a.Name
	}
	return NotAvailable
}

// hasCategoryID reports whether id is used by a category or a subcategory.
func (s Snapshot) hasCategoryID(id string) bool {
	for _, list := range [][]Category{s.ExpenseCategories, s.IncomeCategories} {
		for _, c := range list {
			if c.ID == id {
				return true
			}
			if _, ok := c.Subcategory(id); ok {
				return true
			}
		}
	}
	return false
}

// Currency returns the display currency.
func (s Snapshot) Currency() string {
	if s.Settings.Currency == "" {
		return DefaultCurrency
	}
	return s.Settings.Currency
}
