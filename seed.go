package budget

import "github.com/shopspring/decimal"

// Default data a new guest or a new user starts with.
// Each call returns fresh slices.

func DefaultAccounts() []Account {
	return []Account{
		{ID: "acc_cash", Name: "Cash", Type: CashAccount, Balance: decimal.NewFromInt(500)},
		{ID: "acc_bank1", Name: "Checking Account", Type: BankAccount, Balance: decimal.NewFromInt(5000)},
		{ID: "acc_bank2", Name: "Savings Account", Type: BankAccount, Balance: decimal.NewFromInt(15000)},
		{ID: "acc_cc1", Name: "Visa Card", Type: CreditCardAccount, Balance: decimal.NewFromInt(-1200)},
	}
}

func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "pm_cash", Name: "Cash", Type: CashPayment, AccountID: "acc_cash"},
		{ID: "pm_debit1", Name: "Checking Debit Card", Type: DebitCardPayment, AccountID: "acc_bank1"},
		{ID: "pm_cc1", Name: "Visa **** 1234", Type: CreditCardPayment, AccountID: "acc_cc1"},
	}
}

func DefaultExpenseCategories() []Category {
	return []Category{
		{ID: "cat_food", Name: "Food & Dining", Type: Outgoing, Subcategories: []Subcategory{
			{ID: "sub_groceries", Name: "Groceries"},
			{ID: "sub_restaurants", Name: "Restaurants"},
			{ID: "sub_coffee", Name: "Coffee Shops"},
		}},
		{ID: "cat_transport", Name: "Transportation", Type: Outgoing, Subcategories: []Subcategory{
			{ID: "sub_gas", Name: "Gasoline"},
			{ID: "sub_public", Name: "Public Transit"},
			{ID: "sub_rideshare", Name: "Rideshare"},
		}},
		{ID: "cat_shopping", Name: "Shopping", Type: Outgoing, Subcategories: []Subcategory{
			{ID: "sub_clothes", Name: "Clothing"},
			{ID: "sub_electronics", Name: "Electronics"},
			{ID: "sub_gifts", Name: "Gifts"},
		}},
		{ID: "cat_bills", Name: "Bills & Utilities", Type: Outgoing, Subcategories: []Subcategory{
			{ID: "sub_rent", Name: "Rent"},
			{ID: "sub_internet", Name: "Internet"},
			{ID: "sub_phone", Name: "Phone Bill"},
		}},
	}
}

func DefaultIncomeCategories() []Category {
	return []Category{
		{ID: "cat_salary", Name: "Salary", Type: Incoming, Subcategories: []Subcategory{{ID: "sub_salary_monthly", Name: "Monthly"}}},
		{ID: "cat_bonus", Name: "Bonus", Type: Incoming, Subcategories: []Subcategory{{ID: "sub_bonus_performance", Name: "Performance"}}},
		{ID: "cat_gift", Name: "Gift", Type: Incoming, Subcategories: []Subcategory{{ID: "sub_gift_received", Name: "Received"}}},
		{ID: "cat_investment", Name: "Investment", Type: Incoming, Subcategories: []Subcategory{{ID: "sub_investment_dividends", Name: "Dividends"}}},
	}
}

func DefaultSettings() Settings { return Settings{Currency: DefaultCurrency} }

// DefaultSnapshot is the full default data set: seeded reference data and no
// transactions.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Expenses:          []Expense{},
		Incomes:           []Income{},
		Transfers:         []Transfer{},
		ExpenseCategories: DefaultExpenseCategories(),
		IncomeCategories:  DefaultIncomeCategories(),
		Accounts:          DefaultAccounts(),
		PaymentMethods:    DefaultPaymentMethods(),
		Settings:          DefaultSettings(),
	}
}
