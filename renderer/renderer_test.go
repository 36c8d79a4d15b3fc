package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/budget"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// snapshot has one record of each kind on the default accounts.
func snapshot() budget.Snapshot {
	s := budget.DefaultSnapshot()
	s.Expenses = []budget.Expense{{
		ID: "exp_1", Date: budget.NewDate(2024, 7, 20), Description: "Weekly groceries", Amount: D("150.75"),
		CategoryID: "cat_food", SubcategoryID: "sub_groceries", PaymentMethodID: "pm_debit1",
	}}
	s.Incomes = []budget.Income{{
		ID: "inc_1", Date: budget.NewDate(2024, 7, 1), Description: "Salary", Amount: D("3000"),
		CategoryID: "cat_salary", SubcategoryID: "sub_salary_monthly", PaymentMethodID: "pm_debit1",
	}}
	s.Transfers = []budget.Transfer{{
		ID: "trf_1", Date: budget.NewDate(2024, 7, 10), Description: "Savings", Amount: D("1000"),
		FromAccountID: "acc_bank1", ToAccountID: "acc_bank2",
	}}
	return s
}

// tableRows parses md and returns the text of each table row, cells joined by "|".
func tableRows(t *testing.T, md string) []string {
	t.Helper()
	source := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))
	var rows []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *east.TableHeader, *east.TableRow:
			var cells []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, cellText(c, source))
			}
			rows = append(rows, strings.Join(cells, "|"))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return rows
}

func cellText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); entering && ok {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func TestRenderJournal(t *testing.T) {
	md := JournalMarkdown(snapshot(), budget.Range{})
	want := []string{
		"Date|Kind|Description|Debit|Credit|Balance",
		"||Opening balance|||$16,450.75",
		"2024-07-01|income|Salary||$3,000.00|$19,450.75",
		"2024-07-10|transfer|Transfer from Checking Account to Savings Account|||$19,450.75",
		"2024-07-20|expense|Weekly groceries|$150.75||$19,300.00",
	}
	if diff := cmp.Diff(want, tableRows(t, md)); diff != "" {
		t.Errorf("journal rows mismatch (-want +got):\n%s\n%s", diff, md)
	}
	if !strings.Contains(md, "Total of all accounts: **$19,300.00**") {
		t.Errorf("journal has no total:\n%s", md)
	}
}

func TestRenderJournal_Range(t *testing.T) {
	r := budget.NewRange(budget.NewDate(2024, 7, 5), budget.NewDate(2024, 7, 15))
	rows := tableRows(t, JournalMarkdown(snapshot(), r))
	want := []string{
		"Date|Kind|Description|Debit|Credit|Balance",
		"||Opening balance|||$19,450.75",
		"2024-07-10|transfer|Transfer from Checking Account to Savings Account|||$19,450.75",
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("journal rows mismatch (-want +got):\n%s", diff)
	}

	empty := JournalMarkdown(budget.DefaultSnapshot(), budget.Range{})
	if !strings.Contains(empty, "No transactions.") || len(tableRows(t, empty)) != 0 {
		t.Errorf("empty journal:\n%s", empty)
	}
}

func TestRenderAccountLedger(t *testing.T) {
	md, err := AccountLedgerMarkdown(snapshot(), "acc_bank1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Date|Description|In|Out|Balance",
		"|Opening balance|||$3,150.75",
		"2024-07-01|Salary|$3,000.00||$6,150.75",
		"2024-07-10|Transfer to Savings Account||$1,000.00|$5,150.75",
		"2024-07-20|Weekly groceries||$150.75|$5,000.00",
	}
	if diff := cmp.Diff(want, tableRows(t, md)); diff != "" {
		t.Errorf("ledger rows mismatch (-want +got):\n%s\n%s", diff, md)
	}
	if _, err := AccountLedgerMarkdown(snapshot(), "acc_nope"); err == nil {
		t.Errorf("AccountLedgerMarkdown(unknown) succeeded")
	}
}

func TestRenderDashboard(t *testing.T) {
	rows := tableRows(t, DashboardMarkdown(snapshot(), 5))
	want := []string{
		"Cash|Bank|Credit card due|Net worth",
		"$500.00|$20,000.00|-$1,200.00|$19,300.00",
		"Date|Description|Category|Amount",
		"2024-07-20|Weekly groceries|Food & Dining|$150.75",
		"Category|Amount",
		"Food & Dining|$150.75",
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("dashboard rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderBreakdown(t *testing.T) {
	s := snapshot()
	s.Settings.Currency = "EUR"
	md := BreakdownMarkdown(s.Breakdown(budget.Incoming, budget.Range{}))
	if !strings.HasPrefix(md, "# Incomes\n") || !strings.Contains(md, "Period: all time") {
		t.Errorf("breakdown header:\n%s", md)
	}
	want := []string{
		"Category|Subcategory|Amount",
		"Salary||€3,000.00",
		"|Monthly|€3,000.00",
	}
	if diff := cmp.Diff(want, tableRows(t, md)); diff != "" {
		t.Errorf("breakdown rows mismatch (-want +got):\n%s\n%s", diff, md)
	}
}

func TestRenderAccounts(t *testing.T) {
	s := budget.DefaultSnapshot()
	s.PaymentMethods = append(s.PaymentMethods, budget.PaymentMethod{ID: "pm_x", Name: "Voucher", Type: budget.CashPayment})
	rows := tableRows(t, AccountsMarkdown(s))
	for _, want := range []string{
		"Checking Account|bank|$5,000.00",
		"Visa Card|credit-card|-$1,200.00",
		"Net worth||$19,300.00",
		"Checking Debit Card|debit-card|Checking Account",
		"Voucher|cash|none",
	} {
		found := false
		for _, r := range rows {
			found = found || r == want
		}
		if !found {
			t.Errorf("no row %q in %q", want, rows)
		}
	}
}

func TestRenderCategories(t *testing.T) {
	md := CategoriesMarkdown(budget.DefaultSnapshot(), budget.Incoming)
	for _, want := range []string{"# Income categories", "* **Salary** `cat_salary`", "  * Monthly `sub_salary_monthly`"} {
		if !strings.Contains(md, want) {
			t.Errorf("categories do not contain %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Food") {
		t.Errorf("income categories list expense categories:\n%s", md)
	}
}
