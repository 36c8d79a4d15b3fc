// Package renderer renders budget views as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/budget"
)

//go:embed templates/*.md
var templates embed.FS

// RenderJournal renders a journal.
func RenderJournal(j *Journal) string { return renderTemplate("journal.md", j) }

// RenderAccountLedger renders a T-account.
func RenderAccountLedger(l *AccountLedger) string { return renderTemplate("account_ledger.md", l) }

// RenderDashboard renders a dashboard.
func RenderDashboard(d *Dashboard) string { return renderTemplate("dashboard.md", d) }

// RenderBreakdown renders a breakdown.
func RenderBreakdown(b *Breakdown) string { return renderTemplate("breakdown.md", b) }

// RenderAccounts renders accounts and payment methods.
func RenderAccounts(a *Accounts) string { return renderTemplate("accounts.md", a) }

// RenderCategories renders a category list.
func RenderCategories(c *Categories) string { return renderTemplate("categories.md", c) }

// JournalMarkdown renders the journal of s within r.
func JournalMarkdown(s budget.Snapshot, r budget.Range) string {
	return RenderJournal(NewJournal(s, r))
}

// DashboardMarkdown renders the dashboard of s with the recent most recent
// expenses.
func DashboardMarkdown(s budget.Snapshot, recent int) string {
	return RenderDashboard(NewDashboard(s, recent))
}

// BreakdownMarkdown renders b.
func BreakdownMarkdown(b budget.Breakdown) string { return RenderBreakdown(NewBreakdown(b)) }

// AccountsMarkdown renders the accounts of s.
func AccountsMarkdown(s budget.Snapshot) string { return RenderAccounts(NewAccounts(s)) }

// CategoriesMarkdown renders the categories of s in dir.
func CategoriesMarkdown(s budget.Snapshot, dir budget.Direction) string {
	return RenderCategories(NewCategories(s, dir))
}

// AccountLedgerMarkdown renders the T-account of accountID.
func AccountLedgerMarkdown(s budget.Snapshot, accountID string) (string, error) {
	l, err := NewAccountLedger(s, accountID)
	if err != nil {
		return "", err
	}
	return RenderAccountLedger(l), nil
}

var funcs = template.FuncMap{
	// cell renders an amount in a table, blank when zero.
	"cell": func(m budget.Money) string {
		if m.IsZero() {
			return ""
		}
		return m.String()
	},
	// escape protects user text in table cells.
	"escape": func(s string) string {
		return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
	},
	"period": func(r budget.Range) string {
		if r.IsAll() {
			return "all time"
		}
		return r.String()
	},
}

// renderTemplate renders the embedded template file with data, along with
// the shared partials.
func renderTemplate(file string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(file).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}
