package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/budget"
	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2/predict"
)

// pft runs a command line on the guest database data and returns its output.
func pft(t *testing.T, data string, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	var out bytes.Buffer
	oldOut := stdout
	oldData, oldUser, oldDSN, oldKafka, oldPlain := *dataFile, *userID, *postgresDSN, *kafkaBrokers, *plain
	t.Cleanup(func() {
		stdout = oldOut
		*dataFile, *userID, *postgresDSN, *kafkaBrokers, *plain = oldData, oldUser, oldDSN, oldKafka, oldPlain
	})
	stdout = &out
	*dataFile, *userID, *postgresDSN, *kafkaBrokers, *plain = data, "", "", "", true

	top := flag.NewFlagSet("pft", flag.ContinueOnError)
	c := subcommands.NewCommander(top, "pft")
	Register(c)
	if err := top.Parse(args); err != nil {
		t.Fatal(err)
	}
	status := c.Execute(context.Background())
	return out.String(), status
}

// mustPft runs a command line that must succeed.
func mustPft(t *testing.T, data string, args ...string) string {
	t.Helper()
	out, status := pft(t, data, args...)
	if status != subcommands.ExitSuccess {
		t.Fatalf("pft %s = %v, output:\n%s", strings.Join(args, " "), status, out)
	}
	return out
}

var recordID = regexp.MustCompile(`(exp|inc|trf)_[0-9a-f-]+`)

func TestTransactions(t *testing.T) {
	data := filepath.Join(t.TempDir(), "budget.db")

	out := mustPft(t, data, "add-expense", "-d", "2024-07-20", "-desc", "Weekly groceries", "-a", "150.75",
		"-c", "food & dining", "-s", "groceries", "-pm", "Checking Debit Card")
	if !strings.HasPrefix(out, "Recorded expense ") {
		t.Fatalf("add-expense printed %q", out)
	}
	id := recordID.FindString(out)
	if got := mustPft(t, data, "accounts"); !strings.Contains(got, "| Checking Account | bank | $4,849.25 |") {
		t.Errorf("accounts after add-expense:\n%s", got)
	}

	mustPft(t, data, "update-expense", "-id", id, "-a", "100")
	if got := mustPft(t, data, "accounts"); !strings.Contains(got, "| Checking Account | bank | $4,900.00 |") {
		t.Errorf("accounts after update-expense:\n%s", got)
	}
	if got := mustPft(t, data, "journal", "-r", "2024-07-01..2024-07-31"); !strings.Contains(got, "Weekly groceries") {
		t.Errorf("journal does not list the expense:\n%s", got)
	}

	mustPft(t, data, "delete-expense", id)
	if got := mustPft(t, data, "accounts"); !strings.Contains(got, "| Checking Account | bank | $5,000.00 |") {
		t.Errorf("accounts after delete-expense:\n%s", got)
	}
	if _, status := pft(t, data, "delete-expense", id); status != subcommands.ExitFailure {
		t.Errorf("deleting %s twice = %v, want a failure", id, status)
	}

	mustPft(t, data, "add-income", "-d", "2024-07-01", "-desc", "July salary", "-a", "3000",
		"-c", "cat_salary", "-s", "Monthly", "-pm", "pm_debit1")
	if got := mustPft(t, data, "breakdown", "-type", "income"); !strings.Contains(got, "Salary") {
		t.Errorf("income breakdown:\n%s", got)
	}
}

func TestTransfers(t *testing.T) {
	data := filepath.Join(t.TempDir(), "budget.db")

	out := mustPft(t, data, "transfer", "-d", "2024-07-21", "-a", "500", "-from", "acc_bank1", "-to", "savings account")
	if !strings.Contains(out, `from "Checking Account" to "Savings Account"`) {
		t.Errorf("transfer printed %q", out)
	}
	id := recordID.FindString(out)
	if got := mustPft(t, data, "ledger", "-account", "acc_bank2"); !strings.Contains(got, "Balance: **$15,500.00**") {
		t.Errorf("savings ledger:\n%s", got)
	}

	mustPft(t, data, "update-transfer", "-id", id, "-to", "acc_cash")
	if got := mustPft(t, data, "ledger", "Savings Account"); !strings.Contains(got, "Balance: **$15,000.00**") {
		t.Errorf("savings ledger after update:\n%s", got)
	}

	if _, status := pft(t, data, "transfer", "-a", "1", "-from", "acc_bank1", "-to", "Checking Account"); status != subcommands.ExitFailure {
		t.Errorf("transfer to the same account = %v, want a failure", status)
	}
	if _, status := pft(t, data, "update-transfer", "-a", "1"); status != subcommands.ExitUsageError {
		t.Errorf("update-transfer without id = %v, want a usage error", status)
	}
	mustPft(t, data, "delete-transfer", id)
}

func TestReferenceData(t *testing.T) {
	data := filepath.Join(t.TempDir(), "budget.db")

	mustPft(t, data, "add-category", "-name", "Travel")
	mustPft(t, data, "add-subcategory", "-c", "travel", "-name", "Hotels")
	got := mustPft(t, data, "categories", "-type", "expense")
	if !strings.Contains(got, "**Travel**") || !strings.Contains(got, "Hotels") {
		t.Errorf("categories:\n%s", got)
	}
	if _, status := pft(t, data, "add-subcategory", "-c", "Nowhere", "-name", "X"); status != subcommands.ExitFailure {
		t.Errorf("add-subcategory to an unknown category = %v, want a failure", status)
	}

	mustPft(t, data, "add-account", "-name", "Wallet", "-type", "cash", "-balance", "20")
	mustPft(t, data, "add-payment-method", "-name", "Wallet coins", "-type", "cash", "-account", "wallet")
	got = mustPft(t, data, "accounts")
	if !strings.Contains(got, "| Wallet coins | cash | Wallet |") {
		t.Errorf("accounts:\n%s", got)
	}
	if _, status := pft(t, data, "add-account", "-name", "X", "-type", "piggy-bank"); status != subcommands.ExitUsageError {
		t.Errorf("add-account with an unknown type = %v, want a usage error", status)
	}
}

func TestCurrency(t *testing.T) {
	data := filepath.Join(t.TempDir(), "budget.db")
	if got := mustPft(t, data, "currency"); got != "USD\n" {
		t.Errorf("default currency = %q", got)
	}
	if got := mustPft(t, data, "currency", "eur"); got != "EUR\n" {
		t.Errorf("currency eur = %q", got)
	}
	// a new session reads the currency back from the database
	if got := mustPft(t, data, "currency"); got != "EUR\n" {
		t.Errorf("currency after reopening = %q", got)
	}
	if _, status := pft(t, data, "currency", "EURO"); status != subcommands.ExitFailure {
		t.Errorf("currency EURO = %v, want a failure", status)
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "budget.db")
	mustPft(t, data, "add-expense", "-d", "2024-07-20", "-desc", "Coffee", "-a", "4.25",
		"-c", "cat_food", "-s", "Groceries", "-pm", "pm_cash")

	backup := filepath.Join(dir, "backup.jsonl")
	mustPft(t, data, "export", "-o", backup)
	f, err := os.Open(backup)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := budget.DecodeSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Expenses) != 1 || snap.Expenses[0].Description != "Coffee" {
		t.Errorf("exported expenses = %+v", snap.Expenses)
	}

	other := filepath.Join(dir, "other.db")
	if got := mustPft(t, other, "import", "-i", backup); !strings.Contains(got, "1 expenses") {
		t.Errorf("import printed %q", got)
	}
	if got := mustPft(t, other, "dashboard"); !strings.Contains(got, "Coffee") {
		t.Errorf("dashboard after import:\n%s", got)
	}

	settings := filepath.Join(dir, "settings.jsonl")
	if err := os.WriteFile(settings, []byte(`{"collection":"settings","items":{"currency":"GBP"}}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := mustPft(t, other, "import", "-i", settings); !strings.Contains(got, "1 expenses") {
		t.Errorf("a settings import dropped expenses: %q", got)
	}
	if got := mustPft(t, other, "currency"); got != "GBP\n" {
		t.Errorf("currency after import = %q", got)
	}
}

func TestTopic(t *testing.T) {
	got := mustPft(t, "", "topic", "-l")
	if !strings.Contains(got, "dates\n") {
		t.Errorf("topic -l = %q", got)
	}
	if got := mustPft(t, "", "topic", "backup"); !strings.Contains(got, "# Backup") {
		t.Errorf("topic backup = %q", got)
	}
	if _, status := pft(t, "", "topic", "unknown"); status != subcommands.ExitFailure {
		t.Errorf("topic unknown = %v, want a failure", status)
	}
}

func TestOpenSession_UserNeedsDocumentStore(t *testing.T) {
	oldData, oldUser, oldDSN := *dataFile, *userID, *postgresDSN
	t.Cleanup(func() { *dataFile, *userID, *postgresDSN = oldData, oldUser, oldDSN })
	*dataFile, *userID, *postgresDSN = filepath.Join(t.TempDir(), "budget.db"), "alice", ""

	if _, err := openSession(context.Background()); !errors.Is(err, errNoRemote) {
		t.Errorf("openSession() = %v, want errNoRemote", err)
	}

	// the guest database is released and usable again.
	*userID = ""
	s, err := openSession(context.Background())
	if err != nil {
		t.Fatalf("openSession() as guest = %v", err)
	}
	if err := s.close(); err != nil {
		t.Errorf("close() = %v", err)
	}
}

func TestCompletion(t *testing.T) {
	global := flag.NewFlagSet("pft", flag.ContinueOnError)
	global.String("data", "budget.db", "")
	global.Bool("v", false, "")
	c := subcommands.NewCommander(global, "pft")
	Register(c)

	root := Completion(c, global)
	if _, ok := root.Flags["data"]; !ok {
		t.Errorf("no completion for the global -data flag")
	}
	for _, name := range []string{"add-expense", "journal", "serve", "topic"} {
		if root.Sub[name] == nil {
			t.Errorf("no completion for %s", name)
		}
	}
	if _, ok := root.Sub["add-expense"].Flags["pm"]; !ok {
		t.Errorf("add-expense has no -pm completion")
	}
	types, _ := root.Sub["add-account"].Flags["type"].(predict.Set)
	if diff := cmp.Diff([]string{"cash", "bank", "credit-card"}, []string(types)); diff != "" {
		t.Errorf("add-account -type values mismatch (-want +got):\n%s", diff)
	}
	topics, _ := root.Sub["topic"].Args.(predict.Set)
	if !strings.Contains(strings.Join(topics, " "), "dates") {
		t.Errorf("topic arguments = %v", topics)
	}
}
