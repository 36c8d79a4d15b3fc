package budget

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeSnapshot(t *testing.T) {
	snap := DefaultSnapshot()
	snap.Expenses = []Expense{{ID: "exp_1", Date: NewDate(2024, 7, 20), Description: "Weekly groceries", Amount: D("150.75"), CategoryID: "cat_food", SubcategoryID: "sub_groceries", PaymentMethodID: "pm_debit1"}}
	snap.Settings.Currency = "EUR"

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(Collections) {
		t.Fatalf("got %d lines, want %d", len(lines), len(Collections))
	}
	want := `{"collection":"expenses","items":[{"id":"exp_1","date":"2024-07-20","description":"Weekly groceries","amount":150.75,"categoryId":"cat_food","subcategoryId":"sub_groceries","paymentMethodId":"pm_debit1"}]}`
	if lines[0] != want {
		t.Errorf("first line = %s\nwant %s", lines[0], want)
	}

	got, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("DecodeSnapshot() failed: %v", err)
	}
	if diff := cmp.Diff(snap, got, cmp.Comparer(equalDecimal), cmp.AllowUnexported(Date{})); diff != "" {
		t.Errorf("decoded snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "hello\n"},
		{"unknown collection", `{"collection":"budgets","items":[]}`},
		{"wrong shape", `{"collection":"accounts","items":{"id":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSnapshot(strings.NewReader(tt.input)); err == nil {
				t.Errorf("DecodeSnapshot(%q) succeeded", tt.input)
			}
		})
	}
}

func TestDecodeSnapshot_Partial(t *testing.T) {
	input := "\n" + `{"collection":"settings","items":{"currency":"GBP"}}` + "\n"
	snap, err := DecodeSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Settings.Currency != "GBP" || snap.Accounts != nil {
		t.Errorf("snapshot = %+v, want settings only", snap)
	}
}

func TestPaymentMethod_JSONOmitsEmptyAccount(t *testing.T) {
	b, err := json.Marshal(PaymentMethod{ID: "pm_x", Name: "X", Type: CashPayment})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"pm_x","name":"X","type":"cash"}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}

func TestSnapshot_Merge(t *testing.T) {
	base := DefaultSnapshot()
	base.Settings.Currency = "EUR"
	partial := Snapshot{Expenses: []Expense{{ID: "exp_1"}}, Accounts: []Account{}}

	got := partial.Merge(base)
	if len(got.Expenses) != 1 || got.Expenses[0].ID != "exp_1" {
		t.Errorf("expenses = %+v, want the partial ones", got.Expenses)
	}
	if got.Accounts == nil || len(got.Accounts) != 0 {
		t.Errorf("accounts = %+v, want the empty partial list", got.Accounts)
	}
	if diff := cmp.Diff(base.PaymentMethods, got.PaymentMethods); diff != "" {
		t.Errorf("payment methods mismatch (-want +got):\n%s", diff)
	}
	if got.Currency() != "EUR" {
		t.Errorf("currency = %q, want EUR from base", got.Currency())
	}
}
