package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/budget"
	"github.com/etnz/budget/agent"
	"github.com/etnz/budget/local"
	"github.com/etnz/budget/remote"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/genai"
)

const secret = "test-secret"

type fixture struct {
	server *Server
	store  *budget.Store
	docs   *remote.Memory
	guest  *local.Backend
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	guest, err := local.Open(filepath.Join(t.TempDir(), "guest.db"))
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{store: budget.NewStore(), docs: remote.NewMemory(), guest: guest}
	t.Cleanup(func() {
		f.store.Close()
		guest.Close()
	})
	coord := budget.NewCoordinator(f.store, guest, remote.Opener(f.docs))
	ledger := budget.NewLedger(f.store, budget.WithClock(func() time.Time { return time.UnixMilli(1719792000000) }))
	if cfg.Secret == "" {
		cfg.Secret = secret
	}
	f.server = New(coord, ledger, cfg)
	return f
}

// do sends a request and decodes the JSON answer into out, when not nil.
func (f *fixture) do(t *testing.T, method, path, token, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: cannot decode answer: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func token(t *testing.T, user string) string {
	t.Helper()
	tok, err := NewToken(secret, user, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

const groceries = `{"date":"2024-07-20","description":"Weekly groceries","amount":150.75,"categoryId":"cat_food","subcategoryId":"sub_groceries","paymentMethodId":"pm_debit1"}`

func TestServer_ExpenseLifecycle(t *testing.T) {
	f := newFixture(t, Config{})

	var created budget.Expense
	if code := f.do(t, "POST", "/api/expenses", "", groceries, &created); code != http.StatusCreated {
		t.Fatalf("POST /api/expenses = %d", code)
	}
	if !strings.HasPrefix(created.ID, "exp_") {
		t.Errorf("created id = %q", created.ID)
	}

	var ledger []struct {
		Description string      `json:"description"`
		Balance     json.Number `json:"balance"`
	}
	f.do(t, "GET", "/api/accounts/acc_bank1/ledger", "", "", &ledger)
	if len(ledger) != 1 || ledger[0].Description != "Weekly groceries" || ledger[0].Balance != "4849.25" {
		t.Errorf("ledger = %+v", ledger)
	}

	update := strings.Replace(groceries, "150.75", "100", 1)
	if code := f.do(t, "PUT", "/api/expenses/"+created.ID, "", update, nil); code != http.StatusOK {
		t.Errorf("PUT = %d", code)
	}
	var dash struct {
		Bank json.Number `json:"bank"`
	}
	f.do(t, "GET", "/api/dashboard", "", "", &dash)
	if dash.Bank != "19900" {
		t.Errorf("bank after update = %s, want 19900", dash.Bank)
	}

	if code := f.do(t, "DELETE", "/api/expenses/"+created.ID, "", "", nil); code != http.StatusNoContent {
		t.Errorf("DELETE = %d", code)
	}
	if code := f.do(t, "DELETE", "/api/expenses/"+created.ID, "", "", nil); code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", code)
	}
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t, Config{})
	tests := []struct {
		name         string
		method, path string
		token        string
		body         string
		want         int
	}{
		{"invalid expense", "POST", "/api/expenses", "", `{"description":"x","amount":-1}`, http.StatusBadRequest},
		{"malformed body", "POST", "/api/expenses", "", `{`, http.StatusBadRequest},
		{"same account", "POST", "/api/transfers", "", `{"date":"2024-07-20","description":"x","amount":1,"fromAccountId":"acc_cash","toAccountId":"acc_cash"}`, http.StatusBadRequest},
		{"unknown income", "PUT", "/api/incomes/inc_nope", "", `{"date":"2024-07-20","description":"x","amount":1,"categoryId":"cat_salary","subcategoryId":"sub_salary_monthly","paymentMethodId":"pm_debit1"}`, http.StatusNotFound},
		{"unknown account", "GET", "/api/accounts/acc_nope/ledger", "", "", http.StatusNotFound},
		{"unknown category", "POST", "/api/categories/cat_nope/subcategories", "", `{"name":"x"}`, http.StatusNotFound},
		{"bad currency", "PUT", "/api/settings/currency", "", `{"currency":"DOGE"}`, http.StatusBadRequest},
		{"bad period", "GET", "/api/journal?period=july", "", "", http.StatusBadRequest},
		{"bad token", "GET", "/api/snapshot", "garbage", "", http.StatusUnauthorized},
		{"no advisor", "POST", "/api/insights/patterns", "", "", http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Error string `json:"error"`
			}
			if code := f.do(t, tt.method, tt.path, tt.token, tt.body, &body); code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, code, tt.want, body.Error)
			}
			if body.Error == "" {
				t.Errorf("answer has no error message")
			}
		})
	}
}

func TestServer_Identity(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	// guest data is migrated on the first authenticated request.
	if code := f.do(t, "POST", "/api/expenses", "", groceries, nil); code != http.StatusCreated {
		t.Fatalf("guest POST = %d", code)
	}
	var snap struct {
		Mode     budget.Mode      `json:"mode"`
		Expenses []budget.Expense `json:"expenses"`
	}
	f.do(t, "GET", "/api/snapshot", token(t, "alice"), "", &snap)
	if snap.Mode != budget.ModeAuthenticated || len(snap.Expenses) != 1 {
		t.Errorf("alice snapshot = %+v", snap)
	}
	if _, err := f.docs.Get(ctx, remote.CollectionPath("alice", budget.Expenses)); err != nil {
		t.Errorf("alice expenses were not migrated: %v", err)
	}
	if keys, _ := f.guest.Keys(ctx); len(keys) != 0 {
		t.Errorf("guest storage was not cleared: %v", keys)
	}

	// another user starts from the defaults.
	f.do(t, "GET", "/api/snapshot", token(t, "bob"), "", &snap)
	if len(snap.Expenses) != 0 {
		t.Errorf("bob sees %d expenses", len(snap.Expenses))
	}

	// back to guest, then to alice again.
	f.do(t, "GET", "/api/snapshot", "", "", &snap)
	if snap.Mode != budget.ModeGuest || len(snap.Expenses) != 0 {
		t.Errorf("guest snapshot = %+v", snap)
	}
	f.do(t, "GET", "/api/snapshot", token(t, "alice"), "", &snap)
	if len(snap.Expenses) != 1 {
		t.Errorf("alice sees %d expenses after coming back", len(snap.Expenses))
	}
}

func TestServer_ExpiredToken(t *testing.T) {
	f := newFixture(t, Config{})
	claims := jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if code := f.do(t, "GET", "/api/snapshot", expired, "", nil); code != http.StatusUnauthorized {
		t.Errorf("expired token = %d, want 401", code)
	}
	other, _ := NewToken("other-secret", "alice", time.Hour)
	if code := f.do(t, "GET", "/api/snapshot", other, "", nil); code != http.StatusUnauthorized {
		t.Errorf("foreign token = %d, want 401", code)
	}
}

func TestServer_CategoriesAndSettings(t *testing.T) {
	f := newFixture(t, Config{})
	var cat budget.Category
	if code := f.do(t, "POST", "/api/categories", "", `{"name":"Pets","type":"expense"}`, &cat); code != http.StatusCreated {
		t.Fatalf("POST /api/categories = %d", code)
	}
	if cat.ID != "cat_pets_1719792000000" {
		t.Errorf("category id = %q", cat.ID)
	}
	var sub budget.Subcategory
	if code := f.do(t, "POST", "/api/categories/"+cat.ID+"/subcategories", "", `{"name":"Vet"}`, &sub); code != http.StatusCreated {
		t.Fatalf("POST subcategory = %d", code)
	}
	var settings budget.Settings
	f.do(t, "PUT", "/api/settings/currency", "", `{"currency":"eur"}`, &settings)
	if settings.Currency != "EUR" {
		t.Errorf("currency = %q", settings.Currency)
	}
}

type fakeGenerator struct{ answer string }

func (g fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: g.answer}}}}}}, nil
}

func TestServer_Suggest(t *testing.T) {
	f := newFixture(t, Config{Advisor: agent.NewAdvisor(fakeGenerator{`{"subcategories":["Bakery","Groceries"]}`}, "")})
	var got struct {
		Subcategories []string `json:"subcategories"`
	}
	code := f.do(t, "POST", "/api/suggest/subcategories", "", `{"categoryId":"cat_food","description":"croissants"}`, &got)
	if code != http.StatusOK || len(got.Subcategories) != 1 || got.Subcategories[0] != "Bakery" {
		t.Errorf("suggest = %d %+v", code, got)
	}
	if code := f.do(t, "POST", "/api/suggest/subcategories", "", `{"categoryId":"cat_food"}`, nil); code != http.StatusBadRequest {
		t.Errorf("suggest without description = %d, want 400", code)
	}
}
