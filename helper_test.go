package budget

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from strings.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func equalDecimal(a, b decimal.Decimal) bool { return a.Equal(b) }

// memBackend is a Backend in memory, for tests.
type memBackend struct {
	mu          sync.Mutex
	docs        map[Collection][]byte
	writes      []Collection
	fail        error
	initialized bool
}

func newMemBackend() *memBackend { return &memBackend{docs: make(map[Collection][]byte)} }

func (m *memBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[c]
	if !ok {
		return nil, ErrNoData
	}
	return data, nil
}

func (m *memBackend) Write(ctx context.Context, c Collection, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.docs[c] = data
	m.writes = append(m.writes, c)
	return nil
}

func (m *memBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[Collection][]byte)
	return nil
}

func (m *memBackend) Initialized(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized, nil
}

func (m *memBackend) MarkInitialized(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

func (m *memBackend) has(c Collection) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[c]
	return ok
}

func (m *memBackend) writeLog() []Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Collection(nil), m.writes...)
}

var errWriteFailed = errors.New("write failed")

// newTestLedger returns a ledger over a store loaded with the default data
// and backed by a memory backend.
func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *memBackend) {
	t.Helper()
	store := NewStore()
	t.Cleanup(func() { store.Close() })
	b := newMemBackend()
	store.SetBackend(b)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return NewLedger(store, opts...), b
}

// balance returns the balance of an account or fails the test.
func balance(t *testing.T, l *Ledger, accountID string) decimal.Decimal {
	t.Helper()
	a, ok := l.Snapshot().Account(accountID)
	if !ok {
		t.Fatalf("account %q not found", accountID)
	}
	return a.Balance
}

func groceries(amount string) Expense {
	return Expense{
		Date:            NewDate(2024, 7, 20),
		Description:     "Weekly groceries",
		Amount:          D(amount),
		CategoryID:      "cat_food",
		SubcategoryID:   "sub_groceries",
		PaymentMethodID: "pm_debit1",
	}
}

func salary(amount string) Income {
	return Income{
		Date:            NewDate(2024, 7, 1),
		Description:     "July salary",
		Amount:          D(amount),
		CategoryID:      "cat_salary",
		SubcategoryID:   "sub_salary_monthly",
		PaymentMethodID: "pm_debit1",
	}
}
