package budget

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger records expenses, incomes and transfers and keeps account balances
// consistent with them.
//
// Every balance-affecting operation is two store mutations: first the
// transaction collection, then the accounts. They are not atomic: if the
// second write fails to persist, the backend holds the record without its
// balance effect.
//
// A Ledger is safe for concurrent use, operations are serialized.
type Ledger struct {
	mu        sync.Mutex
	store     *Store
	notifiers []Notifier
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithNotifier registers n to be told about every change.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) { l.notifiers = append(l.notifiers, n) }
}

// WithClock replaces time.Now, used for generated ids and change times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a ledger over store.
func NewLedger(store *Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying collection store.
func (l *Ledger) Store() *Store { return l.store }

// Snapshot returns the current state of every collection.
func (l *Ledger) Snapshot() Snapshot { return l.store.Snapshot() }

// flowBook tells where a kind of flow is stored and which way it moves
// balances.
type flowBook struct {
	kind   string
	c      Collection
	prefix string
	sign   decimal.Decimal
}

var (
	expenseBook = flowBook{"expense", Expenses, expensePrefix, decimal.NewFromInt(-1)}
	incomeBook  = flowBook{"income", Incomes, incomePrefix, decimal.NewFromInt(1)}
)

type flow interface{ Expense | Income }

func (l *Ledger) AddExpense(e Expense) (Expense, error) { return addFlow(l, expenseBook, e) }
func (l *Ledger) UpdateExpense(e Expense) error        { return updateFlow(l, expenseBook, e) }
func (l *Ledger) DeleteExpense(id string) error        { return deleteFlow[Expense](l, expenseBook, id) }

func (l *Ledger) AddIncome(i Income) (Income, error) { return addFlow(l, incomeBook, i) }
func (l *Ledger) UpdateIncome(i Income) error        { return updateFlow(l, incomeBook, i) }
func (l *Ledger) DeleteIncome(id string) error       { return deleteFlow[Income](l, incomeBook, id) }

// addFlow assigns a new id to rec, records it and applies its balance effect.
func addFlow[T flow](l *Ledger, b flowBook, rec T) (T, error) {
	f := Flow(rec).normalize()
	if err := f.Validate(); err != nil {
		return rec, fmt.Errorf("cannot add %s: %w", b.kind, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f.ID = newRecordID(b.prefix)
	err := Mutate(l.store, b.c, func(list []T) ([]T, error) {
		next := make([]T, 0, len(list)+1)
		next = append(next, T(f))
		next = append(next, list...)
		sortFlows(next)
		return next, nil
	})
	if err != nil {
		return rec, err
	}
	l.adjust(l.flowEffects(nil, f, b.sign))
	l.notifyBalance(OpAdd, b.c, f.ID)
	return T(f), nil
}

// updateFlow replaces the record with rec's id: the old effect is reversed,
// then the new one applied.
func updateFlow[T flow](l *Ledger, b flowBook, rec T) error {
	f := Flow(rec).normalize()
	if f.ID == "" {
		return fmt.Errorf("cannot update %s: %w", b.kind, invalidf("id is required"))
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("cannot update %s %q: %w", b.kind, f.ID, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var old Flow
	err := Mutate(l.store, b.c, func(list []T) ([]T, error) {
		i := slices.IndexFunc(list, func(t T) bool { return Flow(t).ID == f.ID })
		if i < 0 {
			return nil, fmt.Errorf("cannot update %s %q: %w", b.kind, f.ID, ErrNotFound)
		}
		old = Flow(list[i])
		next := slices.Clone(list)
		next[i] = T(f)
		sortFlows(next)
		return next, nil
	})
	if err != nil {
		return err
	}
	effects := l.flowEffects(nil, old, b.sign.Neg())
	l.adjust(l.flowEffects(effects, f, b.sign))
	l.notifyBalance(OpUpdate, b.c, f.ID)
	return nil
}

// deleteFlow removes the record and reverses its effect.
func deleteFlow[T flow](l *Ledger, b flowBook, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var old Flow
	err := Mutate(l.store, b.c, func(list []T) ([]T, error) {
		i := slices.IndexFunc(list, func(t T) bool { return Flow(t).ID == id })
		if i < 0 {
			return nil, fmt.Errorf("cannot delete %s %q: %w", b.kind, id, ErrNotFound)
		}
		old = Flow(list[i])
		return slices.Delete(slices.Clone(list), i, i+1), nil
	})
	if err != nil {
		return err
	}
	l.adjust(l.flowEffects(nil, old, b.sign.Neg()))
	l.notifyBalance(OpDelete, b.c, id)
	return nil
}

// sortFlows orders records by date, most recent first.
func sortFlows[T flow](list []T) {
	slices.SortStableFunc(list, func(a, b T) int { return Flow(b).Date.Compare(Flow(a).Date) })
}

// flowEffects adds to effects the balance change of f on its bound account.
// Payment methods without a bound account have no effect.
func (l *Ledger) flowEffects(effects map[string]decimal.Decimal, f Flow, sign decimal.Decimal) map[string]decimal.Decimal {
	if effects == nil {
		effects = make(map[string]decimal.Decimal)
	}
	account, ok := l.store.Snapshot().BoundAccount(f.PaymentMethodID)
	if !ok {
		return effects
	}
	effects[account.ID] = effects[account.ID].Add(f.Amount.Mul(sign))
	return effects
}

// adjust applies effects to the accounts collection. Unknown accounts are
// skipped.
func (l *Ledger) adjust(effects map[string]decimal.Decimal) {
	err := Mutate(l.store, Accounts, func(accounts []Account) ([]Account, error) {
		next := slices.Clone(accounts)
		for i, a := range next {
			if d, ok := effects[a.ID]; ok {
				next[i].Balance = a.Balance.Add(d)
			}
		}
		return next, nil
	})
	if err != nil {
		// only a programming error can get here.
		log.Printf("balance-adjust-failed err=%q", err)
	}
}

// AddTransfer records a transfer: the source is debited and the destination
// credited, unconditionally.
func (l *Ledger) AddTransfer(t Transfer) (Transfer, error) {
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("cannot add transfer: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	t.ID = newRecordID(transferPrefix)
	err := Mutate(l.store, Transfers, func(list []Transfer) ([]Transfer, error) {
		next := append([]Transfer{t}, list...)
		sortTransfers(next)
		return next, nil
	})
	if err != nil {
		return t, err
	}
	l.adjust(t.effects())
	l.notifyBalance(OpAdd, Transfers, t.ID)
	return t, nil
}

// UpdateTransfer replaces the transfer with t's id, reversing its old effect.
func (l *Ledger) UpdateTransfer(t Transfer) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.ID == "" {
		return fmt.Errorf("cannot update transfer: %w", invalidf("id is required"))
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("cannot update transfer %q: %w", t.ID, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var old Transfer
	err := Mutate(l.store, Transfers, func(list []Transfer) ([]Transfer, error) {
		i := slices.IndexFunc(list, func(x Transfer) bool { return x.ID == t.ID })
		if i < 0 {
			return nil, fmt.Errorf("cannot update transfer %q: %w", t.ID, ErrNotFound)
		}
		old = list[i]
		next := slices.Clone(list)
		next[i] = t
		sortTransfers(next)
		return next, nil
	})
	if err != nil {
		return err
	}
	effects := make(map[string]decimal.Decimal)
	for acc, d := range old.effects() {
		effects[acc] = effects[acc].Sub(d)
	}
	for acc, d := range t.effects() {
		effects[acc] = effects[acc].Add(d)
	}
	l.adjust(effects)
	l.notifyBalance(OpUpdate, Transfers, t.ID)
	return nil
}

// DeleteTransfer removes the transfer and moves the money back.
func (l *Ledger) DeleteTransfer(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var old Transfer
	err := Mutate(l.store, Transfers, func(list []Transfer) ([]Transfer, error) {
		i := slices.IndexFunc(list, func(x Transfer) bool { return x.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("cannot delete transfer %q: %w", id, ErrNotFound)
		}
		old = list[i]
		return slices.Delete(slices.Clone(list), i, i+1), nil
	})
	if err != nil {
		return err
	}
	effects := old.effects()
	for acc, d := range effects {
		effects[acc] = d.Neg()
	}
	l.adjust(effects)
	l.notifyBalance(OpDelete, Transfers, id)
	return nil
}

func sortTransfers(list []Transfer) {
	slices.SortStableFunc(list, func(a, b Transfer) int { return b.Date.Compare(a.Date) })
}

// AddCategory appends a new category, without subcategories, to the
// collection of its direction.
func (l *Ledger) AddCategory(name string, dir Direction) (Category, error) {
	name = strings.TrimSpace(name)
	var c checker
	c.required("category name", name)
	if _, err := ParseDirection(string(dir)); err != nil {
		c = append(c, err)
	}
	if err := c.err(); err != nil {
		return Category{}, fmt.Errorf("cannot add category: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.store.Snapshot()
	cat := Category{
		ID:            slugID(categoryPrefix, name, l.now(), snap.hasCategoryID),
		Name:          name,
		Type:          dir,
		Subcategories: []Subcategory{},
	}
	err := Mutate(l.store, dir.categories(), func(list []Category) ([]Category, error) {
		return append(slices.Clip(list), cat), nil
	})
	if err != nil {
		return Category{}, err
	}
	l.notify(OpAdd, dir.categories(), cat.ID)
	return cat, nil
}

// AddSubcategory appends a subcategory to parent.
//
// parent is only used for its id and direction: the category is resolved
// again from the current collection.
func (l *Ledger) AddSubcategory(parent Category, name string) (Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subcategory{}, fmt.Errorf("cannot add subcategory: %w", invalidf("subcategory name is required"))
	}
	if _, err := ParseDirection(string(parent.Type)); err != nil {
		return Subcategory{}, fmt.Errorf("cannot add subcategory: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.store.Snapshot()
	sub := Subcategory{
		ID:   slugID(subcategoryPrefix, name, l.now(), snap.hasCategoryID),
		Name: name,
	}
	err := Mutate(l.store, parent.Type.categories(), func(list []Category) ([]Category, error) {
		i := slices.IndexFunc(list, func(c Category) bool { return c.ID == parent.ID })
		if i < 0 {
			return nil, fmt.Errorf("cannot add subcategory to %s category %q: %w", parent.Type, parent.ID, ErrNotFound)
		}
		next := slices.Clone(list)
		next[i].Subcategories = append(slices.Clip(next[i].Subcategories), sub)
		return next, nil
	})
	if err != nil {
		return Subcategory{}, err
	}
	l.notify(OpAdd, parent.Type.categories(), sub.ID)
	return sub, nil
}

// AddAccount creates an account with its opening balance.
func (l *Ledger) AddAccount(a Account) (Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	var c checker
	c.required("account name", a.Name)
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		c = append(c, err)
	}
	if err := c.err(); err != nil {
		return Account{}, fmt.Errorf("cannot add account: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.store.Snapshot()
	a.ID = slugID(accountPrefix, a.Name, l.now(), func(id string) bool {
		_, ok := snap.Account(id)
		return ok
	})
	err := Mutate(l.store, Accounts, func(list []Account) ([]Account, error) {
		return append(slices.Clip(list), a), nil
	})
	if err != nil {
		return Account{}, err
	}
	l.notify(OpAdd, Accounts, a.ID)
	return a, nil
}

// AddPaymentMethod creates a payment method. Its account, when set, must exist.
func (l *Ledger) AddPaymentMethod(pm PaymentMethod) (PaymentMethod, error) {
	pm.Name = strings.TrimSpace(pm.Name)
	pm.AccountID = strings.TrimSpace(pm.AccountID)
	var c checker
	c.required("payment method name", pm.Name)
	if _, err := ParsePaymentType(string(pm.Type)); err != nil {
		c = append(c, err)
	}
	if err := c.err(); err != nil {
		return PaymentMethod{}, fmt.Errorf("cannot add payment method: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.store.Snapshot()
	if pm.AccountID != "" {
		if _, ok := snap.Account(pm.AccountID); !ok {
			return PaymentMethod{}, fmt.Errorf("cannot add payment method: account %q: %w", pm.AccountID, ErrNotFound)
		}
	}
	pm.ID = slugID(paymentMethodPrefix, pm.Name, l.now(), func(id string) bool {
		_, ok := snap.PaymentMethod(id)
		return ok
	})
	err := Mutate(l.store, PaymentMethods, func(list []PaymentMethod) ([]PaymentMethod, error) {
		return append(slices.Clip(list), pm), nil
	})
	if err != nil {
		return PaymentMethod{}, err
	}
	l.notify(OpAdd, PaymentMethods, pm.ID)
	return pm, nil
}

// SetCurrency changes the currency label used to display amounts.
func (l *Ledger) SetCurrency(code string) error {
	code, err := ValidateCurrency(code)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err = Mutate(l.store, SettingsDocument, func(s Settings) (Settings, error) {
		s.Currency = code
		return s, nil
	})
	if err != nil {
		return err
	}
	l.notify(OpSet, SettingsDocument, "")
	return nil
}

// Restore replaces every collection with the content of snap, transactions
// first.
func (l *Ledger) Restore(snap Snapshot) error {
	snap = normalize(snap)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range Collections {
		if err := l.store.Replace(c, snap.Value(c)); err != nil {
			return fmt.Errorf("cannot restore: %w", err)
		}
	}
	l.notify(OpRestore, "", "")
	return nil
}

// normalize replaces missing collections with empty ones and a missing
// currency by the default one. Transactions keep their usual order.
func normalize(snap Snapshot) Snapshot {
	for _, c := range Collections {
		if isNull(snap.Value(c)) {
			_ = snap.set(c, emptyValue(c))
		}
	}
	if snap.Settings.Currency == "" {
		snap.Settings = DefaultSettings()
	}
	snap.Expenses = slices.Clone(snap.Expenses)
	snap.Incomes = slices.Clone(snap.Incomes)
	snap.Transfers = slices.Clone(snap.Transfers)
	sortFlows(snap.Expenses)
	sortFlows(snap.Incomes)
	sortTransfers(snap.Transfers)
	return snap
}

// notifyBalance tells about a record change and the balance update that
// followed it.
func (l *Ledger) notifyBalance(op Op, c Collection, id string) {
	l.notify(op, c, id)
	l.notify(OpUpdate, Accounts, "")
}

func (l *Ledger) notify(op Op, c Collection, id string) {
	if len(l.notifiers) == 0 {
		return
	}
	ch := Change{Op: op, Collection: c, ID: id, At: l.now()}
	for _, n := range l.notifiers {
		n.Notify(ch)
	}
}
