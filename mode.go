package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Mode is the current data source selection.
type Mode string

const (
	// ModeLoading is the state while identity is unknown: changes stay in memory.
	ModeLoading Mode = "loading"
	// ModeGuest stores data in the local backend.
	ModeGuest Mode = "guest"
	// ModeAuthenticated stores data in the user's remote backend.
	ModeAuthenticated Mode = "authenticated"
)

// ParseMode parses "loading", "guest" or "authenticated".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLoading, ModeGuest, ModeAuthenticated:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q: %w", s, ErrInvalid)
}

// AuthState is the signal received from the identity provider.
type AuthState struct {
	Mode   Mode
	UserID string // set in ModeAuthenticated only
}

// Guest is the AuthState of an anonymous user.
var Guest = AuthState{Mode: ModeGuest}

// Authenticated returns the AuthState of a signed in user.
func Authenticated(userID string) AuthState {
	return AuthState{Mode: ModeAuthenticated, UserID: userID}
}

func (a AuthState) String() string {
	if a.Mode == ModeAuthenticated {
		return fmt.Sprintf("%s(%s)", a.Mode, a.UserID)
	}
	return string(a.Mode)
}

// LocalBackend is the guest storage. Clear removes every collection once
// they were migrated.
type LocalBackend interface {
	Backend
	Clear(ctx context.Context) error
}

// RemoteBackend is the storage of one user. Its marker records that the user
// data was initialized, by migration or seeding.
type RemoteBackend interface {
	Backend
	Initialized(ctx context.Context) (bool, error)
	MarkInitialized(ctx context.Context) error
}

// RemoteOpener returns the remote backend of a user.
type RemoteOpener func(ctx context.Context, userID string) (RemoteBackend, error)

// Coordinator selects the backend of a Store from the authentication state,
// and initializes the remote data of users on their first sign in.
type Coordinator struct {
	mu    sync.Mutex
	store *Store
	local LocalBackend
	open  RemoteOpener
	state AuthState

	// users whose marker was already checked.
	initialized map[string]bool
}

// NewCoordinator returns a coordinator in ModeLoading.
func NewCoordinator(store *Store, local LocalBackend, open RemoteOpener) *Coordinator {
	store.SetBackend(nil)
	return &Coordinator{
		store:       store,
		local:       local,
		open:        open,
		state:       AuthState{Mode: ModeLoading},
		initialized: make(map[string]bool),
	}
}

// Mode returns the current mode.
func (c *Coordinator) Mode() Mode { return c.State().Mode }

// State returns the current authentication state.
func (c *Coordinator) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply switches to the data source of next and loads its data.
//
// On the first sign in of a user whose remote data was never initialized,
// non-empty guest collections are migrated then cleared, or, without guest
// data, default data is seeded. When anything fails the coordinator falls
// back to ModeLoading with default data.
func (c *Coordinator) Apply(ctx context.Context, next AuthState) error {
	if next.Mode != ModeAuthenticated {
		next.UserID = ""
	}
	if _, err := ParseMode(string(next.Mode)); err != nil {
		return err
	}
	if next.Mode == ModeAuthenticated && next.UserID == "" {
		return fmt.Errorf("authenticated mode without user id: %w", ErrInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if next == c.state {
		return nil
	}
	log.Printf("mode-change from=%q to=%q", c.state, next)

	// no write may go to the new backend while switching.
	c.store.SetBackend(nil)
	c.state = AuthState{Mode: ModeLoading}
	if err := c.switchTo(ctx, next); err != nil {
		c.store.SetBackend(nil)
		c.store.Reset(DefaultSnapshot())
		return err
	}
	c.state = next
	return nil
}

// switchTo attaches the backend of next and loads its data.
func (c *Coordinator) switchTo(ctx context.Context, next AuthState) error {
	var backend Backend
	switch next.Mode {
	case ModeLoading:
		c.store.Reset(DefaultSnapshot())
		return nil
	case ModeGuest:
		if c.local == nil {
			return errors.New("guest mode is not available: no local backend")
		}
		backend = c.local
	case ModeAuthenticated:
		if c.open == nil {
			return errors.New("authenticated mode is not available: no remote backend")
		}
		remote, err := c.open(ctx, next.UserID)
		if err != nil {
			return fmt.Errorf("cannot open remote data of %q: %w", next.UserID, err)
		}
		if !c.initialized[next.UserID] {
			if err := c.initialize(ctx, next.UserID, remote); err != nil {
				return err
			}
			c.initialized[next.UserID] = true
		}
		backend = remote
	}

	c.store.SetBackend(backend)
	if err := c.store.Load(ctx); err != nil {
		return fmt.Errorf("cannot load %s data: %w", next.Mode, err)
	}
	return nil
}

// initialize migrates or seeds the remote data of a user, unless its marker
// exists. It is not idempotent: a failure after the first write and before
// the marker may migrate or seed again on the next sign in.
func (c *Coordinator) initialize(ctx context.Context, userID string, remote RemoteBackend) error {
	// guest writes must land before they are read for migration.
	c.store.Flush()

	ok, err := remote.Initialized(ctx)
	if err != nil {
		return fmt.Errorf("cannot check remote data of %q: %w", userID, err)
	}
	if ok {
		return nil
	}

	guest, err := c.guestData(ctx)
	if err != nil {
		return err
	}
	if len(guest) > 0 {
		for _, col := range Collections {
			data, ok := guest[col]
			if !ok {
				continue
			}
			if err := remote.Write(ctx, col, data); err != nil {
				return fmt.Errorf("cannot migrate %q to %q: %w", col, userID, err)
			}
		}
		if err := c.local.Clear(ctx); err != nil {
			log.Printf("guest-clear-failed user=%q err=%q", userID, err)
		}
		log.Printf("guest-migrated user=%q collections=%d", userID, len(guest))
	} else {
		if err := WriteSnapshot(ctx, remote, DefaultSnapshot()); err != nil {
			return fmt.Errorf("cannot seed %q: %w", userID, err)
		}
		log.Printf("user-seeded user=%q", userID)
	}
	if err := remote.MarkInitialized(ctx); err != nil {
		return fmt.Errorf("cannot mark %q initialized: %w", userID, err)
	}
	return nil
}

// guestData returns the non-empty guest collections, re-encoded.
func (c *Coordinator) guestData(ctx context.Context) (map[Collection][]byte, error) {
	found := make(map[Collection][]byte)
	if c.local == nil {
		return found, nil
	}
	for _, col := range Collections {
		data, err := c.local.Read(ctx, col)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read guest %q: %w", col, err)
		}
		v, err := DecodeCollection(col, data)
		if err != nil {
			log.Printf("guest-unparsable collection=%q err=%q", col, err)
			continue
		}
		if IsEmpty(v) {
			continue
		}
		if found[col], err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// WriteSnapshot writes every collection of snap to b, synchronously.
func WriteSnapshot(ctx context.Context, b Backend, snap Snapshot) error {
	for _, col := range Collections {
		data, err := json.Marshal(snap.Value(col))
		if err != nil {
			return fmt.Errorf("cannot encode collection %q: %w", col, err)
		}
		if err := b.Write(ctx, col, data); err != nil {
			return fmt.Errorf("cannot write collection %q: %w", col, err)
		}
	}
	return nil
}

// Observe applies every state received until states is closed or ctx is
// done. Failures are logged and do not stop the loop.
func (c *Coordinator) Observe(ctx context.Context, states <-chan AuthState) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-states:
			if !ok {
				return nil
			}
			if err := c.Apply(ctx, s); err != nil {
				log.Printf("mode-change-failed to=%q err=%q", s, err)
			}
		}
	}
}
