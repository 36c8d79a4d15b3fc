// Package remote stores the data of authenticated users in a document store.
//
// Every collection of a user is one document at users/<uid>/data/<collection>
// holding {"items": value}. The document users/<uid> marks that the user data
// was initialized.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/budget"
)

// ErrNoDocument is returned by a DocumentStore when a path holds no document.
var ErrNoDocument = errors.New("no document")

// DocumentStore reads and writes JSON documents by path.
type DocumentStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, doc []byte) error
}

// UserPath returns the path of the marker document of a user.
func UserPath(userID string) string { return "users/" + userID }

// CollectionPath returns the path of the document holding a collection of a user.
func CollectionPath(userID string, c budget.Collection) string {
	return UserPath(userID) + "/data/" + string(c)
}

// Backend is the budget.RemoteBackend of one user.
type Backend struct {
	docs   DocumentStore
	userID string
	now    func() time.Time
}

var _ budget.RemoteBackend = (*Backend)(nil)

// New returns the backend of userID in docs.
func New(docs DocumentStore, userID string) (*Backend, error) {
	if strings.TrimSpace(userID) == "" || strings.Contains(userID, "/") {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, budget.ErrInvalid)
	}
	return &Backend{docs: docs, userID: userID, now: time.Now}, nil
}

// Opener returns a budget.RemoteOpener on docs.
func Opener(docs DocumentStore) budget.RemoteOpener {
	return func(ctx context.Context, userID string) (budget.RemoteBackend, error) {
		return New(docs, userID)
	}
}

// UserID returns the user this backend belongs to.
func (b *Backend) UserID() string { return b.userID }

type document struct {
	Items json.RawMessage `json:"items"`
}

// Read returns the items of collection c, or budget.ErrNoData.
func (b *Backend) Read(ctx context.Context, c budget.Collection) ([]byte, error) {
	path := CollectionPath(b.userID, c)
	data, err := b.docs.Get(ctx, path)
	if errors.Is(err, ErrNoDocument) {
		return nil, budget.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document %q: %w", path, err)
	}
	if len(doc.Items) == 0 {
		return nil, budget.ErrNoData
	}
	return doc.Items, nil
}

// Write replaces the items of collection c.
func (b *Backend) Write(ctx context.Context, c budget.Collection, data []byte) error {
	path := CollectionPath(b.userID, c)
	doc, err := json.Marshal(document{Items: data})
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", path, err)
	}
	if err := b.docs.Set(ctx, path, doc); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

type marker struct {
	Initialized bool      `json:"initialized"`
	At          time.Time `json:"at"`
}

// Initialized reports whether the marker document exists.
func (b *Backend) Initialized(ctx context.Context) (bool, error) {
	data, err := b.docs.Get(ctx, UserPath(b.userID))
	if errors.Is(err, ErrNoDocument) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read marker of %q: %w", b.userID, err)
	}
	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		return false, fmt.Errorf("invalid marker of %q: %w", b.userID, err)
	}
	return m.Initialized, nil
}

// MarkInitialized writes the marker document.
func (b *Backend) MarkInitialized(ctx context.Context) error {
	data, err := json.Marshal(marker{Initialized: true, At: b.now().UTC()})
	if err != nil {
		return err
	}
	if err := b.docs.Set(ctx, UserPath(b.userID), data); err != nil {
		return fmt.Errorf("failed to mark %q initialized: %w", b.userID, err)
	}
	return nil
}
