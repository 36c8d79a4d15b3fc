package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Backend is where collections are durably stored.
//
// Read returns ErrNoData when the collection was never written.
type Backend interface {
	Read(ctx context.Context, c Collection) ([]byte, error)
	Write(ctx context.Context, c Collection, data []byte) error
}

// write is a queued persistence request. It keeps the backend that was active
// when the in-memory change happened.
type write struct {
	backend Backend
	c       Collection
	data    []byte
}

// Store holds the in-memory value of every collection and persists changes
// to the active Backend.
//
// Changes are applied to memory synchronously. Persistence happens later, in
// a single worker, in the order the changes were made. Failures are logged,
// memory is never rolled back.
type Store struct {
	mu      sync.RWMutex
	values  Snapshot
	backend Backend

	qmu     sync.Mutex
	cond    *sync.Cond
	queue   []write
	pending int // queued or being written
	closed  bool
	done    chan struct{}

	// Timeout bounds each write to the backend.
	Timeout time.Duration
}

// NewStore returns a Store holding the default data and no backend.
// Call Close to stop its write worker.
func NewStore() *Store {
	s := &Store{
		values:  DefaultSnapshot(),
		done:    make(chan struct{}),
		Timeout: 30 * time.Second,
	}
	s.cond = sync.NewCond(&s.qmu)
	go s.worker()
	return s
}

// SetBackend selects the backend for the following changes. nil means changes
// stay in memory. Writes already queued still go to the backend they were
// made under.
func (s *Store) SetBackend(b Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = b
}

// Backend returns the active backend, or nil.
func (s *Store) Backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

// Load replaces the in-memory collections with the content of the active
// backend. Absent or unparsable collections are replaced by their default
// value.
func (s *Store) Load(ctx context.Context) error {
	b := s.Backend()
	if b == nil {
		return errors.New("cannot load: no backend")
	}
	next, err := ReadSnapshot(ctx, b)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != b {
		return errors.New("cannot load: backend changed while loading")
	}
	s.values = next
	return nil
}

// Reset replaces the in-memory collections without persisting anything.
func (s *Store) Reset(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = snap
}

// ReadSnapshot reads every collection of b. Absent or unparsable collections
// get their default value.
func ReadSnapshot(ctx context.Context, b Backend) (Snapshot, error) {
	var snap Snapshot
	for _, c := range Collections {
		v, err := readCollection(ctx, b, c)
		if err != nil {
			return Snapshot{}, err
		}
		if err := snap.set(c, v); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func readCollection(ctx context.Context, b Backend, c Collection) (any, error) {
	data, err := b.Read(ctx, c)
	if errors.Is(err, ErrNoData) {
		return defaultValue(c), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read collection %q: %w", c, err)
	}
	v, err := DecodeCollection(c, data)
	if err != nil {
		log.Printf("collection-unparsable collection=%q err=%q", c, err)
		return defaultValue(c), nil
	}
	if c == SettingsDocument && IsEmpty(v) {
		return defaultValue(c), nil
	}
	return v, nil
}

// Snapshot returns the current value of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Get returns the current value of collection c.
func Get[V any](s *Store, c Collection) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values.Value(c).(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("collection %q does not hold a %T: %w", c, zero, ErrInvalid)
	}
	return v, nil
}

// Mutate applies fn to the current value of collection c and stores the
// result in memory, then queues it for persistence.
//
// fn must not modify its argument in place. When fn fails nothing changes.
func Mutate[V any](s *Store, c Collection, fn func(V) (V, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.values.Value(c).(V)
	if !ok {
		var zero V
		return fmt.Errorf("collection %q does not hold a %T: %w", c, zero, ErrInvalid)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.replace(c, next)
}

// Replace stores v as the value of collection c and queues it for persistence.
func (s *Store) Replace(c Collection, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(c, v)
}

func (s *Store) replace(c Collection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode collection %q: %w", c, err)
	}
	if err := s.values.set(c, v); err != nil {
		return err
	}
	if s.backend == nil {
		log.Printf("persist-skipped collection=%q reason=%q", c, "no backend")
		return nil
	}
	s.enqueue(write{backend: s.backend, c: c, data: data})
	return nil
}

func (s *Store) enqueue(w write) {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if s.closed {
		log.Printf("persist-skipped collection=%q reason=%q", w.c, "store closed")
		return
	}
	s.queue = append(s.queue, w)
	s.pending++
	s.cond.Broadcast()
}

func (s *Store) worker() {
	defer close(s.done)
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.qmu.Unlock()
			return
		}
		w := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		s.persist(w)

		s.qmu.Lock()
		s.pending--
		s.cond.Broadcast()
		s.qmu.Unlock()
	}
}

func (s *Store) persist(w write) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	if err := w.backend.Write(ctx, w.c, w.data); err != nil {
		log.Printf("persist-failed collection=%q err=%q", w.c, err)
		return
	}
	log.Printf("persisted collection=%q bytes=%d", w.c, len(w.data))
}

// Flush waits until every queued write was attempted.
func (s *Store) Flush() {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	for s.pending > 0 {
		s.cond.Wait()
	}
}

// Close flushes pending writes and stops the write worker.
// Changes made after Close stay in memory.
func (s *Store) Close() error {
	s.qmu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.qmu.Unlock()
	<-s.done
	return nil
}
