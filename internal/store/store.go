// Package store owns all mutable storefront state. Every write goes through Mutate, which
// applies a function to a private copy and only swaps it in when the function and the
// invariant checks succeed, then flushes the result to the persister.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"
)

// Persister writes a full snapshot. database.FileGateway and database.SQLGateway satisfy it.
type Persister interface {
	Save(models.Snapshot) error
}

type Store struct {
	mu        sync.RWMutex
	state     models.Snapshot
	persister Persister
	verify    bool
	now       func() time.Time
}

type Option func(*Store)

// WithVerification runs Snapshot.Verify after every mutation and rejects the commit on failure.
func WithVerification(on bool) Option { return func(s *Store) { s.verify = on } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New takes ownership of a copy of initial. persister may be nil for purely in-memory stores.
// With verification requested, initial is checked first; if it already violates the
// invariants the failure is logged and verification stays off for this store.
func New(initial models.Snapshot, persister Persister, opts ...Option) *Store {
	s := &Store{state: initial.Clone(), persister: persister, now: time.Now}
	if s.state.Carts == nil {
		s.state.Carts = map[string][]models.CartLine{}
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.verify {
		if err := s.state.Verify(); err != nil {
			// An inconsistent baseline would fail every later commit.
			applog.Error(nil, "store.invariant", err, map[string]any{"stage": "load", "verify": false})
			s.verify = false
		}
	}
	return s
}

// Verifying reports whether commits are being checked against the invariants.
func (s *Store) Verifying() bool { return s.verify }

// Mutate runs fn against a copy of the state while holding the write lock. The copy is
// committed only if fn returns nil and, with verification on, the invariants still hold.
// The commit is flushed before the lock is released; a failed flush is logged and the
// in-memory state stays authoritative.
func (s *Store) Mutate(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{state: s.state.Clone(), now: s.now()}
	if err := fn(tx); err != nil {
		return err
	}
	if s.verify {
		if err := tx.state.Verify(); err != nil {
			applog.Error(nil, "store.invariant", err, nil)
			return err
		}
	}
	s.state = tx.state
	s.flushLocked()
	return nil
}

// View gives fn read access to the committed state. fn must not retain or modify anything
// reachable from the snapshot; copy out what you return.
func (s *Store) View(fn func(st *models.Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// Snapshot returns a deep copy of the committed state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Flush saves the current state, returning the persistence error instead of swallowing it.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.state.Clone()); err != nil {
		return wrapPersistence(err)
	}
	return nil
}

func (s *Store) Now() time.Time { return s.now() }

func (s *Store) flushLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.state.Clone()); err != nil {
		applog.Error(nil, "store.save", wrapPersistence(err), map[string]any{"products": len(s.state.Products)})
	}
}

func wrapPersistence(err error) error {
	if errors.Is(err, models.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrPersistence, err)
}
