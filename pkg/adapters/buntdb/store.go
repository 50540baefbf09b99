// Package buntdb stores machines in an embedded buntdb database file.
package buntdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/buntdb"

	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

// InMemory opens a database that is never written to disk.
const InMemory = ":memory:"

const keyPrefix = "machine."

var (
	// ErrLocked is returned when another process holds the database file.
	ErrLocked = errors.New("couldn't acquire database lock (is another powerset running?)")
)

// Store implements ports.MachineStore on top of buntdb.
type Store struct {
	db   *buntdb.DB
	lock *flock.Flock
	ttl  time.Duration
}

type Option func(*Store)

// WithTTL makes stored machines expire after ttl.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// Open opens or creates the database at path. File backed databases are
// guarded by an exclusive lock on path + ".lock" for the lifetime of the store.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	if path != InMemory {
		s.lock = flock.New(path + ".lock")
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		if !ok {
			return nil, ErrLocked
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		s.unlock()
		return nil, fmt.Errorf("failed to open datastore %s: %w", path, err)
	}
	s.db = db
	return s, nil
}

func (s *Store) unlock() {
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}

func key(name string) string {
	return keyPrefix + name
}

// Save persists the document as JSON.
func (s *Store) Save(ctx context.Context, name string, doc *codec.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal machine: %w", err)
	}

	var setOptions *buntdb.SetOptions
	if s.ttl > 0 {
		setOptions = &buntdb.SetOptions{Expires: true, TTL: s.ttl}
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key(name), string(data), setOptions)
		return err
	})
}

// Load retrieves the document stored under name.
func (s *Store) Load(ctx context.Context, name string) (*codec.Document, error) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(key(name))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, domain.ErrMachineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read machine %q: %w", name, err)
	}

	doc, err := codec.DecodeJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode machine %q: %w", name, err)
	}
	return doc, nil
}

// Delete removes the machine.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key(name))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	return err
}

// List returns stored names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+"*", func(k, _ string) bool {
			names = append(names, strings.TrimPrefix(k, keyPrefix))
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return names, nil
}

// Close closes the database and releases the file lock.
func (s *Store) Close() error {
	err := s.db.Close()
	s.unlock()
	return err
}
