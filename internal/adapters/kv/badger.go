package kv

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store on an embedded BadgerDB database,
// giving durability across restarts without an external server.
type BadgerStore struct {
	db *badger.DB
}

// Option applies a configuration option to the BadgerStore opener.
type Option func(*badger.Options)

// WithInMemory opens the database without a backing directory. Used in
// tests and ephemeral runs.
func WithInMemory() Option {
	return func(o *badger.Options) {
		o.InMemory = true
		o.Dir = ""
		o.ValueDir = ""
	}
}

// NewBadgerStore opens (or creates) a Badger database at dir.
func NewBadgerStore(dir string, opts ...Option) (*BadgerStore, error) {
	o := badger.DefaultOptions(dir).WithLogger(nil)
	for _, opt := range opts {
		opt(&o)
	}

	db, err := badger.Open(o)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		if errors.Is(err, badger.ErrDBClosed) {
			return nil, ErrStoreClosed
		}
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return out, nil
}

// Set writes the value for key.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		if errors.Is(err, badger.ErrDBClosed) {
			return ErrStoreClosed
		}
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrDBClosed) {
			return ErrStoreClosed
		}
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger store: %w", err)
	}
	return nil
}
