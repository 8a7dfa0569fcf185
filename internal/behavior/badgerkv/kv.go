package badgerkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
)

// KV implements behavior.KV on an embedded BadgerDB.
type KV struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) a Badger database in dir.
func Open(dir string, ttl time.Duration) (*KV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return New(db, ttl), nil
}

// New wraps an already opened database. A ttl of zero keeps keys forever.
func New(db *badger.DB, ttl time.Duration) *KV {
	return &KV{db: db, ttl: ttl}
}

// Get returns the value stored under key.
func (k *KV) Get(_ context.Context, key string) (string, error) {
	var value []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", apperrors.NotFound("key", key)
		}
		return "", fmt.Errorf("badger get %s: %w", key, err)
	}
	return string(value), nil
}

// Set stores value under key.
func (k *KV) Set(_ context.Context, key, value string) error {
	err := k.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value))
		if k.ttl > 0 {
			entry = entry.WithTTL(k.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Ping verifies the database accepts reads.
func (k *KV) Ping(_ context.Context) error {
	if k.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return k.db.View(func(*badger.Txn) error { return nil })
}

// Close closes the underlying database.
func (k *KV) Close() error {
	return k.db.Close()
}
