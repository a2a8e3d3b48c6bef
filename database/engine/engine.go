// Package engine defines the minimal key/value storage contract the header
// database is written against, so the same store can run on goleveldb or
// pebble.
package engine

import "errors"

var (
	// ErrNotFound is returned by Snapshot.Get when the key does not exist,
	// regardless of the backend in use.
	ErrNotFound = errors.New("engine: key not found")

	// ErrIterReleased is returned by Iterator.Error once the iterator has
	// been released.
	ErrIterReleased = errors.New("engine: iterator released")
)

// Engine is an open key/value database.
type Engine interface {
	// Transaction starts a write batch.  Nothing is visible to snapshots
	// until Commit returns.
	Transaction() (Transaction, error)

	// Snapshot returns a consistent read-only view of the database.
	Snapshot() (Snapshot, error)

	Close() error
}

// Transaction is an atomic batch of writes.
type Transaction interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error

	// Discard abandons the transaction.  It is safe to call more than once
	// and after Commit.
	Discard()
}

// Snapshot is a point in time read-only view of an Engine.
type Snapshot interface {
	// Get returns a copy of the value stored under key or ErrNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	NewIterator(*Range) Iterator
	Releaser
}

// Releaser releases the resources held by a snapshot or iterator.  Release
// is idempotent.
type Releaser interface {
	Release()
}
