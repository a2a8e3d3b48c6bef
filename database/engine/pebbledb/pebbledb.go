// Package pebbledb implements engine.Engine on top of cockroachdb/pebble.
package pebbledb

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/forkpow/forkpowd/database/engine"
)

var (
	ErrDbClosed         = errors.New("pebbledb: closed")
	ErrTxClosed         = errors.New("pebbledb: transaction already closed")
	ErrSnapshotReleased = errors.New("pebbledb: snapshot released")
)

const (
	// DefaultCache is the block cache size in MiB.
	DefaultCache = 16

	DefaultHandles = 16
)

// NewDB opens the pebble database at dbPath.  When create is set the database
// must not already exist, otherwise it must.  Non-positive cache and handles
// select the defaults.
func NewDB(dbPath string, create bool, cache, handles int) (engine.Engine, error) {
	if cache <= 0 {
		cache = DefaultCache
	}
	if handles <= 0 {
		handles = DefaultHandles
	}

	// Header records are small and written in height order, so the level
	// targets stay modest.
	blockCache := pebble.NewCache(int64(cache * 1024 * 1024))
	defer blockCache.Unref()
	opts := &pebble.Options{
		Cache:                    blockCache,
		ErrorIfExists:            create,
		ErrorIfNotExists:         !create,
		MaxOpenFiles:             handles,
		MaxConcurrentCompactions: runtime.NumCPU,
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 4 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 8 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 16 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1
	dbEngine, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, err
	}

	return &DB{DB: dbEngine}, nil
}

// DB wraps a pebble handle and tracks whether it was closed, since pebble
// panics on use after close.
type DB struct {
	*pebble.DB

	closed atomic.Bool
}

// setClosed marks the database closed and returns true if it was open.
func (d *DB) setClosed() bool {
	return !d.closed.Swap(true)
}

func (d *DB) isClosed() bool {
	return d.closed.Load()
}

// Transaction returns a new write batch.
func (d *DB) Transaction() (engine.Transaction, error) {
	if d.isClosed() {
		return nil, ErrDbClosed
	}
	return NewTransaction(d.DB.NewBatch()), nil
}

func (d *DB) Snapshot() (engine.Snapshot, error) {
	if d.isClosed() {
		return nil, ErrDbClosed
	}
	return NewSnapshot(d.DB.NewSnapshot()), nil
}

func (d *DB) Close() error {
	if !d.setClosed() {
		return ErrDbClosed
	}
	return d.DB.Close()
}
