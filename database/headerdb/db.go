// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headerdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/forkpow/forkpowd/database/engine"
)

// Errors that the header database functions may return.
var (
	ErrDbDoesNotExist    = errors.New("non-existent database")
	ErrDbExists          = errors.New("database already exists")
	ErrDbUnknownType     = errors.New("non-existent database type")
	ErrHeaderNotFound    = errors.New("requested header does not exist")
	ErrNonSequentialPut  = errors.New("header height does not follow the stored tip")
	ErrCorruptHeaderData = errors.New("corrupt header data")
)

var (
	// headerKeyPrefix prefixes every header record.  The height follows as
	// a big-endian uint32 so records iterate in height order.
	headerKeyPrefix = []byte("h")

	// tipKey stores the big-endian height of the highest stored header.
	tipKey = []byte("tip")
)

// headerKey returns the record key for the header at height.
func headerKey(height int32) []byte {
	key := make([]byte, len(headerKeyPrefix)+4)
	copy(key, headerKeyPrefix)
	binary.BigEndian.PutUint32(key[len(headerKeyPrefix):], uint32(height))
	return key
}

// DB stores a single chain of block headers keyed by height.
type DB struct {
	mtx    sync.Mutex
	engine engine.Engine
	dbType string
}

// Open opens the header database of type dbType at path.  When create is set
// a missing database is created; otherwise ErrDbDoesNotExist is returned for
// a missing database.
func Open(dbType, path string, create bool) (*DB, error) {
	drv, ok := lookupDriver(dbType)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported %v)", ErrDbUnknownType,
			dbType, SupportedDrivers())
	}

	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if !exists && !create {
		return nil, fmt.Errorf("%w: %s", ErrDbDoesNotExist, path)
	}

	eng, err := drv.Open(path, !exists)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s database at %s: %w",
			dbType, path, err)
	}

	log.Debugf("Opened %s header database at %s", dbType, path)
	return &DB{engine: eng, dbType: dbType}, nil
}

// Type returns the driver the database was opened with.
func (db *DB) Type() string {
	return db.dbType
}

// tipHeight returns the stored tip height.  This function MUST be called with
// the database lock held.
func (db *DB) tipHeight(snapshot engine.Snapshot) (int32, bool, error) {
	val, err := snapshot.Get(tipKey)
	if errors.Is(err, engine.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(val) != 4 {
		return 0, false, fmt.Errorf("%w: tip record is %d bytes",
			ErrCorruptHeaderData, len(val))
	}
	return int32(binary.BigEndian.Uint32(val)), true, nil
}

// TipHeight returns the height of the highest stored header.  The boolean is
// false when the database holds no headers.
//
// This function is safe for concurrent access.
func (db *DB) TipHeight() (int32, bool, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	snapshot, err := db.engine.Snapshot()
	if err != nil {
		return 0, false, err
	}
	defer snapshot.Release()

	return db.tipHeight(snapshot)
}

// PutHeader stores header at height and advances the tip.  Heights must be
// written in order starting at zero.
//
// This function is safe for concurrent access.
func (db *DB) PutHeader(height int32, header *wire.BlockHeader) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	snapshot, err := db.engine.Snapshot()
	if err != nil {
		return err
	}
	tip, haveTip, err := db.tipHeight(snapshot)
	snapshot.Release()
	if err != nil {
		return err
	}

	var want int32
	if haveTip {
		want = tip + 1
	}
	if height != want {
		return fmt.Errorf("%w: got height %d, want %d",
			ErrNonSequentialPut, height, want)
	}

	var buf bytes.Buffer
	buf.Grow(wire.MaxBlockHeaderPayload)
	if err := header.Serialize(&buf); err != nil {
		return err
	}

	var tipVal [4]byte
	binary.BigEndian.PutUint32(tipVal[:], uint32(height))

	tx, err := db.engine.Transaction()
	if err != nil {
		return err
	}
	if err := tx.Put(headerKey(height), buf.Bytes()); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Put(tipKey, tipVal[:]); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		tx.Discard()
		return err
	}

	log.Tracef("Stored header %v at height %d", header.BlockHash(), height)
	return nil
}

// FetchHeader returns the header stored at height.
//
// This function is safe for concurrent access.
func (db *DB) FetchHeader(height int32) (*wire.BlockHeader, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	snapshot, err := db.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Release()

	val, err := snapshot.Get(headerKey(height))
	if errors.Is(err, engine.ErrNotFound) {
		return nil, fmt.Errorf("%w: height %d", ErrHeaderNotFound, height)
	}
	if err != nil {
		return nil, err
	}
	return deserializeHeader(height, val)
}

// ForEachHeader calls fn for every stored header in ascending height order.
// Iteration stops at the first error returned by fn, which is passed through.
//
// This function is safe for concurrent access, although fn runs against a
// snapshot and does not see headers stored after the call began.
func (db *DB) ForEachHeader(fn func(height int32, header *wire.BlockHeader) error) error {
	db.mtx.Lock()
	snapshot, err := db.engine.Snapshot()
	db.mtx.Unlock()
	if err != nil {
		return err
	}
	defer snapshot.Release()

	iter := snapshot.NewIterator(engine.BytesPrefix(headerKeyPrefix))
	defer iter.Release()

	want := int32(0)
	for iter.Next() {
		key := iter.Key()
		if len(key) != len(headerKeyPrefix)+4 {
			return fmt.Errorf("%w: header key %x", ErrCorruptHeaderData,
				key)
		}
		height := int32(binary.BigEndian.Uint32(key[len(headerKeyPrefix):]))
		if height != want {
			return fmt.Errorf("%w: missing header at height %d",
				ErrCorruptHeaderData, want)
		}
		header, err := deserializeHeader(height, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(height, header); err != nil {
			return err
		}
		want++
	}
	return iter.Error()
}

// deserializeHeader decodes a stored header record.
func deserializeHeader(height int32, val []byte) (*wire.BlockHeader, error) {
	if len(val) != wire.MaxBlockHeaderPayload {
		return nil, fmt.Errorf("%w: header at height %d is %d bytes",
			ErrCorruptHeaderData, height, len(val))
	}
	var header wire.BlockHeader
	if err := header.Deserialize(bytes.NewReader(val)); err != nil {
		return nil, fmt.Errorf("%w: header at height %d: %v",
			ErrCorruptHeaderData, height, err)
	}
	return &header, nil
}

// Close closes the underlying storage engine.
func (db *DB) Close() error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	log.Debugf("Closing %s header database", db.dbType)
	return db.engine.Close()
}
