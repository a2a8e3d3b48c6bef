package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/forkpow/forkpowd/database/engine"
)

func NewIterator(iter *pebble.Iterator) engine.Iterator {
	return &Iterator{Iterator: iter}
}

// Iterator adapts a pebble iterator to engine.Iterator.  A failed open is
// represented by a released iterator carrying err.
type Iterator struct {
	*pebble.Iterator
	err      error
	released bool
}

func (i *Iterator) First() bool {
	return !i.released && i.Iterator.First()
}

func (i *Iterator) Last() bool {
	return !i.released && i.Iterator.Last()
}

func (i *Iterator) Seek(key []byte) bool {
	return !i.released && i.Iterator.SeekGE(key)
}

func (i *Iterator) Next() bool {
	return !i.released && i.Iterator.Next()
}

func (i *Iterator) Prev() bool {
	return !i.released && i.Iterator.Prev()
}

func (i *Iterator) Valid() bool {
	return !i.released && i.Iterator.Valid()
}

func (i *Iterator) Key() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Key()
}

func (i *Iterator) Value() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		i.Iterator.Close()
	}
}

func (i *Iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	if i.released {
		return engine.ErrIterReleased
	}
	return i.Iterator.Error()
}
