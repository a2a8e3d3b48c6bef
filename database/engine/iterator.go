package engine

// Iterator walks the key/value pairs of a Range in ascending key order.  A
// fresh iterator is positioned before the first pair, so the usual loop is
//
//	for iter.Next() {
//		...
//	}
type Iterator interface {
	// First moves the iterator to the first key/value pair and returns
	// whether such a pair exists.
	First() bool

	// Last moves the iterator to the last key/value pair and returns
	// whether such a pair exists.
	Last() bool

	// Seek moves the iterator to the first key/value pair whose key is
	// greater than or equal to the given key.
	Seek(key []byte) bool

	// Next moves the iterator to the next key/value pair.  It returns false
	// once the iterator is exhausted.
	Next() bool

	// Prev moves the iterator to the previous key/value pair.
	Prev() bool

	Valid() bool

	// Error returns any accumulated error.  Exhausting all the key/value
	// pairs is not considered to be an error.
	Error() error

	// Key returns the key of the current pair, or nil when not positioned.
	// The slice is only valid until the iterator moves.
	Key() []byte

	// Value returns the value of the current pair, or nil when not
	// positioned.  The slice is only valid until the iterator moves.
	Value() []byte

	Releaser
}

// Range is a key range.
type Range struct {
	// Start of the key range, included in the range.
	Start []byte

	// Limit of the key range, not included in the range.  A nil limit
	// leaves the range open ended.
	Limit []byte
}

// BytesPrefix returns the key range covering every key with the given prefix.
func BytesPrefix(prefix []byte) *Range {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c < 0xff {
			limit = make([]byte, i+1)
			copy(limit, prefix)
			limit[i] = c + 1
			break
		}
	}
	return &Range{prefix, limit}
}
