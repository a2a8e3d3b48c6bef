// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/wire"
)

// HeaderCtx is an interface that describes information about a block. This is
// used so that external libraries can provide their own context (the header's
// parent, bits, etc.) when attempting to contextually validate a header.
type HeaderCtx interface {
	// Height returns the header's height.
	Height() int32

	// Bits returns the header's bits.
	Bits() uint32

	// Timestamp returns the header's timestamp.
	Timestamp() int64

	// Parent returns the header's parent or nil for the genesis block.
	Parent() HeaderCtx

	// AncestorCtx returns the header's ancestor at the provided height.
	// It returns nil when the height is negative or after the header.
	AncestorCtx(height int32) HeaderCtx

	// RelativeAncestorCtx returns the header's ancestor that is distance
	// blocks before it in the chain.
	RelativeAncestorCtx(distance int32) HeaderCtx
}

// HeaderStore persists headers once they have been connected to a
// HeaderChain.
type HeaderStore interface {
	// PutHeader stores the header connected at the given height.
	PutHeader(height int32, header *wire.BlockHeader) error
}
