// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2018 The Decred developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// nodeID is the position of a block node within the block index arena.
type nodeID int32

// noNode is the parent id of the genesis block.
const noNode nodeID = -1

// blockNode represents a block within the block index arena.  Nodes never
// own their parent, they only reference it by id, so the arena can be
// appended to without creating ownership cycles.
type blockNode struct {
	// NOTE: Additions, deletions, or modifications to the order of the
	// definitions in this struct should not be changed without considering
	// how it affects alignment on 64-bit platforms.

	// hash is the hash of the block this node represents.
	hash chainhash.Hash

	// workSum is the total amount of work in the chain up to and including
	// this node.
	workSum *big.Int

	// timestamp is the block timestamp in seconds since the unix epoch.
	timestamp int64

	// parent is the arena id of the parent block or noNode.
	parent nodeID

	// height is the position of the block in the chain.
	height int32

	// bits is the compact target the block satisfied.
	bits uint32
}

// BlockIndex provides facilities for keeping track of an in-memory index of
// block headers.  Nodes live in an append-only arena and reference their
// parent by index, which gives O(1) appends and allows any number of
// concurrent readers.
type BlockIndex struct {
	sync.RWMutex
	nodes []blockNode
	index map[chainhash.Hash]nodeID
}

// NewBlockIndex returns a new empty instance of a block index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		index: make(map[chainhash.Hash]nodeID),
	}
}

// AddNode adds a node for the passed header to the block index.  The first
// node added becomes the genesis block and every later header must reference
// a parent which is already in the index.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) AddNode(header *wire.BlockHeader) (*BlockNode, error) {
	hash := header.BlockHash()

	bi.Lock()
	defer bi.Unlock()

	if _, ok := bi.index[hash]; ok {
		str := fmt.Sprintf("already have block %v", hash)
		return nil, ruleError(ErrDuplicateBlock, str)
	}

	parent := noNode
	var height int32
	workSum := CalcWork(header.Bits)
	if len(bi.nodes) > 0 {
		id, ok := bi.index[header.PrevBlock]
		if !ok {
			str := fmt.Sprintf("previous block %v is unknown",
				header.PrevBlock)
			return nil, ruleError(ErrPreviousBlockUnknown, str)
		}
		parentNode := &bi.nodes[id]
		parent = id
		height = parentNode.height + 1
		workSum.Add(workSum, parentNode.workSum)
	}

	id := nodeID(len(bi.nodes))
	bi.nodes = append(bi.nodes, blockNode{
		hash:      hash,
		workSum:   workSum,
		timestamp: header.Timestamp.Unix(),
		parent:    parent,
		height:    height,
		bits:      header.Bits,
	})
	bi.index[hash] = id

	return &BlockNode{bi: bi, id: id}, nil
}

// LookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) LookupNode(hash *chainhash.Hash) *BlockNode {
	bi.RLock()
	id, ok := bi.index[*hash]
	bi.RUnlock()
	if !ok {
		return nil
	}
	return &BlockNode{bi: bi, id: id}
}

// HaveBlock returns whether or not the block index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	_, hasBlock := bi.index[*hash]
	bi.RUnlock()
	return hasBlock
}

// Count returns the number of nodes in the index.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) Count() int {
	bi.RLock()
	n := len(bi.nodes)
	bi.RUnlock()
	return n
}

// BlockNode is a handle to a node within a BlockIndex.  It implements
// HeaderCtx.  All accessed fields are immutable once the node is added, so
// the handle stays valid as the index grows.
type BlockNode struct {
	bi *BlockIndex
	id nodeID
}

// Ensure BlockNode implements the HeaderCtx interface.
var _ HeaderCtx = (*BlockNode)(nil)

// node returns a copy of the arena entry for the handle.
func (n *BlockNode) node() blockNode {
	n.bi.RLock()
	node := n.bi.nodes[n.id]
	n.bi.RUnlock()
	return node
}

// Hash returns the hash of the block.
func (n *BlockNode) Hash() chainhash.Hash {
	return n.node().hash
}

// Height returns the block height.
//
// This function is safe for concurrent access.
func (n *BlockNode) Height() int32 {
	return n.node().height
}

// Bits returns the compact target of the block.
//
// This function is safe for concurrent access.
func (n *BlockNode) Bits() uint32 {
	return n.node().bits
}

// Timestamp returns the block timestamp in seconds since the unix epoch.
//
// This function is safe for concurrent access.
func (n *BlockNode) Timestamp() int64 {
	return n.node().timestamp
}

// WorkSum returns a copy of the total work of the chain up to and including
// the block.
func (n *BlockNode) WorkSum() *big.Int {
	return new(big.Int).Set(n.node().workSum)
}

// Parent returns the parent block or nil for the genesis block.
//
// This function is safe for concurrent access.
func (n *BlockNode) Parent() HeaderCtx {
	parent := n.node().parent
	if parent == noNode {
		return nil
	}
	return &BlockNode{bi: n.bi, id: parent}
}

// Ancestor returns the ancestor block node at the provided height by following
// the chain backwards from this node.  The returned block will be nil when a
// height is requested that is after the height of the passed node or is less
// than zero.
//
// This function is safe for concurrent access.
func (n *BlockNode) Ancestor(height int32) *BlockNode {
	n.bi.RLock()
	defer n.bi.RUnlock()

	id := n.id
	if height < 0 || height > n.bi.nodes[id].height {
		return nil
	}
	for id != noNode && n.bi.nodes[id].height != height {
		id = n.bi.nodes[id].parent
	}
	if id == noNode {
		return nil
	}
	return &BlockNode{bi: n.bi, id: id}
}

// AncestorCtx returns the ancestor at the provided height as a HeaderCtx.
//
// This function is safe for concurrent access.
func (n *BlockNode) AncestorCtx(height int32) HeaderCtx {
	ancestor := n.Ancestor(height)
	if ancestor == nil {
		return nil
	}
	return ancestor
}

// RelativeAncestorCtx returns the ancestor block node a relative 'distance'
// blocks before this node.  This is equivalent to calling AncestorCtx with the
// node's height minus provided distance.
//
// This function is safe for concurrent access.
func (n *BlockNode) RelativeAncestorCtx(distance int32) HeaderCtx {
	return n.AncestorCtx(n.Height() - distance)
}
