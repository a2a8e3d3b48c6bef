// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/lru"
	"github.com/forkpow/forkpowd/chaincfg"
)

// defaultRejectCacheSize is the default number of rejected header hashes
// remembered by a HeaderChain.
const defaultRejectCacheSize = 1000

// Config is a descriptor which specifies the header chain instance
// configuration.
type Config struct {
	// ChainParams identifies which chain parameters the chain is associated
	// with.
	//
	// This field is required.
	ChainParams *chaincfg.Params

	// Store, when set, receives every header once it is connected.
	//
	// This field can be nil if the caller does not need headers persisted.
	Store HeaderStore

	// RejectCacheSize is the number of rejected header hashes to remember
	// so that repeated submissions fail fast.  Zero selects the default.
	RejectCacheSize uint
}

// HeaderChain connects block headers one at a time, requiring each header to
// extend the current tip, carry exactly the bits the retarget rules demand
// and satisfy its own proof of work.
type HeaderChain struct {
	chainParams *chaincfg.Params
	store       HeaderStore
	index       *BlockIndex

	// rejected holds hashes of headers which violated a consensus rule.
	rejected lru.Cache

	// chainLock protects tip and serializes header processing.
	chainLock sync.RWMutex
	tip       *BlockNode
}

// New returns a HeaderChain instance using the provided configuration details.
// The chain is empty; the first processed header becomes its genesis block.
func New(config *Config) (*HeaderChain, error) {
	if config.ChainParams == nil {
		return nil, AssertError("blockchain.New chain parameters nil")
	}

	cacheSize := config.RejectCacheSize
	if cacheSize == 0 {
		cacheSize = defaultRejectCacheSize
	}

	return &HeaderChain{
		chainParams: config.ChainParams,
		store:       config.Store,
		index:       NewBlockIndex(),
		rejected:    lru.NewCache(cacheSize),
	}, nil
}

// ChainParams returns the network parameters of the chain.
func (c *HeaderChain) ChainParams() *chaincfg.Params {
	return c.chainParams
}

// SetStore replaces the store which receives headers connected from now on.
// A nil store stops persisting headers.
//
// This function is safe for concurrent access.
func (c *HeaderChain) SetStore(store HeaderStore) {
	c.chainLock.Lock()
	c.store = store
	c.chainLock.Unlock()
}

// Index returns the block index backing the chain.
func (c *HeaderChain) Index() *BlockIndex {
	return c.index
}

// Tip returns the most recently connected header or nil when the chain is
// empty.
//
// This function is safe for concurrent access.
func (c *HeaderChain) Tip() *BlockNode {
	c.chainLock.RLock()
	tip := c.tip
	c.chainLock.RUnlock()
	return tip
}

// ChainWork returns the total work of the chain up to and including the tip.
//
// This function is safe for concurrent access.
func (c *HeaderChain) ChainWork() *big.Int {
	tip := c.Tip()
	if tip == nil {
		return new(big.Int)
	}
	return tip.WorkSum()
}

// IsKnownInvalid returns whether the header identified by hash was rejected
// recently for violating a consensus rule.
//
// This function is safe for concurrent access.
func (c *HeaderChain) IsKnownInvalid(hash *chainhash.Hash) bool {
	return c.rejected.Contains(*hash)
}

// CalcNextRequiredDifficulty calculates the required difficulty for the header
// after the current tip based on the difficulty retarget rules.  The pow
// limit is required for the genesis header.
//
// This function is safe for concurrent access.
func (c *HeaderChain) CalcNextRequiredDifficulty(timestamp time.Time) (uint32, error) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	if c.tip == nil {
		return c.chainParams.PowLimitBits, nil
	}
	return CalcNextRequiredDifficulty(c.tip, timestamp, c.chainParams)
}

// checkHeaderContext ensures the header extends tip and carries the bits
// required by the retarget rules.
//
// This function MUST be called with the chain lock held.
func (c *HeaderChain) checkHeaderContext(header *wire.BlockHeader) error {
	if c.tip == nil {
		return nil
	}

	tipHash := c.tip.Hash()
	if header.PrevBlock != tipHash {
		if !c.index.HaveBlock(&header.PrevBlock) {
			str := fmt.Sprintf("previous block %v is unknown",
				header.PrevBlock)
			return ruleError(ErrPreviousBlockUnknown, str)
		}
		str := fmt.Sprintf("previous block %v is not the chain tip %v",
			header.PrevBlock, tipHash)
		return ruleError(ErrPrevBlockNotBest, str)
	}

	expectedBits, err := CalcNextRequiredDifficulty(c.tip,
		header.Timestamp, c.chainParams)
	if err != nil {
		return err
	}
	if header.Bits != expectedBits {
		str := fmt.Sprintf("block difficulty of %08x is not the "+
			"expected value of %08x", header.Bits, expectedBits)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	return nil
}

// ProcessHeader validates the passed header against the current tip and, when
// it is acceptable, connects it and hands it to the configured store.
//
// Headers which violate a consensus rule are remembered and rejected with
// ErrKnownInvalidBlock on later submissions.  Headers which merely do not
// connect to the tip are not remembered.
//
// This function is safe for concurrent access.
func (c *HeaderChain) ProcessHeader(header *wire.BlockHeader) (*BlockNode, error) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	hash := header.BlockHash()
	if c.rejected.Contains(hash) {
		str := fmt.Sprintf("block %v was previously rejected", hash)
		return nil, ruleError(ErrKnownInvalidBlock, str)
	}
	if c.index.HaveBlock(&hash) {
		str := fmt.Sprintf("already have block %v", hash)
		return nil, ruleError(ErrDuplicateBlock, str)
	}

	err := c.checkHeaderContext(header)
	if err == nil {
		err = CheckProofOfWork(header, c.chainParams)
	}
	if err != nil {
		var rErr RuleError
		if errors.As(err, &rErr) && (rErr.ErrorCode == ErrUnexpectedDifficulty ||
			rErr.ErrorCode == ErrHighHash) {

			log.Debugf("Rejected header %v: %v", hash, err)
			c.rejected.Add(hash)
		}
		return nil, err
	}

	var height int32
	if c.tip != nil {
		height = c.tip.Height() + 1
	}
	if c.store != nil {
		if err := c.store.PutHeader(height, header); err != nil {
			return nil, fmt.Errorf("unable to store header %v: %w",
				hash, err)
		}
	}

	node, err := c.index.AddNode(header)
	if err != nil {
		return nil, err
	}
	c.tip = node

	log.Tracef("Connected header %v (height %d, bits %08x)", hash, height,
		header.Bits)
	return node, nil
}
