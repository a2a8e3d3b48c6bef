// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/forkpow/forkpowd/chaincfg"
)

// fakeChain is a minimal HeaderCtx chain used to drive the difficulty
// calculations at arbitrary heights without hashing headers.  Only the
// heights from base up to the tip exist; the node at base has no parent.
type fakeChain struct {
	base    int32
	headers []*fakeHeader
}

type fakeHeader struct {
	chain     *fakeChain
	height    int32
	bits      uint32
	timestamp int64
}

// Ensure fakeHeader implements the HeaderCtx interface.
var _ HeaderCtx = (*fakeHeader)(nil)

func newFakeChain(base int32) *fakeChain {
	return &fakeChain{base: base}
}

// add appends a header with the given bits and timestamp and returns it.
func (c *fakeChain) add(bits uint32, timestamp int64) *fakeHeader {
	header := &fakeHeader{
		chain:     c,
		height:    c.base + int32(len(c.headers)),
		bits:      bits,
		timestamp: timestamp,
	}
	c.headers = append(c.headers, header)
	return header
}

// addSpaced appends n headers with the given bits, spaced the given number of
// seconds apart starting at start, and returns the last one.
func (c *fakeChain) addSpaced(n int, bits uint32, start, spacing int64) *fakeHeader {
	var last *fakeHeader
	for i := 0; i < n; i++ {
		last = c.add(bits, start+int64(i)*spacing)
	}
	return last
}

func (c *fakeChain) tip() *fakeHeader {
	return c.headers[len(c.headers)-1]
}

func (h *fakeHeader) Height() int32    { return h.height }
func (h *fakeHeader) Bits() uint32     { return h.bits }
func (h *fakeHeader) Timestamp() int64 { return h.timestamp }

func (h *fakeHeader) Parent() HeaderCtx {
	return h.AncestorCtx(h.height - 1)
}

func (h *fakeHeader) AncestorCtx(height int32) HeaderCtx {
	if height < h.chain.base || height > h.height {
		return nil
	}
	return h.chain.headers[height-h.chain.base]
}

func (h *fakeHeader) RelativeAncestorCtx(distance int32) HeaderCtx {
	return h.AncestorCtx(h.height - distance)
}

// forkParams returns a copy of the main network parameters with the provided
// fork heights.
func forkParams(forkOne, forkTwo int32) *chaincfg.Params {
	params := chaincfg.MainNetParams
	params.ForkOneHeight = forkOne
	params.ForkTwoHeight = forkTwo
	return &params
}

// bigToHash returns the hash whose HashToBig value is n.
func bigToHash(n *big.Int) *chainhash.Hash {
	var hash chainhash.Hash
	b := n.Bytes()
	for i := range b {
		hash[i] = b[len(b)-1-i]
	}
	return &hash
}

// hexToBig converts the passed hex string into a big integer and will panic
// if there is an error.  This is only provided for the hard-coded constants
// so errors in the source code can be detected.
func hexToBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return n
}

// solveHeader increments the nonce until the header hash satisfies the bits
// it claims.
func solveHeader(t *testing.T, header *wire.BlockHeader, params *chaincfg.Params) {
	t.Helper()
	for i := 0; i < 1<<20; i++ {
		hash := header.BlockHash()
		if IsValidProofOfWork(&hash, header.Bits, params) {
			return
		}
		header.Nonce++
	}
	t.Fatalf("unable to solve header with bits %08x", header.Bits)
}

// failHeader increments the nonce until the header hash does not satisfy
// the bits it claims.
func failHeader(t *testing.T, header *wire.BlockHeader, params *chaincfg.Params) {
	t.Helper()
	for i := 0; i < 1<<20; i++ {
		hash := header.BlockHash()
		if !IsValidProofOfWork(&hash, header.Bits, params) {
			return
		}
		header.Nonce++
	}
	t.Fatalf("unable to find a failing nonce for bits %08x", header.Bits)
}

// nextHeader returns a solved header which extends the chain tip by spacing
// and uses the bits the chain requires.
func nextHeader(t *testing.T, chain *HeaderChain, spacing time.Duration) *wire.BlockHeader {
	t.Helper()
	var (
		prev      chainhash.Hash
		timestamp = time.Unix(1700000000, 0)
	)
	if tip := chain.Tip(); tip != nil {
		prev = tip.Hash()
		timestamp = time.Unix(tip.Timestamp(), 0).Add(spacing)
	}
	bits, err := chain.CalcNextRequiredDifficulty(timestamp)
	if err != nil {
		t.Fatalf("CalcNextRequiredDifficulty: %v", err)
	}
	header := &wire.BlockHeader{
		Version:   4,
		PrevBlock: prev,
		Timestamp: timestamp,
		Bits:      bits,
	}
	solveHeader(t, header, chain.ChainParams())
	return header
}

// fakeHeaders converts the fake chain into linked wire headers so it can be
// loaded into a BlockIndex.
func fakeHeaders(chain *fakeChain) []*wire.BlockHeader {
	headers := make([]*wire.BlockHeader, 0, len(chain.headers))
	var prev chainhash.Hash
	for _, h := range chain.headers {
		header := &wire.BlockHeader{
			Version:   1,
			PrevBlock: prev,
			Timestamp: time.Unix(h.timestamp, 0),
			Bits:      h.bits,
		}
		headers = append(headers, header)
		prev = header.BlockHash()
	}
	return headers
}

// ptrHash returns a pointer to the hash of the header.
func ptrHash(header *wire.BlockHeader) *chainhash.Hash {
	hash := header.BlockHash()
	return &hash
}
