// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/forkpow/forkpowd/chaincfg"
)

// checkProofOfWork ensures the passed bits which indicate the target
// difficulty decode to a target in the range (0, powLimit] and that the hash
// is not higher than that target.
func checkProofOfWork(hash *chainhash.Hash, bits uint32, powLimit *big.Int) error {
	target, negative, overflow := CompactToMagnitude(bits)
	switch {
	case negative:
		str := fmt.Sprintf("block target difficulty bits %08x are "+
			"negative", bits)
		return ruleError(ErrUnexpectedDifficulty, str)

	case overflow:
		str := fmt.Sprintf("block target difficulty bits %08x overflow "+
			"256 bits", bits)
		return ruleError(ErrUnexpectedDifficulty, str)

	// The target difficulty must be larger than zero.
	case target.Sign() == 0:
		str := fmt.Sprintf("block target difficulty of %064x is too low",
			target)
		return ruleError(ErrUnexpectedDifficulty, str)

	// The target difficulty must be less than the maximum allowed.
	case target.Cmp(powLimit) > 0:
		str := fmt.Sprintf("block target difficulty of %064x is "+
			"higher than max of %064x", target, powLimit)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	// The block hash must not be higher than the claimed target.
	hashNum := HashToBig(hash)
	if hashNum.Cmp(target) > 0 {
		str := fmt.Sprintf("block hash of %064x is higher than "+
			"expected max of %064x", hashNum, target)
		return ruleError(ErrHighHash, str)
	}

	return nil
}

// CheckProofOfWork ensures the block header bits which indicate the target
// difficulty is in min/max range and that the block hash is not higher than
// the target difficulty as claimed.  Failures are reported as a RuleError.
func CheckProofOfWork(header *wire.BlockHeader, params *chaincfg.Params) error {
	hash := header.BlockHash()
	return checkProofOfWork(&hash, header.Bits, params.PowLimit)
}

// IsValidProofOfWork returns whether the hash satisfies the target encoded by
// bits for the passed network.  Bits that are negative, zero, overflow 256
// bits or exceed the network pow limit are never valid.  Untrusted input only
// ever produces false.
//
// This function is safe for concurrent access.
func IsValidProofOfWork(hash *chainhash.Hash, bits uint32,
	params *chaincfg.Params) bool {

	return checkProofOfWork(hash, bits, params.PowLimit) == nil
}
