// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/forkpow/forkpowd/blockchain/internal/workmath"
	"github.com/forkpow/forkpowd/chaincfg"
)

const (
	// secondsPerWeek is the number of seconds in one week.
	secondsPerWeek = 7 * 24 * 60 * 60

	// forkOneTargetTimespan is the retarget timespan in seconds, 7/8 of a
	// day, once ForkOneHeight is reached.
	forkOneTargetTimespan = secondsPerWeek / 8

	// forkTwoTargetTimespan is the retarget timespan in seconds, 7/32 of a
	// day, once ForkTwoHeight is reached.
	forkTwoTargetTimespan = secondsPerWeek / 32

	// retargetAdjustmentFactor limits a retarget before the first fork to
	// a factor of four in either direction.
	retargetAdjustmentFactor = 4

	// forkOneLimiterNum and forkOneLimiterDen limit a retarget between the
	// two forks to a factor of 99/70 (about 41%) in either direction.
	forkOneLimiterNum = 99
	forkOneLimiterDen = 70

	// forkTwoLimiterNum and forkTwoLimiterDen limit a retarget from the
	// second fork on to a factor of 494/453 (about 9%) in either direction.
	forkTwoLimiterNum = 494
	forkTwoLimiterDen = 453

	// longWindowFactor is the number of short retarget intervals covered by
	// the long averaging window after the second fork.
	longWindowFactor = 4

	// dampingFactor weights the averaged timespan against the target
	// timespan, so only one quarter of the observed deviation is applied.
	dampingFactor = 4
)

// HashToBig converts a chainhash.Hash into a big.Int that can be used to
// perform math comparisons.
func HashToBig(hash *chainhash.Hash) *big.Int {
	return workmath.HashToBig(hash)
}

// CompactToBig converts a compact representation of a whole number N to an
// unsigned 32-bit number.  The representation is similar to IEEE754 floating
// point numbers.  See workmath.CompactToBig for the full description.
func CompactToBig(compact uint32) *big.Int {
	return workmath.CompactToBig(compact)
}

// CompactToMagnitude decodes a compact value into its unsigned magnitude and
// reports whether the sign bit was set on a non-zero mantissa or the value
// does not fit in 256 bits.
func CompactToMagnitude(compact uint32) (n *big.Int, negative, overflow bool) {
	return workmath.CompactToMagnitude(compact)
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number.  The compact representation only provides 23 bits
// of precision, so values larger than (2^23 - 1) only encode the most
// significant digits of the number, truncated toward zero.
func BigToCompact(n *big.Int) uint32 {
	return workmath.BigToCompact(n)
}

// CalcWork calculates a work value from difficulty bits.  See
// workmath.CalcWork for details.
func CalcWork(bits uint32) *big.Int {
	return workmath.CalcWork(bits)
}

// retargetTimespan returns the target timespan in seconds which applies to a
// block at the provided height.  Each fork shortens it.
func retargetTimespan(height int32, params *chaincfg.Params) int64 {
	targetTimespan := params.BaseTargetTimespan()
	if height >= params.ForkOneHeight {
		targetTimespan = forkOneTargetTimespan
	}
	if height >= params.ForkTwoHeight {
		targetTimespan = forkTwoTargetTimespan
	}
	return targetTimespan
}

// retargetTimespanLimits returns the minimum and maximum timespan a retarget
// at the provided height may use.
func retargetTimespanLimits(height int32, targetTimespan int64,
	params *chaincfg.Params) (int64, int64) {

	switch {
	case height >= params.ForkTwoHeight:
		return targetTimespan * forkTwoLimiterDen / forkTwoLimiterNum,
			targetTimespan * forkTwoLimiterNum / forkTwoLimiterDen

	case height >= params.ForkOneHeight:
		return targetTimespan * forkOneLimiterDen / forkOneLimiterNum,
			targetTimespan * forkOneLimiterNum / forkOneLimiterDen
	}

	return targetTimespan / retargetAdjustmentFactor,
		targetTimespan * retargetAdjustmentFactor
}

// findPrevTestNetDifficulty returns the difficulty of the previous block which
// did not have the special testnet minimum difficulty rule applied.  The search
// stops at the genesis block or at the first block on a retarget boundary.
func findPrevTestNetDifficulty(startNode HeaderCtx, interval int64,
	params *chaincfg.Params) uint32 {

	// Search backwards through the chain for the last block without
	// the special rule applied.
	iterNode := startNode
	for {
		parent := iterNode.Parent()
		if parent == nil || int64(iterNode.Height())%interval == 0 ||
			iterNode.Bits() != params.PowLimitBits {

			break
		}
		iterNode = parent
	}

	return iterNode.Bits()
}

// longWindowStart returns the block the provided number of blocks before
// lastNode, or the genesis block when the chain is shorter than that.
func longWindowStart(lastNode HeaderCtx, blocks int64) HeaderCtx {
	iterNode := lastNode
	for i := int64(0); i < blocks; i++ {
		parent := iterNode.Parent()
		if parent == nil {
			break
		}
		iterNode = parent
	}
	return iterNode
}

// dampedTimespan blends the short window timespan with a window covering
// longWindowFactor short intervals and then damps the result toward the
// target timespan.  The long window, its average and the damped sum are
// 32-bit quantities in the consensus rules, so they are narrowed the same way.
func dampedTimespan(lastNode HeaderCtx, actualTimespan, interval,
	targetTimespan int64) int64 {

	longFirst := longWindowStart(lastNode, interval*longWindowFactor)
	longTimespan := int32((lastNode.Timestamp() - longFirst.Timestamp()) /
		longWindowFactor)

	avgTimespan := int32((actualTimespan + int64(longTimespan)) / 2)
	damped := avgTimespan + (dampingFactor-1)*int32(targetTimespan)
	return int64(damped) / dampingFactor
}

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after the passed previous HeaderCtx based on the difficulty retarget rules.
//
// The retarget interval and timespan depend on the height of the new block:
// ForkOneHeight and ForkTwoHeight each shorten the timespan and tighten the
// adjustment limiter, and both fork heights force a retarget.  From
// ForkTwoHeight on, the measured timespan is averaged with a window four
// intervals long and damped toward the target timespan.
//
// An AssertError is returned when lastNode is nil or the chain does not
// contain the block at the start of the retarget window.
//
// This function is safe for concurrent access.
func CalcNextRequiredDifficulty(lastNode HeaderCtx, newBlockTime time.Time,
	params *chaincfg.Params) (uint32, error) {

	if lastNode == nil {
		return 0, AssertError("difficulty requested without a " +
			"previous block")
	}

	height := lastNode.Height() + 1
	targetTimespan := retargetTimespan(height, params)
	targetSpacing := params.TargetSpacing()
	interval := targetTimespan / targetSpacing
	if interval <= 0 {
		str := fmt.Sprintf("target spacing %ds leaves no blocks in the "+
			"%ds retarget timespan", targetSpacing, targetTimespan)
		return 0, AssertError(str)
	}
	forkBoundary := height == params.ForkOneHeight ||
		height == params.ForkTwoHeight

	// Return the previous block's difficulty requirements if this block
	// is not at a difficulty retarget interval.
	if int64(height)%interval != 0 && !forkBoundary {
		// For networks that support it, allow special reduction of the
		// required difficulty once too much time has elapsed without
		// mining a block.
		if params.ReduceMinDifficulty {
			// Return minimum difficulty when more than the desired
			// amount of time has elapsed without mining a block.
			allowMinTime := lastNode.Timestamp() + targetSpacing*2
			if newBlockTime.Unix() > allowMinTime {
				return params.PowLimitBits, nil
			}

			// The block was mined within the desired timeframe, so
			// return the difficulty for the last block which did
			// not have the special minimum difficulty rule applied.
			return findPrevTestNetDifficulty(lastNode, interval,
				params), nil
		}

		// For the main network (or any unrecognized networks), simply
		// return the previous block's difficulty requirements.
		return lastNode.Bits(), nil
	}

	// Get the block node at the previous retarget (targetTimespan worth
	// of blocks).
	firstHeight := int64(lastNode.Height()) - (interval - 1)
	if firstHeight < 0 {
		str := fmt.Sprintf("retarget window for height %d starts at "+
			"negative height %d", height, firstHeight)
		return 0, AssertError(str)
	}
	firstNode := lastNode.AncestorCtx(int32(firstHeight))
	if firstNode == nil {
		return 0, AssertError("unable to obtain previous retarget block")
	}

	if params.PoWNoRetargeting {
		return lastNode.Bits(), nil
	}

	actualTimespan := lastNode.Timestamp() - firstNode.Timestamp()
	if height >= params.ForkTwoHeight {
		actualTimespan = dampedTimespan(lastNode, actualTimespan,
			interval, targetTimespan)
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	minTimespan, maxTimespan := retargetTimespanLimits(height,
		targetTimespan, params)
	adjustedTimespan := actualTimespan
	if adjustedTimespan < minTimespan {
		adjustedTimespan = minTimespan
	}
	if adjustedTimespan > maxTimespan {
		adjustedTimespan = maxTimespan
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// The result uses integer division which means it will be slightly
	// rounded down.  A target within one bit of the pow limit loses its
	// lowest bit so the intermediate product keeps the same headroom as a
	// 256-bit implementation.
	oldTarget, _, _ := CompactToMagnitude(lastNode.Bits())
	newTarget := new(big.Int).Set(oldTarget)
	shift := newTarget.BitLen() > params.PowLimit.BitLen()-1
	if shift {
		newTarget.Rsh(newTarget, 1)
	}
	newTarget.Mul(newTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))
	if shift {
		newTarget.Lsh(newTarget, 1)
	}

	// Limit new value to the proof of work limit.
	if newTarget.Cmp(params.PowLimit) > 0 {
		newTarget.Set(params.PowLimit)
	}

	// Log new target difficulty and return it.  The new target logging is
	// intentionally converting the bits back to a number instead of using
	// newTarget since conversion to the compact representation loses
	// precision.
	newTargetBits := BigToCompact(newTarget)
	log.Debugf("Difficulty retarget at block height %d", height)
	log.Debugf("Old target %08x (%064x)", lastNode.Bits(), oldTarget)
	log.Debugf("New target %08x (%v)", newTargetBits,
		newLogClosure(func() string {
			return fmt.Sprintf("%064x", CompactToBig(newTargetBits))
		}))
	log.Debugf("Actual timespan %v, adjusted timespan %v, target timespan %v",
		time.Duration(actualTimespan)*time.Second,
		time.Duration(adjustedTimespan)*time.Second,
		time.Duration(targetTimespan)*time.Second)

	return newTargetBits, nil
}
