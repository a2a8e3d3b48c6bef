// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements the proof of work consensus rules of a chain
whose difficulty retarget algorithm changes at two fork heights.

The package exposes two groups of functionality.  The first is stateless:
CalcNextRequiredDifficulty computes the compact target the block after a given
header must carry, and IsValidProofOfWork and CheckProofOfWork decide whether a
hash satisfies a compact target.  Both work against the HeaderCtx interface so
callers may supply their own view of the chain.

The second is HeaderChain, which connects headers one at a time on top of a
BlockIndex, enforcing the retarget rules and proof of work for every header and
optionally handing accepted headers to a HeaderStore.

Retarget Rules

Before ForkOneHeight the rules match the original two week retarget with a
factor of four limiter.  ForkOneHeight shortens the timespan to 7/8 of a day
and limits each adjustment to 99/70.  ForkTwoHeight shortens the timespan to
7/32 of a day, limits each adjustment to 494/453 and averages the measured
timespan with a window four intervals long before damping it toward the
target.  Both fork heights force a retarget.

Errors

Errors returned by this package are either the raw errors provided by
underlying calls or of type blockchain.RuleError.  This allows the caller to
differentiate between unexpected errors, such as store failures, and consensus
rule violations through type assertions.  In addition, callers can
programmatically determine the specific rule violation by examining the
ErrorCode field of the type asserted blockchain.RuleError.
*/
package blockchain
