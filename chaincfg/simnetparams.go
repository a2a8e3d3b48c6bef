// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// SimNet represents the simulation test network.
const SimNet wire.BitcoinNet = 0x12141c16

// SimNetParams defines the network parameters for the simulation test network.
// This network is similar to the normal test network except it is intended for
// private use within a group of individuals doing simulation testing.  Both
// retarget forks activate early so the full rule set is reachable quickly.
var SimNetParams = Params{
	Name: "simnet",
	Net:  SimNet,

	// Chain parameters
	PowLimit:            simNetPowLimit,
	PowLimitBits:        0x207fffff,
	TargetTimespan:      time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:  time.Minute * 10,    // 10 minutes
	ReduceMinDifficulty: true,
	PoWNoRetargeting:    false,
	ForkOneHeight:       500,
	ForkTwoHeight:       1000,
}
