// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// RegressionNet represents the regression test network.
const RegressionNet wire.BitcoinNet = 0xdab5bffa

// RegressionNetParams defines the network parameters for the regression test
// network.  Difficulty never changes and the retarget forks never activate.
var RegressionNetParams = Params{
	Name: "regtest",
	Net:  RegressionNet,

	// Chain parameters
	PowLimit:            regressionPowLimit,
	PowLimitBits:        0x207fffff,
	TargetTimespan:      time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:  time.Minute * 10,    // 10 minutes
	ReduceMinDifficulty: true,
	PoWNoRetargeting:    true,
	ForkOneHeight:       ForkDisabled,
	ForkTwoHeight:       ForkDisabled,
}
