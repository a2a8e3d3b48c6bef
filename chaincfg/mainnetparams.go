// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// MainNet represents the main network.
const MainNet wire.BitcoinNet = 0xfbc0b6db

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name: "mainnet",
	Net:  MainNet,

	// Chain parameters
	PowLimit:            mainPowLimit,
	PowLimitBits:        0x1d00ffff,
	TargetTimespan:      time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:  time.Minute * 10,    // 10 minutes
	ReduceMinDifficulty: false,
	PoWNoRetargeting:    false,
	ForkOneHeight:       400000,
	ForkTwoHeight:       560000,
}
