// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// TestNet represents the public test network.
const TestNet wire.BitcoinNet = 0xf1c8d2fd

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name: "testnet",
	Net:  TestNet,

	// Chain parameters
	PowLimit:            testNetPowLimit,
	PowLimitBits:        0x1d00ffff,
	TargetTimespan:      time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:  time.Minute * 10,    // 10 minutes
	ReduceMinDifficulty: true,
	PoWNoRetargeting:    false,
	ForkOneHeight:       4032,
	ForkTwoHeight:       8064,
}
