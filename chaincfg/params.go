// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// These variables are the chain proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int.  It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a block can have for
	// the main network.  It is the value 2^224 - 1.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// regressionPowLimit is the highest proof of work value a block can
	// have for the regression test network.  It is the value 2^255 - 1.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// testNetPowLimit is the highest proof of work value a block can have
	// for the test network.  It is the value 2^224 - 1.
	testNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// simNetPowLimit is the highest proof of work value a block can have
	// for the simulation test network.  It is the value 2^255 - 1.
	simNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

// ForkDisabled is used as a fork height for networks which never activate the
// corresponding retarget rule change.
const ForkDisabled int32 = math.MaxInt32

// Params defines a network by its parameters.  These parameters may be used by
// applications to differentiate networks as well as to compute and check the
// proof of work consensus rules for one network as opposed to another.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.BitcoinNet

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.  The fork heights below replace it with shorter
	// consensus-defined timespans.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// ReduceMinDifficulty defines whether the network should reduce the
	// minimum required difficulty after twice the target time per block has
	// passed without finding a block.  This is really only useful for test
	// networks and should not be set on a main network.
	ReduceMinDifficulty bool

	// PoWNoRetargeting defines whether the network has difficulty
	// retargeting disabled.
	PoWNoRetargeting bool

	// ForkOneHeight is the height at which the retarget timespan shortens to
	// 7/8 of a day and the adjustment limiter tightens to 99/70.
	ForkOneHeight int32

	// ForkTwoHeight is the height at which the retarget timespan shortens
	// to 7/32 of a day, the dual-window average with damping activates and
	// the adjustment limiter tightens to 494/453.
	ForkTwoHeight int32
}

// TargetSpacing returns the desired number of seconds between blocks.
func (p *Params) TargetSpacing() int64 {
	return int64(p.TargetTimePerBlock / time.Second)
}

// BaseTargetTimespan returns the configured retarget timespan in seconds,
// before any fork overrides are applied.
func (p *Params) BaseTargetTimespan() int64 {
	return int64(p.TargetTimespan / time.Second)
}

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being a standard network
	// or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where the parameters for a network
	// were requested by a name that is not registered.
	ErrUnknownNet = errors.New("unknown network")

	// ErrInvalidParams describes an error where the parameters for a
	// network are internally inconsistent and can not be registered.
	ErrInvalidParams = errors.New("invalid network parameters")
)

var (
	registeredNets = make(map[wire.BitcoinNet]struct{})
	netsByName     = make(map[string]*Params)
)

// validate ensures the retarget related parameters can be used by the
// difficulty calculations without dividing by zero or producing an empty
// retarget interval.
func (p *Params) validate() error {
	switch {
	case p.PowLimit == nil || p.PowLimit.Sign() <= 0:
		return fmt.Errorf("%w: %s: pow limit must be positive",
			ErrInvalidParams, p.Name)
	case p.TargetTimePerBlock < time.Second:
		return fmt.Errorf("%w: %s: target time per block must be at "+
			"least one second", ErrInvalidParams, p.Name)
	case p.TargetTimespan < p.TargetTimePerBlock:
		return fmt.Errorf("%w: %s: target timespan %v is shorter than "+
			"the block spacing %v", ErrInvalidParams, p.Name,
			p.TargetTimespan, p.TargetTimePerBlock)
	case p.ForkOneHeight < 0 || p.ForkTwoHeight < p.ForkOneHeight:
		return fmt.Errorf("%w: %s: fork heights %d and %d are out of "+
			"order", ErrInvalidParams, p.Name, p.ForkOneHeight,
			p.ForkTwoHeight)
	}
	return nil
}

// Register registers the network parameters for a network.  This may error
// with ErrDuplicateNet if the network is already registered (either due to a
// previous Register call, or the network being one of the default networks).
//
// Network parameters should be registered into this package by a main package
// as early as possible.  Then, library packages may lookup networks or network
// parameters based on inputs and work regardless of the network being standard
// or not.
func Register(params *Params) error {
	if err := params.validate(); err != nil {
		return err
	}
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	if _, ok := netsByName[params.Name]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}
	netsByName[params.Name] = params
	return nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error.  This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// IsRegistered returns whether the passed network magic is a default or
// registered network.
func IsRegistered(net wire.BitcoinNet) bool {
	_, ok := registeredNets[net]
	return ok
}

// ParamsForName returns the registered parameters for the network with the
// given name.
func ParamsForName(name string) (*Params, error) {
	params, ok := netsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNet, name)
	}
	return params, nil
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
	mustRegister(&SimNetParams)
}
