// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/forkpow/forkpowd/chaincfg"
	"github.com/forkpow/forkpowd/database/headerdb"
	"github.com/forkpow/forkpowd/internal/log"
	"github.com/forkpow/forkpowd/internal/version"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDbType     = "leveldb"
	defaultLogLevel   = "info"
	defaultProgress   = 10
	defaultLogDirname = "logs"
	defaultLogFile    = "powcheck.log"
)

var (
	forkpowdHomeDir = btcutil.AppDataDir("forkpowd", false)
	defaultDataDir  = filepath.Join(forkpowdHomeDir, "data")
	knownDbTypes    = headerdb.SupportedDrivers()

	// errShowSubsystems is returned by loadConfig once the supported
	// logging subsystems have been listed.
	errShowSubsystems = errors.New("subsystems listed")

	// errShowVersion is returned by loadConfig once the version has been
	// printed.
	errShowVersion = errors.New("version shown")
)

// config defines the configuration options for powcheck.
//
// See loadConfig for details on the configuration load process.
type config struct {
	DataDir        string `short:"b" long:"datadir" description:"Location of the header data directory"`
	LogDir         string `long:"logdir" description:"Directory to log output (defaults to <datadir>/logs)"`
	DbType         string `long:"dbtype" description:"Database backend to use for the header store"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	InFile         string `short:"i" long:"infile" description:"File containing concatenated 80-byte block headers to import"`
	Progress       int    `short:"p" long:"progress" description:"Show a progress message each time this number of seconds have passed -- Use 0 to disable progress announcements"`
	RegressionTest bool   `long:"regtest" description:"Use the regression test network"`
	SimNet         bool   `long:"simnet" description:"Use the simulation test network"`
	TestNet        bool   `long:"testnet" description:"Use the test network"`
	Time           int64  `long:"time" description:"Unix time of the next block when reporting the required difficulty -- defaults to the current time"`
	CheckHash      string `long:"checkhash" description:"Block hash to test against --checkbits for valid proof of work"`
	CheckBits      string `long:"checkbits" description:"Compact target in hex used with --checkhash"`
	ShowVersion    bool   `short:"V" long:"version" description:"Display version information and exit"`

	params    *chaincfg.Params
	checkHash *chainhash.Hash
	checkBits uint32
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// loadConfig initializes and parses the config using the passed command line
// arguments.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		DataDir:    defaultDataDir,
		DbType:     defaultDbType,
		DebugLevel: defaultLogLevel,
		Progress:   defaultProgress,
		params:     &chaincfg.MainNetParams,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Printf("powcheck version %s\n", version.String())
		return nil, nil, errShowVersion
	}

	// Special show command to list supported subsystems.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", log.SupportedSubsystems())
		return nil, nil, errShowSubsystems
	}

	// Multiple networks can't be selected simultaneously.
	funcName := "loadConfig"
	numNets := 0
	// Count number of network flags passed; assign active network params
	// while we're at it
	if cfg.TestNet {
		numNets++
		cfg.params = &chaincfg.TestNetParams
	}
	if cfg.RegressionTest {
		numNets++
		cfg.params = &chaincfg.RegressionNetParams
	}
	if cfg.SimNet {
		numNets++
		cfg.params = &chaincfg.SimNetParams
	}
	if numNets > 1 {
		str := "%s: the testnet, regtest, and simnet params can't be " +
			"used together -- choose one of the three"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: the specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, funcName, cfg.DbType, knownDbTypes)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Parse, validate, and set debug log level(s).
	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// The proof of work check needs both the hash and the bits.
	if (cfg.CheckHash == "") != (cfg.CheckBits == "") {
		str := "%s: --checkhash and --checkbits must be used together"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if cfg.CheckHash != "" {
		cfg.checkHash, err = chainhash.NewHashFromStr(cfg.CheckHash)
		if err != nil {
			err := fmt.Errorf("%s: invalid --checkhash: %w", funcName, err)
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
		bits, err := strconv.ParseUint(cfg.CheckBits, 16, 32)
		if err != nil {
			err := fmt.Errorf("%s: invalid --checkbits: %w", funcName, err)
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
		cfg.checkBits = uint32(bits)
	}

	// Append the network type to the data directory so it is "namespaced"
	// per network.
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.params.Name)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, defaultLogDirname)
	}

	return &cfg, remainingArgs, nil
}
