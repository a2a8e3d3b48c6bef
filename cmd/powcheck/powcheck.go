// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/forkpow/forkpowd/blockchain"
	"github.com/forkpow/forkpowd/database/headerdb"
	"github.com/forkpow/forkpowd/internal/log"
	"github.com/forkpow/forkpowd/internal/version"
)

const (
	// headerDbNamePrefix is the prefix for the header database.
	headerDbNamePrefix = "headers"
)

// pchkLog is the logger for the utility itself.
var pchkLog = log.PchkLog

// loadHeaderDB opens the header database, creating it when it does not exist
// yet.
func loadHeaderDB(cfg *config) (*headerdb.DB, error) {
	// The database name is based on the database type.
	dbName := headerDbNamePrefix + "_" + cfg.DbType
	dbPath := filepath.Join(cfg.DataDir, dbName)

	pchkLog.Infof("Loading header database from '%s'", dbPath)
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, err
	}
	db, err := headerdb.Open(cfg.DbType, dbPath, true)
	if err != nil {
		return nil, err
	}

	pchkLog.Info("Header database loaded")
	return db, nil
}

// replayHeaders feeds every stored header through the chain so the index is
// rebuilt and each header is validated again.
func replayHeaders(db *headerdb.DB, chain *blockchain.HeaderChain) error {
	return db.ForEachHeader(func(height int32, header *wire.BlockHeader) error {
		if _, err := chain.ProcessHeader(header); err != nil {
			return fmt.Errorf("stored header %v at height %d is "+
				"invalid: %w", header.BlockHash(), height, err)
		}
		return nil
	})
}

// report writes the chain summary and, when requested, the result of the
// proof of work check.
func report(w io.Writer, cfg *config, chain *blockchain.HeaderChain) error {
	if cfg.checkHash != nil {
		valid := blockchain.IsValidProofOfWork(cfg.checkHash,
			cfg.checkBits, cfg.params)
		fmt.Fprintf(w, "Proof of work for %v with bits %08x valid: %v\n",
			cfg.checkHash, cfg.checkBits, valid)
	}

	tip := chain.Tip()
	if tip == nil {
		fmt.Fprintf(w, "Header chain is empty, next bits %08x\n",
			cfg.params.PowLimitBits)
		return nil
	}

	nextTime := time.Now()
	if cfg.Time != 0 {
		nextTime = time.Unix(cfg.Time, 0)
	}
	nextBits, err := chain.CalcNextRequiredDifficulty(nextTime)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Tip %v at height %d (bits %08x)\n", tip.Hash(),
		tip.Height(), tip.Bits())
	fmt.Fprintf(w, "Chain work %064x\n", chain.ChainWork())
	fmt.Fprintf(w, "Next bits at %v: %08x\n", nextTime.UTC(), nextBits)
	return nil
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, errShowSubsystems) || errors.Is(err, errShowVersion) {
			return nil
		}
		return err
	}

	// Setup logging.
	if err := log.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFile)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer log.LogRotator.Close()

	pchkLog.Infof("Version %s", version.String())

	// Load the header database.
	db, err := loadHeaderDB(cfg)
	if err != nil {
		pchkLog.Errorf("Failed to load database: %v", err)
		return err
	}
	defer db.Close()

	// Replay the stored headers into a fresh chain before connecting it to
	// the store, so replayed headers are not written a second time.
	chain, err := blockchain.New(&blockchain.Config{
		ChainParams: cfg.params,
	})
	if err != nil {
		pchkLog.Errorf("Failed to initialize chain: %v", err)
		return err
	}
	if err := replayHeaders(db, chain); err != nil {
		pchkLog.Errorf("Failed to load stored headers: %v", err)
		return err
	}
	if tip := chain.Tip(); tip != nil {
		pchkLog.Infof("Loaded %d stored headers", tip.Height()+1)
	}
	chain.SetStore(db)

	if cfg.InFile != "" {
		fi, err := os.Open(cfg.InFile)
		if err != nil {
			pchkLog.Errorf("Failed to open file %v: %v", cfg.InFile, err)
			return err
		}
		defer fi.Close()

		// Perform the import asynchronously.  This allows headers to be
		// processed and read in parallel.
		pchkLog.Info("Starting import")
		importer := newHeaderImporter(chain, fi,
			time.Duration(cfg.Progress)*time.Second)
		results := <-importer.Import()
		if results.err != nil {
			pchkLog.Errorf("%v", results.err)
			return results.err
		}

		pchkLog.Infof("Processed a total of %d headers (%d imported, %d "+
			"already known)", results.headersProcessed,
			results.headersImported,
			results.headersProcessed-results.headersImported)
	}

	return report(os.Stdout, cfg, chain)
}

func main() {
	// Work around defer not working after os.Exit()
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
