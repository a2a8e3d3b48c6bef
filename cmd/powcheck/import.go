// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/forkpow/forkpowd/blockchain"
	"github.com/forkpow/forkpowd/internal/log"
)

// importResults houses the stats and result as an import operation.
type importResults struct {
	headersProcessed int64
	headersImported  int64
	err              error
}

// headerImporter houses information about an ongoing import from a header
// file into a header chain.
type headerImporter struct {
	chain              *blockchain.HeaderChain
	r                  io.Reader
	progress           time.Duration
	processQueue       chan *wire.BlockHeader
	doneChan           chan bool
	errChan            chan error
	quit               chan struct{}
	wg                 sync.WaitGroup
	headersProcessed   int64
	headersImported    int64
	receivedLogHeaders int64
	lastHeight         int32
	lastHeaderTime     time.Time
	lastLogTime        time.Time
}

// readHeader reads the next header from the input.  The file format is a
// plain concatenation of 80-byte serialized headers.  A nil header with no
// error means the input is exhausted.
func (hi *headerImporter) readHeader() (*wire.BlockHeader, error) {
	var buf [wire.MaxBlockHeaderPayload]byte
	_, err := io.ReadFull(hi.r, buf[:])
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var header wire.BlockHeader
	if err := header.Deserialize(bytes.NewReader(buf[:])); err != nil {
		return nil, err
	}
	return &header, nil
}

// processHeader connects the header to the chain.  Headers which are already
// part of the chain are skipped.  Returns whether the header was imported.
func (hi *headerImporter) processHeader(header *wire.BlockHeader) (bool, error) {
	hi.lastHeaderTime = header.Timestamp

	node, err := hi.chain.ProcessHeader(header)
	if err != nil {
		var rErr blockchain.RuleError
		if errors.As(err, &rErr) && rErr.ErrorCode == blockchain.ErrDuplicateBlock {
			return false, nil
		}
		return false, fmt.Errorf("import file contains header %v which "+
			"was rejected: %w", header.BlockHash(), err)
	}
	hi.lastHeight = node.Height()
	return true, nil
}

// readHandler is the main handler for reading headers from the import file.
// This allows header processing to take place in parallel with reads.
// It must be run as a goroutine.
func (hi *headerImporter) readHandler() {
out:
	for {
		// Read the next header from the file and if anything goes wrong
		// notify the status handler with the error and bail.
		header, err := hi.readHeader()
		if err != nil {
			hi.errChan <- fmt.Errorf("error reading from input file: %w",
				err)
			break out
		}

		// A nil header with no error means we're done.
		if header == nil {
			break out
		}

		// Send the header or quit if we've been signalled to exit by
		// the status handler due to an error elsewhere.
		select {
		case hi.processQueue <- header:
		case <-hi.quit:
			break out
		}
	}

	// Close the processing channel to signal no more headers are coming.
	close(hi.processQueue)
	hi.wg.Done()
}

// logProgress logs header progress as an information message.  In order to
// prevent spam, it limits logging to one message every progress interval
// with duration and totals included.
func (hi *headerImporter) logProgress() {
	hi.receivedLogHeaders++

	now := time.Now()
	duration := now.Sub(hi.lastLogTime)
	if hi.progress <= 0 || duration < hi.progress {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Truncate(10 * time.Millisecond)

	headerStr := log.PickNoun(uint64(hi.receivedLogHeaders), "header",
		"headers")
	pchkLog.Infof("Processed %d %s in the last %s (height %d, %s)",
		hi.receivedLogHeaders, headerStr, tDuration, hi.lastHeight,
		hi.lastHeaderTime)

	hi.receivedLogHeaders = 0
	hi.lastLogTime = now
}

// processHandler is the main handler for processing headers.  This allows
// processing to take place in parallel with reads from the import file.
// It must be run as a goroutine.
func (hi *headerImporter) processHandler() {
out:
	for {
		select {
		case header, ok := <-hi.processQueue:
			// We're done when the channel is closed.
			if !ok {
				break out
			}

			hi.headersProcessed++
			imported, err := hi.processHeader(header)
			if err != nil {
				hi.errChan <- err
				break out
			}

			if imported {
				hi.headersImported++
			}

			hi.logProgress()

		case <-hi.quit:
			break out
		}
	}
	hi.wg.Done()
}

// statusHandler waits for updates from the import operation and notifies
// the passed doneChan with the results of the import.  It also causes all
// goroutines to exit if an error is reported from any of them.
func (hi *headerImporter) statusHandler(resultsChan chan *importResults) {
	select {
	// An error from either of the goroutines means we're done so signal
	// caller with the error and signal all goroutines to quit.
	case err := <-hi.errChan:
		resultsChan <- &importResults{
			headersProcessed: hi.headersProcessed,
			headersImported:  hi.headersImported,
			err:              err,
		}
		close(hi.quit)

	// The import finished normally.
	case <-hi.doneChan:
		resultsChan <- &importResults{
			headersProcessed: hi.headersProcessed,
			headersImported:  hi.headersImported,
			err:              nil,
		}
	}
}

// Import is the core function which handles importing the headers from the
// reader into the chain.  It returns a channel on which the results will be
// returned when the operation has completed.
func (hi *headerImporter) Import() chan *importResults {
	// Start up the read and process handling goroutines.  This setup allows
	// headers to be read from disk in parallel while being processed.
	hi.wg.Add(2)
	go hi.readHandler()
	go hi.processHandler()

	// Wait for the import to finish in a separate goroutine and signal
	// the status handler when done.
	go func() {
		hi.wg.Wait()
		hi.doneChan <- true
	}()

	// Start the status handler and return the result channel that it will
	// send the results on when the import is done.
	resultChan := make(chan *importResults)
	go hi.statusHandler(resultChan)
	return resultChan
}

// newHeaderImporter returns a new importer for the provided reader and chain.
func newHeaderImporter(chain *blockchain.HeaderChain, r io.Reader,
	progress time.Duration) *headerImporter {

	var lastHeight int32 = -1
	if tip := chain.Tip(); tip != nil {
		lastHeight = tip.Height()
	}
	return &headerImporter{
		chain:        chain,
		r:            r,
		progress:     progress,
		processQueue: make(chan *wire.BlockHeader, 2000),
		doneChan:     make(chan bool, 1),
		errChan:      make(chan error, 2),
		quit:         make(chan struct{}),
		lastHeight:   lastHeight,
		lastLogTime:  time.Now(),
	}
}
