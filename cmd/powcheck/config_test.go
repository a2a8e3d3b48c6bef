// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"testing"

	"github.com/forkpow/forkpowd/chaincfg"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigNetworks(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		params *chaincfg.Params
	}{
		{"default", nil, &chaincfg.MainNetParams},
		{"testnet", []string{"--testnet"}, &chaincfg.TestNetParams},
		{"regtest", []string{"--regtest"}, &chaincfg.RegressionNetParams},
		{"simnet", []string{"--simnet"}, &chaincfg.SimNetParams},
	}

	for _, test := range tests {
		dataDir := t.TempDir()
		args := append([]string{"--datadir", dataDir}, test.args...)
		cfg, _, err := loadConfig(args)
		require.NoError(t, err, test.name)
		require.Same(t, test.params, cfg.params, test.name)
		require.Equal(t, filepath.Join(dataDir, test.params.Name),
			cfg.DataDir, test.name)
		require.Equal(t, filepath.Join(cfg.DataDir, defaultLogDirname),
			cfg.LogDir, test.name)
		require.Equal(t, defaultDbType, cfg.DbType, test.name)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"two networks", []string{"--testnet", "--simnet"}},
		{"bad dbtype", []string{"--dbtype", "ffldb"}},
		{"bad debuglevel", []string{"--debuglevel", "NOPE=info"}},
		{"hash without bits", []string{"--checkhash", "00"}},
		{"bad bits", []string{"--checkhash", "00", "--checkbits", "xyz"}},
	}

	for _, test := range tests {
		_, _, err := loadConfig(test.args)
		require.Error(t, err, test.name)
	}
}

func TestLoadConfigCheck(t *testing.T) {
	cfg, _, err := loadConfig([]string{"--regtest", "--checkhash",
		"00000000000000000000000000000000000000000000000000000000000000ff",
		"--checkbits", "207fffff", "--dbtype", "pebble"})
	require.NoError(t, err)
	require.NotNil(t, cfg.checkHash)
	require.Equal(t, uint32(0x207fffff), cfg.checkBits)
	require.Equal(t, "pebble", cfg.DbType)
}

func TestLoadConfigShowVersion(t *testing.T) {
	_, _, err := loadConfig([]string{"--version"})
	require.ErrorIs(t, err, errShowVersion)

	_, _, err = loadConfig([]string{"--debuglevel", "show"})
	require.ErrorIs(t, err, errShowSubsystems)
}
