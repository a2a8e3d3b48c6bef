// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headerdb

import (
	"github.com/forkpow/forkpowd/database/engine"
	"github.com/forkpow/forkpowd/database/engine/leveldb"
	"github.com/forkpow/forkpowd/database/engine/pebbledb"
)

// Driver defines a storage backend the header database can run on.
type Driver struct {
	// DbType is the identifier used to select the driver.
	DbType string

	// Open opens the engine at path.  When create is set the engine must not
	// already exist, otherwise it must.
	Open func(path string, create bool) (engine.Engine, error)
}

// driverList holds all of the supported backends, default first.
var driverList = []Driver{
	{
		DbType: "leveldb",
		Open:   leveldb.NewDB,
	},
	{
		DbType: "pebble",
		Open: func(path string, create bool) (engine.Engine, error) {
			return pebbledb.NewDB(path, create, 0, 0)
		},
	},
}

// SupportedDrivers returns a slice of strings that represent the database
// drivers that are supported.
func SupportedDrivers() []string {
	supportedDBs := make([]string, 0, len(driverList))
	for _, drv := range driverList {
		supportedDBs = append(supportedDBs, drv.DbType)
	}
	return supportedDBs
}

// lookupDriver returns the driver registered for dbType.
func lookupDriver(dbType string) (Driver, bool) {
	for _, drv := range driverList {
		if drv.DbType == dbType {
			return drv, true
		}
	}
	return Driver{}, false
}
