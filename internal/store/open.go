package store

import (
	"fmt"
	"path/filepath"

	"github.com/guilhermegouw/atelier/internal/db"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Drivers returns the supported driver names.
func Drivers() []string {
	return []string{DriverSQLite, DriverBolt, DriverMemory}
}

// Open opens the store selected by driver inside dataDir and wraps it with
// per-record locks.
func Open(driver, dataDir string) (*Shared, error) {
	var (
		s   Store
		err error
	)

	switch driver {
	case DriverSQLite, "":
		var database *db.DB
		database, err = db.Open(filepath.Join(dataDir, db.FileName))
		if err == nil {
			s = NewSQLiteStore(database)
		}
	case DriverBolt:
		s, err = OpenBoltStore(filepath.Join(dataDir, BoltFileName))
	case DriverMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	return NewShared(s), nil
}

// Path returns the file the driver stores data in, or "" for the memory store.
func Path(driver, dataDir string) string {
	switch driver {
	case DriverSQLite, "":
		return filepath.Join(dataDir, db.FileName)
	case DriverBolt:
		return filepath.Join(dataDir, BoltFileName)
	default:
		return ""
	}
}
