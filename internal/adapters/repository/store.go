// Package repository persists the race history table.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/racebet/internal/domain/model"
)

// Supported backends.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Store provides durable access to the race history.
type Store interface {
	// Load returns the full history in insertion order.
	Load(ctx context.Context) (model.Table, error)

	// Persist makes t the durable history. t must extend what was loaded
	// or persisted before.
	Persist(ctx context.Context, t model.Table) error

	// Close releases the backend.
	Close() error
}

// Open builds the store named by driver.
func Open(driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case DriverCSV:
		return NewCSVStore(path, opts...), nil
	case DriverSQLite:
		return OpenSQLite(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
