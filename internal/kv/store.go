// Package kv defines the key-value boundary the history and preferences
// persist through, with memory, file, and SQLite drivers.
package kv

import (
	"context"
	"fmt"
)

// Store is a string key-value store. Get reports ok=false for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open builds the store for driver. path is a directory for the file driver
// and a database file for sqlite; memory ignores it. The returned close
// function releases driver resources.
func Open(driver, path string) (Store, func() error, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), func() error { return nil }, nil
	case DriverFile:
		s, err := NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case DriverSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}
