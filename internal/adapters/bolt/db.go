// Package bolt implements the cache and queue stores on a single bbolt
// database file. Cache partitions map to buckets named "cache/<partition>";
// the mutation queue lives in its own bucket keyed by big-endian timestamps
// so a cursor walks entries in insertion order.
package bolt

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// DB wraps the shared bbolt handle used by both stores.
type DB struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
