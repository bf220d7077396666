// Package store keeps opaque blobs under string keys. The ledger is written
// here as one encoded value; the store knows nothing about its contents.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a durable key-value byte store.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open picks a backend from the DSN: "postgres://" and "postgresql://"
// URLs use PostgreSQL, ":memory:" keeps blobs in process memory, anything
// else is a SQLite database path.
func Open(ctx context.Context, dsn string) (BlobStore, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case dsn == ":memory:":
		return NewMemory(), nil
	default:
		return OpenSQLite(ctx, dsn)
	}
}
