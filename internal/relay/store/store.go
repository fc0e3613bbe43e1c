// Package store persists artifact bytes keyed by their SHA-256 hash.
package store

import (
	"context"
	"io"
)

// Store is a content-addressed blob store. Put must be safe against
// concurrent writers of the same hash: the first stored copy wins and later
// identical uploads are discarded.
type Store interface {
	Put(ctx context.Context, hash string, data io.Reader) (int64, error)
	Get(ctx context.Context, hash string) (io.ReadCloser, error)
	Exists(ctx context.Context, hash string) (bool, error)
	Delete(ctx context.Context, hash string) error
}
