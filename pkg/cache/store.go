package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is an asynchronous key-value store of response snapshots,
// organized into named stores (one per deployed worker version).
//
// Implementations must provide atomic per-key replacement: a concurrent
// Put and Match for the same key observe either the old or the new
// snapshot, never a mix.
type Store interface {
	// Open ensures the named store exists. Opening an existing store is
	// a no-op; Put implies Open for its store name.
	Open(ctx context.Context, store string) error

	// Put writes a snapshot under the given key, replacing any previous
	// value.
	Put(ctx context.Context, store string, key Key, entry *Entry) error

	// Match looks up a snapshot by key. Returns ErrCacheMiss if the store
	// or the key does not exist.
	Match(ctx context.Context, store string, key Key) (*Entry, error)

	// Delete removes a single key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, store string, key Key) error

	// Names enumerates all existing store names.
	Names(ctx context.Context) ([]string, error)

	// Drop removes a named store and all of its entries. Dropping an
	// absent store is a no-op.
	Drop(ctx context.Context, store string) error
}
