// Package cache provides the named, versioned response store used by the
// offline worker.
//
// A Store holds immutable response snapshots keyed by request identity
// (method + normalized URL). Stores are named; the worker keeps exactly one
// store per deployed version and drops the rest during activation. Per-key
// replacement is atomic in every backend, so concurrent writes to the same
// key are last-write-wins with no partial visibility.
//
// Three backends are provided:
//
//   - Memory: in-process map, for tests and single-node deployments
//   - Redis: shared store for multi-instance deployments
//   - Level: persistent on-disk store (goleveldb)
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	key := cache.NewKey(req)
//	entry, err := store.Match(ctx, "offline-v2", key)
//	if err == cache.ErrCacheMiss {
//		// fetch from network
//	}
//
// # HTTP Response Caching
//
//	// Snapshot a response (body is restored for the caller)
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := store.Put(ctx, "offline-v2", key, entry); err != nil {
//		return err
//	}
//
//	// Replay a snapshot as an HTTP response
//	resp := cache.EntryToResponse(entry)
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - sw_cache_hits_total{backend} - Cache hits
//   - sw_cache_misses_total - Cache misses
//   - sw_cache_stored_bytes{backend} - Bytes written
//   - sw_cache_errors_total{operation} - Cache operation errors
package cache
