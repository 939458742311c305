package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store backed by a map of maps.
// Safe for concurrent use; per-key replacement is atomic under the
// store mutex.
type MemoryStore struct {
	mu     sync.RWMutex
	stores map[string]map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stores: make(map[string]map[string]*Entry),
	}
}

// Open ensures the named store exists.
func (m *MemoryStore) Open(ctx context.Context, store string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[store]; !ok {
		m.stores[store] = make(map[string]*Entry)
	}
	return nil
}

// Put writes a snapshot, creating the store if absent.
func (m *MemoryStore) Put(ctx context.Context, store string, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("put").Inc()
		return ErrInvalidEntry
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stores[store]
	if !ok {
		s = make(map[string]*Entry)
		m.stores[store] = s
	}
	s[key.String()] = entry

	CacheStoredBytes.WithLabelValues("memory").Add(float64(entry.Size()))
	return nil
}

// Match looks up a snapshot by key.
func (m *MemoryStore) Match(ctx context.Context, store string, key Key) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[store]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}
	entry, ok := s[key.String()]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry, nil
}

// Delete removes a single key.
func (m *MemoryStore) Delete(ctx context.Context, store string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[store]; ok {
		delete(s, key.String())
	}
	return nil
}

// Names enumerates all store names.
func (m *MemoryStore) Names(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	return names, nil
}

// Drop removes a named store and all of its entries.
func (m *MemoryStore) Drop(ctx context.Context, store string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.stores, store)
	return nil
}
