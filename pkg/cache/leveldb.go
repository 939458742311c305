package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	levelEntryPrefix = "e:"
	levelNamePrefix  = "n:"
)

// LevelStore is a Store persisted on local disk via goleveldb, giving
// the worker an offline cache that survives restarts. Entries live
// under "e:<store>:<key>"; each store has a name marker under
// "n:<store>" so empty stores are still enumerable.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (creating if needed) a LevelDB database at path.
func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

// Close releases the underlying database.
func (l *LevelStore) Close() error {
	return l.db.Close()
}

func (l *LevelStore) entryKey(store string, key Key) []byte {
	return []byte(levelEntryPrefix + store + ":" + key.String())
}

// Open writes the store name marker.
func (l *LevelStore) Open(ctx context.Context, store string) error {
	if err := l.db.Put([]byte(levelNamePrefix+store), nil, nil); err != nil {
		CacheErrors.WithLabelValues("open").Inc()
		return fmt.Errorf("leveldb put marker: %w", err)
	}
	return nil
}

// Put writes a snapshot together with the store name marker.
func (l *LevelStore) Put(ctx context.Context, store string, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("put").Inc()
		return ErrInvalidEntry
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(levelNamePrefix+store), nil)
	batch.Put(l.entryKey(store, key), data)
	if err := l.db.Write(batch, nil); err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("leveldb write: %w", err)
	}

	CacheStoredBytes.WithLabelValues("leveldb").Add(float64(len(data)))
	return nil
}

// Match looks up a snapshot by key.
func (l *LevelStore) Match(ctx context.Context, store string, key Key) (*Entry, error) {
	data, err := l.db.Get(l.entryKey(store, key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("match").Inc()
		return nil, fmt.Errorf("leveldb get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("match").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues("leveldb").Inc()
	return &entry, nil
}

// Delete removes a single key.
func (l *LevelStore) Delete(ctx context.Context, store string, key Key) error {
	if err := l.db.Delete(l.entryKey(store, key), nil); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("leveldb delete: %w", err)
	}
	return nil
}

// Names enumerates store name markers.
func (l *LevelStore) Names(ctx context.Context) ([]string, error) {
	it := l.db.NewIterator(util.BytesPrefix([]byte(levelNamePrefix)), nil)
	defer it.Release()

	var names []string
	for it.Next() {
		names = append(names, strings.TrimPrefix(string(it.Key()), levelNamePrefix))
	}
	if err := it.Error(); err != nil {
		CacheErrors.WithLabelValues("names").Inc()
		return nil, fmt.Errorf("leveldb iterate: %w", err)
	}
	return names, nil
}

// Drop removes all entries of a named store plus its name marker.
func (l *LevelStore) Drop(ctx context.Context, store string) error {
	batch := new(leveldb.Batch)

	it := l.db.NewIterator(util.BytesPrefix([]byte(levelEntryPrefix+store+":")), nil)
	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		batch.Delete(k)
	}
	err := it.Error()
	it.Release()
	if err != nil {
		CacheErrors.WithLabelValues("drop").Inc()
		return fmt.Errorf("leveldb iterate: %w", err)
	}

	batch.Delete([]byte(levelNamePrefix + store))
	if err := l.db.Write(batch, nil); err != nil {
		CacheErrors.WithLabelValues("drop").Inc()
		return fmt.Errorf("leveldb write: %w", err)
	}
	return nil
}
