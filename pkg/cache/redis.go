package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// redisKeyPrefix namespaces all worker cache keys in Redis.
	redisKeyPrefix = "swc:"

	// redisStoreSet is the registry of known store names.
	redisStoreSet = "swc:stores"
)

// RedisStore is a Store backed by Redis, for deployments where several
// worker instances share one cache. Entries are stored as JSON under
// "swc:<store>:<key>"; store names are tracked in a registry set.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

func (r *RedisStore) entryKey(store string, key Key) string {
	return redisKeyPrefix + store + ":" + key.String()
}

// Open registers the store name.
func (r *RedisStore) Open(ctx context.Context, store string) error {
	if err := r.redis.SAdd(ctx, redisStoreSet, store).Err(); err != nil {
		CacheErrors.WithLabelValues("open").Inc()
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// Put writes a snapshot and registers the store name.
func (r *RedisStore) Put(ctx context.Context, store string, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("put").Inc()
		return ErrInvalidEntry
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Keys carry no TTL: snapshots live until their store is dropped.
	pipe := r.redis.TxPipeline()
	pipe.SAdd(ctx, redisStoreSet, store)
	pipe.Set(ctx, r.entryKey(store, key), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheStoredBytes.WithLabelValues("redis").Add(float64(len(data)))
	return nil
}

// Match looks up a snapshot by key.
func (r *RedisStore) Match(ctx context.Context, store string, key Key) (*Entry, error) {
	data, err := r.redis.Get(ctx, r.entryKey(store, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("match").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("match").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Delete removes a single key.
func (r *RedisStore) Delete(ctx context.Context, store string, key Key) error {
	if err := r.redis.Del(ctx, r.entryKey(store, key)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Names enumerates all store names from the registry set.
func (r *RedisStore) Names(ctx context.Context) ([]string, error) {
	names, err := r.redis.SMembers(ctx, redisStoreSet).Result()
	if err != nil {
		CacheErrors.WithLabelValues("names").Inc()
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return names, nil
}

// Drop removes a named store: all of its entry keys plus its registry
// membership.
func (r *RedisStore) Drop(ctx context.Context, store string) error {
	pattern := redisKeyPrefix + store + ":*"

	var cursor uint64
	for {
		keys, next, err := r.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			CacheErrors.WithLabelValues("drop").Inc()
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := r.redis.Del(ctx, keys...).Err(); err != nil {
				CacheErrors.WithLabelValues("drop").Inc()
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if err := r.redis.SRem(ctx, redisStoreSet, store).Err(); err != nil {
		CacheErrors.WithLabelValues("drop").Inc()
		return fmt.Errorf("redis srem: %w", err)
	}
	return nil
}
