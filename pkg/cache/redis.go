package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache shared between processes through Redis.
// Values are serialized with the configured Marshaler (default: JSON) and
// expire after the configured TTL.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	prefix    string
	ttl       time.Duration
}

// NewRedis creates a Redis-backed cache.
// The client should be obtained from pkg/redis.Open.
//
// A nil Marshaler selects JSON.
//
// Example:
//
//	client, _ := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[i18n.Tree](client, nil,
//	    cache.WithPrefix("polyglot"),
//	    cache.WithTTL(time.Hour),
//	)
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler[V]{}
	}

	return &Redis[V]{
		client:    client,
		marshaler: m,
		prefix:    o.prefix,
		ttl:       o.ttl,
	}
}

// Namespace returns a view of the cache whose keys live under an additional
// prefix segment. Views share the client and settings; clearing a view only
// removes its own keys.
func (r *Redis[V]) Namespace(ns string) *Redis[V] {
	if ns == "" {
		return r
	}
	view := *r
	view.prefix = r.key(ns)
	return &view
}

// Get retrieves a value by key.
// Returns ErrNotFound if the key does not exist or has expired.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return r.marshaler.Unmarshal(data)
}

// Set stores a value with the cache TTL. A non-positive TTL stores the value
// without expiration.
func (r *Redis[V]) Set(ctx context.Context, key string, value V) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, max(r.ttl, 0)).Err()
}

// Delete removes a key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Has checks whether a key exists.
func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes every key under the cache prefix using SCAN, which does not
// block the server. Without a prefix the whole database is flushed.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op. The client lifecycle belongs to pkg/redis.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

const scanBatch = 100

var _ Cache[any] = (*Redis[any])(nil)
