package cache

import "time"

// DefaultRedisTTL is how long shared entries live when no TTL is configured.
const DefaultRedisTTL = time.Hour

// RedisOption configures the Redis cache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{ttl: DefaultRedisTTL}
}

// WithTTL sets how long entries live. Zero or negative values store entries
// without expiration.
// Default: 1 hour.
func WithTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.ttl = d
	}
}

// WithPrefix sets a key prefix for all cache operations.
// Keys are stored as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}
