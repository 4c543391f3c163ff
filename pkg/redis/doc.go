// Package redis opens the Redis connection behind the shared tree cache.
//
// It wraps [github.com/redis/go-redis/v9] with startup retries, a readiness
// check and a shutdown hook.
//
// # Usage
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithRetry(3, time.Second),
//	    redis.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	shared := cache.NewRedis[i18n.Tree](client, nil, cache.WithPrefix("polyglot"))
//
// Options:
//
//   - WithPoolSize(n): maximum number of connections (default: 10)
//   - WithRetry(attempts, interval): startup retries (default: 3, 2s)
//   - WithTimeout(d): dial, read and write timeout (default: 1s)
//   - WithLogger(l): logger for failed attempts (default: discard)
//
// [Healthcheck] returns a ping closure for readiness endpoints and [Shutdown]
// a hook that closes the client.
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL]: no URL given
//   - [ErrFailedToParseURL]: URL is not redis:// or rediss:// or is malformed
//   - [ErrConnectionFailed]: no successful ping after all retries
//   - [ErrHealthcheckFailed]: ping failed
package redis
