// Package cache provides a generic Cache interface with a recency-bounded
// in-memory implementation and a Redis implementation for sharing values
// between processes.
//
// # Interface
//
// The [Cache] interface is generic over value type V:
//
//   - Get(ctx, key) (V, error) retrieves a value
//   - Set(ctx, key, value) error stores a value
//   - Delete(ctx, key) error removes a key
//   - Has(ctx, key) (bool, error) checks existence
//   - Clear(ctx) error removes all entries
//   - Close() error releases resources
//
// # Recency Cache
//
// [NewRecency] keeps entries until the cache grows past a maximum size. Every
// Get and Set refreshes an entry's access priority; a purge keeps the most
// recently accessed entries and drops the rest:
//
//	c := cache.NewRecency[i18n.Tree](
//	    cache.WithMaxSize(1000), // purge once there are more than 1000 entries
//	    cache.WithMinSize(800),  // and keep the 800 most recently used
//	)
//	defer c.Close()
//
// Purges are not run inline. The first Set past the limit arms a short window
// (10ms by default, see [WithPurgeWindow]); every write inside the window
// shares the same purge, which runs once at its end. The same mechanism is
// available on its own as [Coalescer].
//
// Sizes can be changed at runtime with SetMaxSize and SetMinSize. Negative
// values are rejected with [ErrInvalidSize]. A zero maximum disables eviction
// and a zero minimum means "keep the maximum".
//
// # Redis Cache
//
// [NewRedis] stores values in Redis. The client should be obtained from
// pkg/redis.Open:
//
//	client, _ := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[i18n.Tree](client, nil,
//	    cache.WithPrefix("polyglot"),
//	    cache.WithTTL(time.Hour),
//	)
//	shared := c.Namespace(src.Version())
//
// Pass a custom [Marshaler] as the second argument to [NewRedis] to use
// a different serialization format. If nil, JSON is used.
//
// # Cache Stampede Prevention
//
// [GetOrSet] computes a missing value once, however many goroutines miss it
// at the same time:
//
//	tree, err := cache.GetOrSet(ctx, c, header, func(ctx context.Context) (i18n.Tree, error) {
//	    return i18n.Resolve(src, i18n.PreferenceChain(header)), nil
//	})
//
// # Error Handling
//
// The package defines sentinel errors:
//
//   - [ErrNotFound]: key does not exist
//   - [ErrClosed]: operation on a closed cache
//   - [ErrInvalidSize]: negative size bound
//   - [ErrMarshal]: value serialization failed
//   - [ErrUnmarshal]: value deserialization failed
//
// Use [errors.Is] to check:
//
//	val, err := c.Get(ctx, "key")
//	if errors.Is(err, cache.ErrNotFound) {
//	    // handle miss
//	}
package cache
