package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache.
//
// Expiration is a backend policy: Recency evicts by access order and size,
// Redis applies its configured TTL. Callers only store and fetch.
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, key string, value V) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Has checks whether a key exists.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases resources (pending purges, etc.).
	Close() error
}

// Marshaler serializes and deserializes cache values for storage backends
// that require byte representation (e.g., Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var sfGroup singleflight.Group

// GetOrSet returns the cached value for key, or calls fn to compute it on a miss
// and stores the result.
//
// Concurrent misses for the same key on the same cache share one fn call. The
// shared call runs detached from any single caller's cancellation; each caller
// stops waiting as soon as its own ctx is done.
//
// If fn returns an error nothing is stored. Storing is best effort: a failed
// Set still returns the computed value.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := sfGroup.DoChan(fmt.Sprintf("%p|%s", c, key), func() (any, error) {
		v, err := fn(flightCtx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(flightCtx, key, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
