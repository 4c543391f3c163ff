package cache

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// recencyEntry holds a cached value and its access priority. The priority is
// updated atomically so hits only need the read lock.
type recencyEntry[V any] struct {
	value    V
	accessed atomic.Int64  // unix nanoseconds of the last touch
	seq      atomic.Uint64 // global touch order, breaks clock ties
}

// Recency is an in-memory cache bounded by entry count. Every Get or Set
// refreshes the entry's access priority. Once the cache holds more than
// maxSize entries, a coalesced purge keeps only the most recently accessed
// ones and drops the rest.
//
// A purge never deletes from the live map. It builds a fresh map with the
// survivors and swaps it in under the write lock, so a reader sees either the
// old or the new generation, never a half-evicted one.
type Recency[V any] struct {
	items   map[string]*recencyEntry[V]
	opts    *recencyOptions
	purger  *Coalescer
	onEvict func(key string, value V)
	seq     atomic.Uint64
	mu      sync.RWMutex
	closed  bool
}

// NewRecency creates a recency-bounded cache.
//
// Example:
//
//	c := cache.NewRecency[i18n.Tree](
//	    cache.WithMaxSize(1000),
//	    cache.WithMinSize(800),
//	)
//	defer c.Close()
func NewRecency[V any](opts ...RecencyOption) *Recency[V] {
	o := defaultRecencyOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := &Recency[V]{
		items: make(map[string]*recencyEntry[V]),
		opts:  o,
	}
	r.purger = NewCoalescer(o.purgeWindow, func() { r.Purge() })

	return r
}

// SetEvictCallback sets a function called for every entry dropped by a purge.
// It runs after the new generation has been installed, outside the lock.
func (r *Recency[V]) SetEvictCallback(fn func(key string, value V)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Get returns the value stored under key and marks it as just accessed.
// Returns ErrNotFound if the key is absent.
func (r *Recency[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return zero, ErrClosed
	}

	e, ok := r.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	r.touch(e)

	return e.value, nil
}

// Set inserts or overwrites key, marks it as just accessed and schedules a
// purge.
func (r *Recency[V]) Set(_ context.Context, key string, value V) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}

	e := &recencyEntry[V]{value: value}
	r.touch(e)
	r.items[key] = e
	r.mu.Unlock()

	r.purger.Trigger()
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Recency[V]) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	delete(r.items, key)
	return nil
}

// Has reports whether key is present. It does not change the key's priority.
func (r *Recency[V]) Has(_ context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return false, ErrClosed
	}
	_, ok := r.items[key]
	return ok, nil
}

// Clear drops every entry by installing an empty generation.
func (r *Recency[V]) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.items = make(map[string]*recencyEntry[V])
	r.purger.Cancel()
	return nil
}

// Close cancels a pending purge and releases all entries.
// Further operations return ErrClosed. Close is idempotent.
func (r *Recency[V]) Close() error {
	r.purger.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.items = nil
	return nil
}

// Len returns the number of entries currently held.
func (r *Recency[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Keys returns the cached keys, most recently accessed first.
func (r *Recency[V]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ranked := r.ranked()
	keys := make([]string, len(ranked))
	for i, k := range ranked {
		keys[len(ranked)-1-i] = k.key
	}
	return keys
}

// MaxSize returns the eviction threshold. Zero means unbounded.
func (r *Recency[V]) MaxSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts.maxSize
}

// MinSize returns the configured purge target. Zero means unset.
func (r *Recency[V]) MinSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts.minSize
}

// SetMaxSize changes the eviction threshold. Zero disables eviction.
// A purge is scheduled so a lowered threshold takes effect.
func (r *Recency[V]) SetMaxSize(n int) error {
	if n < 0 {
		return ErrInvalidSize
	}

	r.mu.Lock()
	r.opts.maxSize = n
	r.mu.Unlock()

	r.purger.Trigger()
	return nil
}

// SetMinSize changes how many entries a purge keeps. Zero means "keep maxSize".
func (r *Recency[V]) SetMinSize(n int) error {
	if n < 0 {
		return ErrInvalidSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.minSize = n
	return nil
}

// Purge evicts the least recently accessed entries when the cache holds more
// than maxSize of them, keeping min(minSize, maxSize). It returns the number
// of evicted entries.
//
// Purge is normally driven by the coalescer after Set; calling it directly is
// safe.
func (r *Recency[V]) Purge() int {
	r.mu.Lock()

	maxSize := r.opts.maxSize
	if r.closed || maxSize <= 0 || len(r.items) <= maxSize {
		r.mu.Unlock()
		return 0
	}

	keep := r.opts.keepCount()
	ranked := r.ranked()
	cut := len(ranked) - keep

	next := make(map[string]*recencyEntry[V], keep)
	for _, k := range ranked[cut:] {
		next[k.key] = k.entry
	}
	evicted := ranked[:cut]

	r.items = next
	onEvict := r.onEvict
	r.mu.Unlock()

	if onEvict != nil {
		for _, k := range evicted {
			onEvict(k.key, k.entry.value)
		}
	}

	return len(evicted)
}

func (r *Recency[V]) touch(e *recencyEntry[V]) {
	e.accessed.Store(r.opts.clock().UnixNano())
	e.seq.Store(r.seq.Add(1))
}

type rankedEntry[V any] struct {
	entry *recencyEntry[V]
	key   string
}

// ranked returns entries ordered from least to most recently accessed.
// Must be called with the lock held.
func (r *Recency[V]) ranked() []rankedEntry[V] {
	out := make([]rankedEntry[V], 0, len(r.items))
	for k, e := range r.items {
		out = append(out, rankedEntry[V]{key: k, entry: e})
	}
	slices.SortFunc(out, func(a, b rankedEntry[V]) int {
		if c := cmp.Compare(a.entry.accessed.Load(), b.entry.accessed.Load()); c != 0 {
			return c
		}
		return cmp.Compare(a.entry.seq.Load(), b.entry.seq.Load())
	})
	return out
}

// Ensure Recency satisfies Cache at compile time.
var _ Cache[any] = (*Recency[any])(nil)
