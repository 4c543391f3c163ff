package cache

import "time"

// DefaultPurgeWindow is how long a purge is deferred after the first write that
// scheduled it. Writes inside the window share that purge.
const DefaultPurgeWindow = 10 * time.Millisecond

// RecencyOption configures the recency-bounded cache.
type RecencyOption func(*recencyOptions)

type recencyOptions struct {
	clock       func() time.Time
	purgeWindow time.Duration
	maxSize     int
	minSize     int
}

func defaultRecencyOptions() *recencyOptions {
	return &recencyOptions{
		clock:       time.Now,
		purgeWindow: DefaultPurgeWindow,
		maxSize:     0, // 0 = unbounded
		minSize:     0, // 0 = keep maxSize
	}
}

// keepCount is the number of entries a purge retains.
func (o *recencyOptions) keepCount() int {
	if o.minSize == 0 {
		return o.maxSize
	}
	return min(o.minSize, o.maxSize)
}

// WithMaxSize sets the entry count above which a purge evicts.
// Zero disables eviction; negative values are treated as zero.
// Default: 0.
func WithMaxSize(n int) RecencyOption {
	return func(o *recencyOptions) {
		o.maxSize = max(n, 0)
	}
}

// WithMinSize sets how many entries a purge keeps. Zero means maxSize.
// Negative values are treated as zero.
// Default: 0.
func WithMinSize(n int) RecencyOption {
	return func(o *recencyOptions) {
		o.minSize = max(n, 0)
	}
}

// WithPurgeWindow sets the coalescing window for purges. A non-positive window
// purges synchronously on every Set.
// Default: 10ms.
func WithPurgeWindow(d time.Duration) RecencyOption {
	return func(o *recencyOptions) {
		o.purgeWindow = d
	}
}

// WithClock replaces the time source used for access priorities.
func WithClock(clock func() time.Time) RecencyOption {
	return func(o *recencyOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}
