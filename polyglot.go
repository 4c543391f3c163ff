package polyglot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/polyglot/pkg/cache"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/logger"
)

// DefaultLoadTimeout bounds a single source load unless WithLoadTimeout is used.
const DefaultLoadTimeout = 30 * time.Second

// snapshot is an installed source together with the shared cache namespace
// derived from its version.
type snapshot struct {
	source *i18n.Source
	shared *cache.Redis[i18n.Tree]
}

// Service resolves preference headers into text trees and caches them per
// header. The zero value is not usable; create one with New.
type Service struct {
	loader      Loader
	local       *cache.Recency[i18n.Tree]
	shared      *cache.Redis[i18n.Tree]
	logger      *slog.Logger
	cacheOpts   []cache.RecencyOption
	loadTimeout time.Duration

	loads  singleflight.Group
	misses singleflight.Group

	mu       sync.RWMutex
	location string
	current  snapshot
	epoch    uint64
	closed   bool
}

// New creates a Service.
//
// Example:
//
//	svc, err := polyglot.New(
//	    polyglot.WithSourceLocation("language.yaml"),
//	    polyglot.WithMaxCacheSize(1000),
//	    polyglot.WithMinCacheSize(800),
//	)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	tree, err := svc.Text(ctx, r.Header.Get("Accept-Language"))
func New(opts ...Option) (*Service, error) {
	s := &Service{
		logger:      logger.NewNope(),
		loadTimeout: DefaultLoadTimeout,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.loader == nil {
		s.loader = NewStorageLoader(nil)
	}

	s.local = cache.NewRecency[i18n.Tree](s.cacheOpts...)
	s.local.SetEvictCallback(func(key string, _ i18n.Tree) {
		s.logger.Debug("language text evicted", slog.String("header", key))
	})

	return s, nil
}

// Text returns the text tree for a preference header such as
// "fr-ca, en-us;q=0.5".
//
// The first call, and the first call after Reset or SetSourceLocation, loads
// the source; concurrent callers share that load. Later calls are served from
// memory. Load failures wrap ErrSourceLoad.
//
// The returned tree is shared with other callers and must not be modified.
func (s *Service) Text(ctx context.Context, header string) (i18n.Tree, error) {
	key := SanitizeHeader(header)

	snap, err := s.ensureSource(ctx)
	if err != nil {
		return nil, err
	}

	tree, err := s.local.Get(ctx, key)
	switch {
	case err == nil:
		return tree, nil
	case errors.Is(err, cache.ErrClosed):
		return nil, ErrClosed
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.misses.DoChan(fmt.Sprintf("%p|%s", snap.source, key), func() (any, error) {
		return s.resolve(flightCtx, snap, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(i18n.Tree), nil
	}
}

// Chain returns the preference chain Text uses for header.
func (s *Service) Chain(header string) []string {
	return i18n.PreferenceChain(SanitizeHeader(header))
}

// SetSourceLocation changes where the source is loaded from. The loaded
// source is discarded and the next Text call loads from the new location.
func (s *Service) SetSourceLocation(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = location
	s.current = snapshot{}
	s.epoch++

	s.logger.Info("language source location changed", slog.String("location", location))
}

// SourceLocation returns the configured source location.
func (s *Service) SourceLocation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Reset discards the loaded source so the next Text call reloads it.
// Cached trees stay until that reload installs the new source.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snapshot{}
	s.epoch++

	s.logger.Debug("language source reset")
}

// Loaded reports whether a source is currently installed.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.source != nil
}

// SetMaxCacheSize sets how many headers are cached before a purge evicts
// the least recently used ones. Zero disables eviction.
func (s *Service) SetMaxCacheSize(n int) error {
	if err := s.local.SetMaxSize(n); err != nil {
		return errors.Join(ErrInvalidCacheSize, err)
	}
	return nil
}

// SetMinCacheSize sets how many headers a purge keeps, capped by the maximum.
// Zero keeps the maximum.
func (s *Service) SetMinCacheSize(n int) error {
	if err := s.local.SetMinSize(n); err != nil {
		return errors.Join(ErrInvalidCacheSize, err)
	}
	return nil
}

// CacheLen returns the number of headers held in memory.
func (s *Service) CacheLen() int {
	return s.local.Len()
}

// CachedHeaders returns the sanitized headers held in memory, most recently
// used first.
func (s *Service) CachedHeaders() []string {
	return s.local.Keys()
}

// ClearCache drops every cached tree, including the shared cache when one
// is configured. The loaded source is kept.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.local.Clear(ctx); err != nil {
		if errors.Is(err, cache.ErrClosed) {
			return ErrClosed
		}
		return err
	}
	if s.shared != nil {
		return s.shared.Clear(ctx)
	}
	return nil
}

// Healthcheck reports whether the source is loaded or can be loaded.
func (s *Service) Healthcheck(ctx context.Context) error {
	_, err := s.ensureSource(ctx)
	return err
}

// Close releases the cache. Text returns ErrClosed afterwards.
// Close is idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.current = snapshot{}
	s.mu.Unlock()

	return s.local.Close()
}

// ensureSource returns the installed source, loading it first if needed.
func (s *Service) ensureSource(ctx context.Context) (snapshot, error) {
	s.mu.RLock()
	closed, snap, location, epoch := s.closed, s.current, s.location, s.epoch
	s.mu.RUnlock()

	if closed {
		return snapshot{}, ErrClosed
	}
	if snap.source != nil {
		return snap, nil
	}
	if location == "" {
		return snapshot{}, ErrNoSourceLocation
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(fmt.Sprintf("%d|%s", epoch, location), func() (any, error) {
		return s.load(flightCtx, epoch, location)
	})

	select {
	case <-ctx.Done():
		return snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return snapshot{}, res.Err
		}
		return res.Val.(snapshot), nil
	}
}

// load reads the source and installs it if nothing reset the service while
// it was loading. The loaded snapshot is returned to the waiters either way.
func (s *Service) load(ctx context.Context, epoch uint64, location string) (snapshot, error) {
	// A caller that saw no source may get here after another load of the same
	// epoch already finished.
	s.mu.RLock()
	cur, moved := s.current, s.epoch != epoch
	s.mu.RUnlock()
	if moved && cur.source != nil {
		return cur, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	start := time.Now()
	src, err := s.loader.Load(ctx, location)
	if err != nil {
		if !errors.Is(err, ErrSourceLoad) {
			err = fmt.Errorf("%w %q: %w", ErrSourceLoad, location, err)
		}
		s.logger.ErrorContext(ctx, "failed to load language source",
			slog.String("location", location),
			slog.Any("error", err),
		)
		return snapshot{}, err
	}

	snap := snapshot{source: src}
	if s.shared != nil {
		snap.shared = s.shared.Namespace(src.Version())
	}

	installed := s.install(snap, epoch)
	s.logger.InfoContext(ctx, "language source loaded",
		slog.String("location", location),
		slog.String("version", src.Version()),
		slog.Int("items", src.Len()),
		slog.Bool("installed", installed),
		slog.Duration("took", time.Since(start)),
	)

	return snap, nil
}

// install makes snap the current source and starts an empty cache
// generation. It fails if the epoch moved on since the load started.
func (s *Service) install(snap snapshot, epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.epoch != epoch {
		return false
	}

	s.current = snap
	s.epoch++
	_ = s.local.Clear(context.Background())
	return true
}

// resolve builds the tree for key, going through the shared cache when one is
// configured, and stores it locally.
func (s *Service) resolve(ctx context.Context, snap snapshot, key string) (i18n.Tree, error) {
	build := func(context.Context) (i18n.Tree, error) {
		return i18n.Resolve(snap.source, i18n.PreferenceChain(key)), nil
	}

	var (
		tree i18n.Tree
		err  error
	)
	if snap.shared != nil {
		tree, err = cache.GetOrSet[i18n.Tree](ctx, snap.shared, key, build)
	} else {
		tree, err = build(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.store(ctx, snap, key, tree)
	return tree, nil
}

// store caches tree unless the source it was resolved from has been replaced.
func (s *Service) store(ctx context.Context, snap snapshot, key string, tree i18n.Tree) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.current.source != snap.source {
		return
	}
	if err := s.local.Set(ctx, key, tree); err != nil {
		s.logger.WarnContext(ctx, "failed to cache language text",
			slog.String("header", key),
			slog.Any("error", err),
		)
	}
}
