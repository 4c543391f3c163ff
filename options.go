package polyglot

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/polyglot/pkg/cache"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
)

// Option configures a Service.
type Option func(*Service) error

// WithSourceLocation sets where the translation source is loaded from, such
// as "language.yaml", "s3://bucket/language.yaml" or "pg://website".
func WithSourceLocation(location string) Option {
	return func(s *Service) error {
		s.location = location
		return nil
	}
}

// WithLoader replaces the source loader. The default reads local files.
func WithLoader(l Loader) Option {
	return func(s *Service) error {
		if l != nil {
			s.loader = l
		}
		return nil
	}
}

// WithMaxCacheSize sets how many resolved headers are kept before a purge
// evicts. Zero, the default, never evicts.
func WithMaxCacheSize(n int) Option {
	return func(s *Service) error {
		if n < 0 {
			return ErrInvalidCacheSize
		}
		s.cacheOpts = append(s.cacheOpts, cache.WithMaxSize(n))
		return nil
	}
}

// WithMinCacheSize sets how many headers a purge keeps. Zero, the default,
// keeps the maximum.
func WithMinCacheSize(n int) Option {
	return func(s *Service) error {
		if n < 0 {
			return ErrInvalidCacheSize
		}
		s.cacheOpts = append(s.cacheOpts, cache.WithMinSize(n))
		return nil
	}
}

// WithPurgeWindow sets how long a purge is deferred so that bursts of new
// headers share one purge. Default: 10ms.
func WithPurgeWindow(d time.Duration) Option {
	return func(s *Service) error {
		s.cacheOpts = append(s.cacheOpts, cache.WithPurgeWindow(d))
		return nil
	}
}

// WithSharedCache adds a second cache level shared between processes.
// Entries are namespaced by source version, so a changed source never serves
// trees resolved from an older one.
func WithSharedCache(c *cache.Redis[i18n.Tree]) Option {
	return func(s *Service) error {
		s.shared = c
		return nil
	}
}

// WithLoadTimeout bounds a single source load. Default: 30s.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) error {
		if d > 0 {
			s.loadTimeout = d
		}
		return nil
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}
