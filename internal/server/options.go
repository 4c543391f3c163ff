package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/polyglot/pkg/health"
)

const (
	defaultAddress         = ":8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithAddress sets the HTTP listen address.
// Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.address = addr
		}
	}
}

// WithLogger sets the server logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequestTimeout bounds every request.
// Defaults to 10 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	server.WithShutdownHook(db.Shutdown(pool))
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.shutdownHooks = append(s.shutdownHooks, fn)
		}
	}
}

// WithHealthCheck adds a named readiness check.
func WithHealthCheck(name string, fn health.CheckFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.checks[name] = fn
		}
	}
}

// WithReloadSchedule resets the source on a standard five-field cron
// schedule, so the next request loads a fresh copy.
func WithReloadSchedule(expr string) Option {
	return func(s *Server) {
		s.reloadSchedule = expr
	}
}
