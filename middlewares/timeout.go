package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Logger       *slog.Logger
	ErrorHandler ErrorHandler
	Timeout      time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutLogger sets the logger timeouts are reported to.
func WithTimeoutLogger(l *slog.Logger) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Logger = l
	}
}

// WithTimeoutErrorHandler sets how the TimeoutError is answered.
func WithTimeoutErrorHandler(h ErrorHandler) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.ErrorHandler = h
	}
}

// Timeout returns middleware that bounds the request context with a deadline.
// Handlers observe it through r.Context(). If the deadline passes before the
// handler wrote anything, the TimeoutError is answered (default: a JSON 504).
func Timeout(timeout time.Duration, opts ...TimeoutOption) func(http.Handler) http.Handler {
	cfg := &TimeoutConfig{
		Logger:       slog.Default(),
		ErrorHandler: DefaultErrorHandler,
		Timeout:      timeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
			defer cancel()

			rw := wrapWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !rw.Written() {
				cfg.Logger.WarnContext(ctx, "request timeout", slog.Duration("timeout", cfg.Timeout))
				cfg.ErrorHandler(rw, r, &TimeoutError{Duration: cfg.Timeout})
			}
		})
	}
}
