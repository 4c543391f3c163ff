package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	Sentry SentryConfig
}

// New creates a JSON logger writing to stdout, fanned out to Sentry when a DSN
// is configured. Context extractors apply to every destination.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return newLogger(os.Stdout, cfg, extractors...)
}

func newLogger(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.Level,
	})

	if sentryHandler, err := newSentryHandler(cfg.Sentry); err != nil {
		slog.New(handler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
	} else if sentryHandler != nil {
		handler = newMultiHandler(handler, sentryHandler)
	}

	return slog.New(NewLogHandlerDecorator(handler, extractors...))
}
