// Package logger builds the structured logger used by the polyglot server and
// CLI.
//
// Records are written as JSON to stdout. When a Sentry DSN is configured they
// are also sent to Sentry: errors create issues, lower levels down to
// SentryConfig.MinLevel are stored as logs.
//
//	log := logger.New(logger.Config{Level: slog.LevelInfo},
//		middlewares.RequestIDExtractor(),
//		middlewares.LanguageExtractor(),
//	)
//	log.InfoContext(ctx, "text resolved", slog.Int("items", n))
//	// {"level":"INFO","msg":"text resolved","items":6,"request_id":"...","language":"fr"}
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of the context of every record:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// [StringExtractor] covers the common case of a string stored under a context
// key. Returning false skips the attribute for that record.
//
// Library code never creates its own logger; it takes one through an option
// and defaults to [NewNope].
package logger
