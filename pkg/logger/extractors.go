package logger

import (
	"context"
	"log/slog"
)

// StringExtractor returns a ContextExtractor that logs the string stored in the
// context under key as attribute name. Empty and missing values are skipped.
func StringExtractor(key any, name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(name, v), true
		}
		return slog.Attr{}, false
	}
}
