package logger

import "log/slog"

// NewNope creates a logger that discards all output.
// Library types use it until a logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
