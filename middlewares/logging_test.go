package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot/middlewares"
	"github.com/dmitrymomot/polyglot/pkg/logger"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		level  string
	}{
		{name: "success", status: http.StatusOK, level: "INFO"},
		{name: "client error", status: http.StatusNotFound, level: "WARN"},
		{name: "server error", status: http.StatusBadGateway, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&logs, nil))

			h := middlewares.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			serve(t, h, httptest.NewRequest(http.MethodGet, "/v1/text", nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			require.Equal(t, tt.level, entry["level"])
			require.Equal(t, "GET", entry["method"])
			require.Equal(t, "/v1/text", entry["path"])
			require.InDelta(t, tt.status, entry["status"], 0)
			require.InDelta(t, 4, entry["size"], 0)
		})
	}
}

func TestLogger_WithRequestID(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	handler := logger.NewLogHandlerDecorator(slog.NewJSONHandler(&logs, nil), middlewares.RequestIDExtractor())
	log := slog.New(handler)

	h := middlewares.RequestID(
		middlewares.WithRequestIDGenerator(func() string { return "req-7" }),
	)(middlewares.Logger(log)(http.NotFoundHandler()))

	serve(t, h, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	require.Equal(t, "req-7", entry["request_id"])
	require.InDelta(t, http.StatusNotFound, entry["status"], 0)
}
