package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot/middlewares"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	require.Equal(t, "panic: boom", (&middlewares.PanicError{Value: "boom"}).Error())
	require.Equal(t, "panic: 42", (&middlewares.PanicError{Value: 42}).Error())
	require.Equal(t, "request timeout after 100ms", (&middlewares.TimeoutError{Duration: 100 * time.Millisecond}).Error())
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", &middlewares.HTTPError{Status: http.StatusServiceUnavailable, Err: base}, http.StatusServiceUnavailable},
		{"timeout error", &middlewares.TimeoutError{Duration: time.Second}, http.StatusGatewayTimeout},
		{"wrapped timeout error", errors.Join(base, &middlewares.TimeoutError{Duration: time.Second}), http.StatusGatewayTimeout},
		{"expired deadline", fmt.Errorf("loading source: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"panic", &middlewares.PanicError{Value: "x"}, http.StatusInternalServerError},
		{"plain error", base, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, middlewares.StatusOf(tt.err))
		})
	}

	wrapped := &middlewares.HTTPError{Status: http.StatusBadRequest, Err: base}
	require.ErrorIs(t, wrapped, base)
	require.Equal(t, "boom", wrapped.Error())
}

func TestDefaultErrorHandler(t *testing.T) {
	t.Parallel()

	t.Run("hides server error details", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(middlewares.WithRequestID(req.Context(), "req-1"))
		rec := httptest.NewRecorder()

		middlewares.DefaultErrorHandler(rec, req, errors.New("dial tcp: secret host"))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var body middlewares.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "Internal Server Error", body.Error)
		require.Equal(t, "req-1", body.RequestID)
	})

	t.Run("shows client error message", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		middlewares.DefaultErrorHandler(rec, req,
			&middlewares.HTTPError{Status: http.StatusBadRequest, Err: errors.New("invalid path")})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"invalid path"}`, rec.Body.String())
	})
}
