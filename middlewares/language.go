package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/logger"
)

type (
	languageKey struct{}
	textKey     struct{}
)

// TextProvider resolves a preference header into a text tree.
// *polyglot.Service implements it.
type TextProvider interface {
	Text(ctx context.Context, header string) (i18n.Tree, error)
}

// LanguageConfig configures the Language middleware.
type LanguageConfig struct {
	Logger       *slog.Logger
	ErrorHandler ErrorHandler
	Extractor    Extractor
}

// LanguageOption configures LanguageConfig.
type LanguageOption func(*LanguageConfig)

// WithLanguageExtractor sets where the preference header is read from.
func WithLanguageExtractor(sources ...Source) LanguageOption {
	return func(cfg *LanguageConfig) {
		cfg.Extractor = NewExtractor(sources...)
	}
}

// WithLanguageLogger sets the logger resolution failures are reported to.
func WithLanguageLogger(l *slog.Logger) LanguageOption {
	return func(cfg *LanguageConfig) {
		cfg.Logger = l
	}
}

// WithLanguageErrorHandler sets how resolution failures are answered.
func WithLanguageErrorHandler(h ErrorHandler) LanguageOption {
	return func(cfg *LanguageConfig) {
		cfg.ErrorHandler = h
	}
}

// DefaultLanguageExtractor reads the "lang" query parameter, then the "lang"
// cookie, then the Accept-Language header.
func DefaultLanguageExtractor() Extractor {
	return NewExtractor(
		FromQuery("lang"),
		FromCookie("lang"),
		FromHeader("Accept-Language"),
	)
}

// Language returns middleware that resolves the request's text tree and
// stores it, with the preference header it came from, in the request
// context. Responses vary on Accept-Language.
//
// A source that cannot be loaded is answered with 503; other failures with
// the status StatusOf reports.
func Language(svc TextProvider, opts ...LanguageOption) func(http.Handler) http.Handler {
	cfg := &LanguageConfig{
		Logger:       slog.Default(),
		ErrorHandler: DefaultErrorHandler,
		Extractor:    DefaultLanguageExtractor(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header, _ := cfg.Extractor.Extract(r)

			tree, err := svc.Text(r.Context(), header)
			if err != nil {
				if errors.Is(err, polyglot.ErrSourceLoad) || errors.Is(err, polyglot.ErrNoSourceLocation) {
					err = &HTTPError{Status: http.StatusServiceUnavailable, Err: err}
				}
				cfg.Logger.ErrorContext(r.Context(), "failed to resolve language text",
					slog.String("header", header),
					slog.Any("error", err),
				)
				cfg.ErrorHandler(w, r, err)
				return
			}

			w.Header().Add("Vary", "Accept-Language")

			ctx := context.WithValue(r.Context(), languageKey{}, header)
			ctx = context.WithValue(ctx, textKey{}, tree)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TextFromContext returns the tree stored by Language.
func TextFromContext(ctx context.Context) (i18n.Tree, bool) {
	tree, ok := ctx.Value(textKey{}).(i18n.Tree)
	return tree, ok
}

// LanguageFromContext returns the preference header Language resolved, or an
// empty string.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(languageKey{}).(string); ok {
		return v
	}
	return ""
}

// LanguageExtractor returns a ContextExtractor that adds "accept_language"
// to log entries written with the request context.
func LanguageExtractor() logger.ContextExtractor {
	return logger.StringExtractor(languageKey{}, "accept_language")
}

var _ TextProvider = (*polyglot.Service)(nil)
