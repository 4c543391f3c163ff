package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/middlewares"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
)

// ChainResponse is the body of GET /v1/chain.
type ChainResponse struct {
	Header string   `json:"header"`
	Chain  []string `json:"chain"`
}

// CacheResponse is the body of GET /v1/cache.
type CacheResponse struct {
	Source  string   `json:"source"`
	Headers []string `json:"headers"`
	Size    int      `json:"size"`
	Loaded  bool     `json:"loaded"`
}

// StatusResponse acknowledges a command.
type StatusResponse struct {
	Status string `json:"status"`
}

var errUnknownPath = errors.New("no text at path")

// handleText answers with the request's tree, or the part of it named by the
// dotted "path" query parameter.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	tree, _ := middlewares.TextFromContext(r.Context())
	header := middlewares.LanguageFromContext(r.Context())

	if tag := contentLanguage(s.svc.Chain(header)); tag != "" {
		w.Header().Set("Content-Language", tag)
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		middlewares.WriteJSON(w, http.StatusOK, tree)
		return
	}

	segments := strings.Split(path, ".")
	if text, ok := tree.Lookup(segments...); ok {
		middlewares.WriteJSON(w, http.StatusOK, text)
		return
	}
	if sub, ok := tree.Subtree(segments...); ok {
		middlewares.WriteJSON(w, http.StatusOK, sub)
		return
	}

	middlewares.DefaultErrorHandler(w, r, &middlewares.HTTPError{
		Status: http.StatusNotFound,
		Err:    errUnknownPath,
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	header, _ := middlewares.DefaultLanguageExtractor().Extract(r)
	middlewares.WriteJSON(w, http.StatusOK, ChainResponse{
		Header: header,
		Chain:  s.svc.Chain(header),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.svc.Reset()
	s.logger.InfoContext(r.Context(), "language source reset requested")
	middlewares.WriteJSON(w, http.StatusAccepted, StatusResponse{Status: "reset"})
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, _ *http.Request) {
	headers := s.svc.CachedHeaders()
	middlewares.WriteJSON(w, http.StatusOK, CacheResponse{
		Source:  s.svc.SourceLocation(),
		Headers: headers,
		Size:    len(headers),
		Loaded:  s.svc.Loaded(),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearCache(r.Context()); err != nil {
		if errors.Is(err, polyglot.ErrClosed) {
			err = &middlewares.HTTPError{Status: http.StatusServiceUnavailable, Err: err}
		}
		s.logger.ErrorContext(r.Context(), "failed to clear cache", "error", err)
		middlewares.DefaultErrorHandler(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentLanguage returns the canonical form of the first tag in chain that
// is a registered language, skipping the "all" pseudo tag.
func contentLanguage(chain []string) string {
	for _, tag := range chain {
		if tag == i18n.TagAll {
			continue
		}
		if t, err := language.Parse(tag); err == nil {
			return t.String()
		}
	}
	return ""
}
