// Package middlewares provides net/http middleware for polyglot servers.
//
// Every middleware has the func(http.Handler) http.Handler shape, so it
// plugs into chi or any other router:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.Logger(log),
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	    middlewares.Timeout(5*time.Second),
//	)
//
// # Request ID
//
// RequestID reuses an upstream ID from X-Request-ID (or the configured
// headers) or generates a UUID. Use RequestIDExtractor with logger.New to add
// request_id to every log entry written with the request context.
//
// # Recover and Timeout
//
// Recover turns panics into a PanicError and Timeout turns an expired request
// deadline into a TimeoutError. Both are answered by an ErrorHandler, by
// default a JSON body with status 500 and 504 respectively.
//
// # Language
//
// Language resolves the request's text tree through a TextProvider such as
// *polyglot.Service and stores it in the request context:
//
//	r.With(middlewares.Language(svc)).Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    tree, _ := middlewares.TextFromContext(r.Context())
//	    fmt.Fprint(w, tree.Get("global.topic1.text_hi"))
//	})
//
// The preference header is read from the "lang" query parameter, the "lang"
// cookie or Accept-Language, in that order.
package middlewares
