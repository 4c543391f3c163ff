// Package polyglot serves localized text trees for Accept-Language style
// preference headers.
//
// A Service loads a hierarchical translation source once, resolves each
// distinct header into a nested tree of strings and keeps the result in a
// size-bounded cache:
//
//	svc, err := polyglot.New(
//	    polyglot.WithSourceLocation("s3://assets/language.yaml"),
//	    polyglot.WithLoader(polyglot.NewStorageLoader(mux)),
//	    polyglot.WithMaxCacheSize(1000),
//	    polyglot.WithMinCacheSize(800),
//	)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	tree, err := svc.Text(ctx, "fr-ca, en-us;q=0.5")
//	if err != nil {
//	    // errors.Is(err, polyglot.ErrSourceLoad)
//	}
//	greeting := tree.Get("global.topic1.text_hi")
//
// # Loading
//
// The source is loaded on first use. Concurrent first callers share a single
// load and each of them stops waiting when its own context is done. Reset and
// SetSourceLocation discard the source; the next Text call loads it again and
// starts with an empty cache. A load that finishes after a Reset is handed to
// the callers that waited for it but is not kept.
//
// # Caching
//
// Trees are cached under the sanitized header. Once the cache holds more than
// the maximum size, a purge deferred by the purge window keeps the most
// recently used headers, as many as the minimum size allows. Bursts of new
// headers share one purge.
//
// WithSharedCache adds a Redis level shared between processes. Its keys are
// namespaced by the source version.
//
// Trees returned by Text are shared and must be treated as read-only.
package polyglot
