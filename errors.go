package polyglot

import "errors"

var (
	// ErrSourceLoad is returned when the translation source cannot be read or
	// parsed. The underlying cause is wrapped as well.
	ErrSourceLoad = errors.New("polyglot: failed to load language source")

	// ErrNoSourceLocation is returned when text is requested before a source
	// location has been configured.
	ErrNoSourceLocation = errors.New("polyglot: no language source location configured")

	// ErrInvalidCacheSize is returned for negative cache bounds.
	ErrInvalidCacheSize = errors.New("polyglot: invalid cache size")

	// ErrClosed is returned by operations on a closed Service.
	ErrClosed = errors.New("polyglot: service closed")
)
