package polyglot

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/storage"
)

// Loader produces a translation source from a location.
type Loader interface {
	Load(ctx context.Context, location string) (*i18n.Source, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, location string) (*i18n.Source, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, location string) (*i18n.Source, error) {
	return f(ctx, location)
}

// Opener opens a location for reading. *storage.Mux implements it.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// DefaultMaxSourceSize bounds how much a StorageLoader reads from one source.
const DefaultMaxSourceSize = 32 << 20

// StorageLoader reads sources through an Opener and decodes them as YAML or
// JSON.
type StorageLoader struct {
	opener  Opener
	maxSize int64
}

// NewStorageLoader creates a loader reading through opener. A nil opener
// reads local files only.
func NewStorageLoader(opener Opener) *StorageLoader {
	if opener == nil {
		mux := storage.NewMux()
		mux.Handle(storage.SchemeFile, storage.NewFile(""))
		opener = mux
	}
	return &StorageLoader{opener: opener, maxSize: DefaultMaxSourceSize}
}

// Load opens and decodes the source at location. Every failure wraps
// ErrSourceLoad together with its cause.
func (l *StorageLoader) Load(ctx context.Context, location string) (*i18n.Source, error) {
	rc, err := l.opener.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrSourceLoad, location, err)
	}
	defer rc.Close()

	src, err := i18n.DecodeReader(io.LimitReader(rc, l.maxSize))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrSourceLoad, location, err)
	}
	return src, nil
}

var _ Loader = (*StorageLoader)(nil)
