package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Location schemes understood by the bundled backends.
const (
	SchemeFile     = "file"
	SchemeS3       = "s3"
	SchemePostgres = "pg"
)

// Reader opens translation sources.
type Reader interface {
	// Open returns the content stored at loc.
	// The caller is responsible for closing the returned reader.
	// Returns ErrNotFound if nothing is stored there.
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)
}

// Writer stores translation sources.
type Writer interface {
	// Put replaces the content stored at loc.
	Put(ctx context.Context, loc Location, data []byte) error
}

// Storage is a backend that can both read and write.
type Storage interface {
	Reader
	Writer
}

// Location identifies a stored source.
//
//	/srv/i18n/language.yaml          {Scheme: file, Path: /srv/i18n/language.yaml}
//	file:///srv/i18n/language.yaml   {Scheme: file, Path: /srv/i18n/language.yaml}
//	s3://bucket/i18n/language.yaml   {Scheme: s3, Host: bucket, Path: i18n/language.yaml}
//	pg://website                     {Scheme: pg, Host: website}
type Location struct {
	Scheme string
	Host   string
	Path   string
}

// ParseLocation splits a location string. Strings without a scheme are file
// paths.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, ErrInvalidLocation
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Path: s}, nil
	}

	scheme = strings.ToLower(scheme)
	if scheme == SchemeFile {
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
		}
		return Location{Scheme: scheme, Path: rest}, nil
	}

	host, path, _ := strings.Cut(rest, "/")
	if scheme == "" || host == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
	}
	return Location{Scheme: scheme, Host: host, Path: path}, nil
}

// String formats the location back into its textual form.
func (l Location) String() string {
	switch {
	case l.Scheme == SchemeFile:
		return l.Path
	case l.Path == "":
		return l.Scheme + "://" + l.Host
	default:
		return l.Scheme + "://" + l.Host + "/" + l.Path
	}
}

// Mux routes locations to the backend registered for their scheme.
type Mux struct {
	backends map[string]Reader
	mu       sync.RWMutex
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{backends: make(map[string]Reader)}
}

// Handle registers r for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme string, r Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[strings.ToLower(scheme)] = r
}

// Open parses location and opens it with the matching backend.
func (m *Mux) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	loc, r, err := m.route(location)
	if err != nil {
		return nil, err
	}
	return r.Open(ctx, loc)
}

// Put parses location and writes data through the matching backend.
// Returns ErrReadOnly if that backend cannot store data.
func (m *Mux) Put(ctx context.Context, location string, data []byte) error {
	loc, r, err := m.route(location)
	if err != nil {
		return err
	}
	w, ok := r.(Writer)
	if !ok {
		return fmt.Errorf("%w: %s", ErrReadOnly, loc.Scheme)
	}
	return w.Put(ctx, loc, data)
}

func (m *Mux) route(location string) (Location, Reader, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return Location{}, nil, err
	}

	m.mu.RLock()
	r, ok := m.backends[loc.Scheme]
	m.mu.RUnlock()
	if !ok {
		return Location{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, loc.Scheme)
	}
	return loc, r, nil
}
