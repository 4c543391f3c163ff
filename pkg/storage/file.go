package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File reads and writes sources on the local filesystem.
// Relative paths are resolved against the base directory, if one is set.
type File struct {
	base string
}

// NewFile creates a filesystem backend. An empty base leaves relative paths
// relative to the working directory.
func NewFile(base string) *File {
	return &File{base: base}
}

// Open opens the file at loc.Path.
func (f *File) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	file, err := os.Open(f.path(loc))
	if err != nil {
		return nil, wrapFSError(err, ErrReadFailed)
	}
	return file, nil
}

// Put atomically replaces the file at loc.Path, creating parent directories.
func (f *File) Put(_ context.Context, loc Location, data []byte) error {
	path := f.path(loc)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapFSError(err, ErrWriteFailed)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".polyglot-*")
	if err != nil {
		return wrapFSError(err, ErrWriteFailed)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return wrapFSError(err, ErrWriteFailed)
	}
	if err := tmp.Close(); err != nil {
		return wrapFSError(err, ErrWriteFailed)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return wrapFSError(err, ErrWriteFailed)
	}
	return nil
}

func (f *File) path(loc Location) string {
	if f.base == "" || filepath.IsAbs(loc.Path) {
		return loc.Path
	}
	return filepath.Join(f.base, loc.Path)
}

func wrapFSError(err error, fallback error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return fmt.Errorf("%w: %v", fallback, err)
	}
}

var _ Storage = (*File)(nil)
