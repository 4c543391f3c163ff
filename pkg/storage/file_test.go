package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot/pkg/storage"
)

func TestFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put then open relative to base", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		f := storage.NewFile(dir)
		loc := storage.Location{Scheme: storage.SchemeFile, Path: "nested/language.yaml"}

		require.NoError(t, f.Put(ctx, loc, []byte("global: {}")))
		require.NoError(t, f.Put(ctx, loc, []byte("pages: {}")))

		rc, err := f.Open(ctx, loc)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "pages: {}", string(data))

		entries, err := os.ReadDir(filepath.Join(dir, "nested"))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temporary files must be cleaned up")
	})

	t.Run("absolute path ignores base", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "language.yaml")
		require.NoError(t, os.WriteFile(path, []byte("x: []"), 0o600))

		f := storage.NewFile("/nonexistent-base")
		rc, err := f.Open(ctx, storage.Location{Scheme: storage.SchemeFile, Path: path})
		require.NoError(t, err)
		require.NoError(t, rc.Close())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		f := storage.NewFile(t.TempDir())
		_, err := f.Open(ctx, storage.Location{Scheme: storage.SchemeFile, Path: "xx-nonexistent.yaml"})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
