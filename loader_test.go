package polyglot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/storage"
)

func TestStorageLoader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reads local files by default", func(t *testing.T) {
		t.Parallel()

		src, err := polyglot.NewStorageLoader(nil).Load(ctx, fixture)
		require.NoError(t, err)
		require.Equal(t, loadFixture(t).Version(), src.Version())
	})

	t.Run("routes through the opener", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lang.json"),
			[]byte(`{"site":{"nav":[{"name":"home","fr":"Accueil"}]}}`), 0o600))

		mux := storage.NewMux()
		mux.Handle(storage.SchemeFile, storage.NewFile(dir))

		src, err := polyglot.NewStorageLoader(mux).Load(ctx, "file://lang.json")
		require.NoError(t, err)

		tree := i18n.Resolve(src, i18n.PreferenceChain("fr"))
		require.Equal(t, "Accueil", tree.Get("site.nav.home"))
	})

	t.Run("wraps missing sources", func(t *testing.T) {
		t.Parallel()

		_, err := polyglot.NewStorageLoader(nil).Load(ctx, "testdata/missing.yaml")
		require.ErrorIs(t, err, polyglot.ErrSourceLoad)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("wraps parse failures", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("global: [unclosed"), 0o600))

		_, err := polyglot.NewStorageLoader(nil).Load(ctx, path)
		require.ErrorIs(t, err, polyglot.ErrSourceLoad)
		require.ErrorIs(t, err, i18n.ErrInvalidSource)
	})

	t.Run("rejects unknown schemes", func(t *testing.T) {
		t.Parallel()

		_, err := polyglot.NewStorageLoader(nil).Load(ctx, "s3://bucket/language.yaml")
		require.ErrorIs(t, err, polyglot.ErrSourceLoad)
		require.ErrorIs(t, err, storage.ErrUnsupportedScheme)
	})
}
