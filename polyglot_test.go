package polyglot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot"
	"github.com/dmitrymomot/polyglot/pkg/cache"
	"github.com/dmitrymomot/polyglot/pkg/i18n"
	"github.com/dmitrymomot/polyglot/pkg/storage"
)

const fixture = "testdata/language.yaml"

func newService(t *testing.T, opts ...polyglot.Option) *polyglot.Service {
	t.Helper()

	svc, err := polyglot.New(append([]polyglot.Option{polyglot.WithSourceLocation(fixture)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func loadFixture(t *testing.T) *i18n.Source {
	t.Helper()

	src, err := i18n.LoadFS(os.DirFS("testdata"), "language.yaml")
	require.NoError(t, err)
	return src
}

// countingLoader loads the fixture and counts calls. If gate is set, each
// load signals started and then waits for gate to close.
type countingLoader struct {
	src     *i18n.Source
	gate    chan struct{}
	started chan struct{}
	calls   atomic.Int32
}

func (l *countingLoader) Load(ctx context.Context, _ string) (*i18n.Source, error) {
	l.calls.Add(1)
	if l.gate != nil {
		l.started <- struct{}{}
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return l.src, nil
}

func TestService_Text(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{
			name:   "exact tag",
			header: "en-us",
			want: map[string]string{
				"global.topic1.text_hi":    "Hi",
				"global.topic1.text_eaten": "Have you eaten?",
			},
		},
		{
			name:   "declaration order with fallback",
			header: "fr, en-us",
			want: map[string]string{
				"global.topic1.text_hi":    "Salut",
				"global.topic1.text_eaten": "Have you eaten?",
			},
		},
		{
			name:   "quality beats declaration order",
			header: "en-us;q=0.5, fr;q=0.9",
			want: map[string]string{
				"global.topic1.text_hi": "Salut",
			},
		},
		{
			name:   "variant",
			header: "zh-tw",
			want: map[string]string{
				"global.topic1.text_hi":    "你好",
				"global.topic1.text_apple": "一個蘋果",
				"global.topic1.text_eaten": "你吃了嗎？",
			},
		},
		{
			name:   "universal fallback",
			header: "xx-xx",
			want: map[string]string{
				"global.topic1.text_universal": "There are no languages",
				"global.topic1.text_apple":     "An apple",
				"global.topic1.text_hi":        "Hi",
			},
		},
		{
			name:   "unknown language",
			header: "xx-nonexistant-language",
			want: map[string]string{
				"global.topic1.text_universal": "There are no languages",
			},
		},
		{
			name:   "empty header",
			header: "",
			want: map[string]string{
				"global.topic2.text_bye":   "Bye",
				"pages.home.title.heading": "Welcome",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := svc.Text(ctx, tt.header)
			require.NoError(t, err)
			for path, want := range tt.want {
				require.Equal(t, want, tree.Get(path), path)
			}
		})
	}
}

func TestService_TextIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Text(ctx, "fr, en-us")
	require.NoError(t, err)
	second, err := svc.Text(ctx, "fr, en-us")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, svc.CacheLen())
}

func TestService_SanitizesHeader(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	tree, err := svc.Text(context.Background(), "fr[].en-us")
	require.NoError(t, err)

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	require.ElementsMatch(t, []string{"global", "pages"}, keys)
	require.Equal(t, []string{"fr-en-us"}, svc.CachedHeaders())
}

func TestService_Chain(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	require.Equal(t,
		[]string{"fr", "en-us", "en", "all", "en", "en-us"},
		svc.Chain("en-us;q=0.5, fr;q=0.9"),
	)
}

func TestService_LoadsOnce(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{
		src:     loadFixture(t),
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := newService(t, polyglot.WithLoader(loader))

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Text(context.Background(), fmt.Sprintf("fr;q=0.%d", i))
			errs <- err
		}()
	}

	<-loader.started
	close(loader.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), loader.calls.Load())
	require.True(t, svc.Loaded())
}

func TestService_Reset(t *testing.T) {
	t.Parallel()

	t.Run("reloads on next call", func(t *testing.T) {
		t.Parallel()

		loader := &countingLoader{src: loadFixture(t)}
		svc := newService(t, polyglot.WithLoader(loader))
		ctx := context.Background()

		_, err := svc.Text(ctx, "fr")
		require.NoError(t, err)
		require.True(t, svc.Loaded())

		svc.Reset()
		require.False(t, svc.Loaded())
		require.Equal(t, 1, svc.CacheLen())

		_, err = svc.Text(ctx, "fr")
		require.NoError(t, err)
		require.Equal(t, int32(2), loader.calls.Load())
		require.True(t, svc.Loaded())
	})

	t.Run("load finishing after reset is not kept", func(t *testing.T) {
		t.Parallel()

		loader := &countingLoader{
			src:     loadFixture(t),
			gate:    make(chan struct{}),
			started: make(chan struct{}, 1),
		}
		svc := newService(t, polyglot.WithLoader(loader))

		type result struct {
			tree i18n.Tree
			err  error
		}
		done := make(chan result, 1)
		go func() {
			tree, err := svc.Text(context.Background(), "fr")
			done <- result{tree, err}
		}()

		<-loader.started
		svc.Reset()
		close(loader.gate)

		res := <-done
		require.NoError(t, res.err)
		require.Equal(t, "Salut", res.tree.Get("global.topic1.text_hi"))
		require.False(t, svc.Loaded())
		require.Zero(t, svc.CacheLen())
	})
}

func TestService_SetSourceLocation(t *testing.T) {
	t.Parallel()

	svc, err := polyglot.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	_, err = svc.Text(context.Background(), "fr")
	require.ErrorIs(t, err, polyglot.ErrNoSourceLocation)

	svc.SetSourceLocation(fixture)
	require.Equal(t, fixture, svc.SourceLocation())

	tree, err := svc.Text(context.Background(), "fr")
	require.NoError(t, err)
	require.Equal(t, "Salut", tree.Get("global.topic1.text_hi"))

	svc.SetSourceLocation("testdata/missing.yaml")
	require.False(t, svc.Loaded())

	_, err = svc.Text(context.Background(), "fr")
	require.ErrorIs(t, err, polyglot.ErrSourceLoad)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_LoadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var calls atomic.Int32
	svc := newService(t, polyglot.WithLoader(polyglot.LoaderFunc(
		func(context.Context, string) (*i18n.Source, error) {
			calls.Add(1)
			return nil, boom
		},
	)))

	_, err := svc.Text(context.Background(), "fr")
	require.ErrorIs(t, err, polyglot.ErrSourceLoad)
	require.ErrorIs(t, err, boom)
	require.False(t, svc.Loaded())

	// Failures are not remembered.
	_, err = svc.Text(context.Background(), "fr")
	require.Error(t, err)
	require.Equal(t, int32(2), calls.Load())

	require.ErrorIs(t, svc.Healthcheck(context.Background()), polyglot.ErrSourceLoad)
}

func TestService_CallerCancellation(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{
		src:     loadFixture(t),
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := newService(t, polyglot.WithLoader(loader))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Text(ctx, "fr")
		done <- err
	}()

	<-loader.started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(loader.gate)
	require.Eventually(t, svc.Loaded, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), loader.calls.Load())
}

func TestService_CacheSize(t *testing.T) {
	t.Parallel()

	t.Run("rejects negative sizes", func(t *testing.T) {
		t.Parallel()

		_, err := polyglot.New(polyglot.WithMaxCacheSize(-1))
		require.ErrorIs(t, err, polyglot.ErrInvalidCacheSize)

		_, err = polyglot.New(polyglot.WithMinCacheSize(-1))
		require.ErrorIs(t, err, polyglot.ErrInvalidCacheSize)

		svc := newService(t)
		err = svc.SetMaxCacheSize(-1)
		require.ErrorIs(t, err, polyglot.ErrInvalidCacheSize)
		require.ErrorIs(t, err, cache.ErrInvalidSize)
		require.ErrorIs(t, svc.SetMinCacheSize(-5), polyglot.ErrInvalidCacheSize)

		require.NoError(t, svc.SetMaxCacheSize(0))
		require.NoError(t, svc.SetMinCacheSize(0))
	})

	t.Run("keeps the most recent headers", func(t *testing.T) {
		t.Parallel()

		svc := newService(t,
			polyglot.WithMaxCacheSize(6),
			polyglot.WithMinCacheSize(4),
			polyglot.WithPurgeWindow(100*time.Millisecond),
		)
		ctx := context.Background()

		headers := make([]string, 8)
		for i := range headers {
			headers[i] = fmt.Sprintf("en-us, xx-xx;q=0.%d", 9-i)
			_, err := svc.Text(ctx, headers[i])
			require.NoError(t, err)
		}
		require.Equal(t, 8, svc.CacheLen())

		require.Eventually(t, func() bool {
			return svc.CacheLen() == 4
		}, 2*time.Second, 10*time.Millisecond)

		require.Equal(t,
			[]string{headers[7], headers[6], headers[5], headers[4]},
			svc.CachedHeaders(),
		)
	})

	t.Run("unbounded by default", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, polyglot.WithPurgeWindow(0))
		for i := range 20 {
			_, err := svc.Text(context.Background(), fmt.Sprintf("fr;q=0.%02d", i))
			require.NoError(t, err)
		}
		require.Equal(t, 20, svc.CacheLen())
	})

	t.Run("lowering the maximum purges", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, polyglot.WithPurgeWindow(0))
		for _, h := range []string{"fr", "de", "zh-tw"} {
			_, err := svc.Text(context.Background(), h)
			require.NoError(t, err)
		}

		require.NoError(t, svc.SetMaxCacheSize(1))
		require.Equal(t, []string{"zh-tw"}, svc.CachedHeaders())
	})
}

func TestService_ClearCache(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Text(ctx, "fr")
	require.NoError(t, err)
	require.Equal(t, 1, svc.CacheLen())

	require.NoError(t, svc.ClearCache(ctx))
	require.Zero(t, svc.CacheLen())
	require.True(t, svc.Loaded())
}

func TestService_SharedCache(t *testing.T) {
	t.Parallel()

	src := loadFixture(t)
	ctx := context.Background()

	t.Run("stores resolved trees", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		shared := cache.NewRedis[i18n.Tree](db, nil, cache.WithPrefix("polyglot"), cache.WithTTL(time.Hour))
		svc := newService(t, polyglot.WithSharedCache(shared))

		key := "polyglot:" + src.Version() + ":fr"
		data, err := json.Marshal(i18n.Resolve(src, i18n.PreferenceChain("fr")))
		require.NoError(t, err)

		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, data, time.Hour).SetVal("OK")

		tree, err := svc.Text(ctx, "fr")
		require.NoError(t, err)
		require.Equal(t, "Salut", tree.Get("global.topic1.text_hi"))

		// Served from memory now.
		_, err = svc.Text(ctx, "fr")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serves trees resolved elsewhere", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		shared := cache.NewRedis[i18n.Tree](db, nil, cache.WithPrefix("polyglot"))
		svc := newService(t, polyglot.WithSharedCache(shared))

		mock.ExpectGet("polyglot:"+src.Version()+":de").
			SetVal(`{"global":{"topic1":{"text_hi":"Hallo"}}}`)

		tree, err := svc.Text(ctx, "de")
		require.NoError(t, err)
		require.Equal(t, "Hallo", tree.Get("global.topic1.text_hi"))
		require.Equal(t, 1, svc.CacheLen())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back when redis fails", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		shared := cache.NewRedis[i18n.Tree](db, nil, cache.WithPrefix("polyglot"))
		svc := newService(t, polyglot.WithSharedCache(shared))

		mock.ExpectGet("polyglot:" + src.Version() + ":fr").SetErr(errors.New("connection refused"))

		tree, err := svc.Text(ctx, "fr")
		require.NoError(t, err)
		require.Equal(t, "Salut", tree.Get("global.topic1.text_hi"))
	})
}

func TestService_Close(t *testing.T) {
	t.Parallel()

	svc, err := polyglot.New(polyglot.WithSourceLocation(fixture))
	require.NoError(t, err)

	_, err = svc.Text(context.Background(), "fr")
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	_, err = svc.Text(context.Background(), "fr")
	require.ErrorIs(t, err, polyglot.ErrClosed)
	require.ErrorIs(t, svc.ClearCache(context.Background()), polyglot.ErrClosed)
	require.False(t, svc.Loaded())
}

func TestSanitizeHeader(t *testing.T) {
	t.Parallel()

	require.Equal(t, "en-us-fr", polyglot.SanitizeHeader("en-us[].fr"))
	require.Equal(t, "fr;q=0.5", polyglot.SanitizeHeader("fr;q=0.5"))
	require.Equal(t, "a-b-c", polyglot.SanitizeHeader("a[].b[].c"))
}
