package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot/pkg/cache"
)

type tree map[string]any

func TestRedis_Get(t *testing.T) {
	t.Parallel()

	t.Run("decodes stored value", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil, cache.WithPrefix("polyglot"))

		mock.ExpectGet("polyglot:fr").SetVal(`{"global":{"text_hi":"Salut"}}`)

		v, err := c.Get(context.Background(), "fr")
		require.NoError(t, err)
		require.Equal(t, tree{"global": map[string]any{"text_hi": "Salut"}}, v)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps redis nil to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil, cache.WithPrefix("polyglot"))

		mock.ExpectGet("polyglot:fr").RedisNil()

		_, err := c.Get(context.Background(), "fr")
		require.ErrorIs(t, err, cache.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports corrupt payload", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil, cache.WithPrefix("polyglot"))

		mock.ExpectGet("polyglot:fr").SetVal("not json")

		_, err := c.Get(context.Background(), "fr")
		require.ErrorIs(t, err, cache.ErrUnmarshal)
	})

	t.Run("passes through connection errors", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil)

		boom := errors.New("connection refused")
		mock.ExpectGet("fr").SetErr(boom)

		_, err := c.Get(context.Background(), "fr")
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestRedis_Set(t *testing.T) {
	t.Parallel()

	t.Run("stores with configured ttl", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil,
			cache.WithPrefix("polyglot"),
			cache.WithTTL(30*time.Minute),
		)

		mock.ExpectSet("polyglot:fr", []byte(`{"a":"b"}`), 30*time.Minute).SetVal("OK")

		require.NoError(t, c.Set(context.Background(), "fr", tree{"a": "b"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative ttl stores without expiration", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil, cache.WithTTL(-1))

		mock.ExpectSet("fr", []byte(`{"a":"b"}`), 0).SetVal("OK")

		require.NoError(t, c.Set(context.Background(), "fr", tree{"a": "b"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedis_Namespace(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	base := cache.NewRedis[tree](db, nil, cache.WithPrefix("polyglot"))
	c := base.Namespace("v1")

	require.Same(t, base, base.Namespace(""))

	mock.ExpectGet("polyglot:v1:fr").RedisNil()
	mock.ExpectExists("polyglot:v1:fr").SetVal(1)
	mock.ExpectDel("polyglot:v1:fr").SetVal(1)

	ctx := context.Background()
	_, err := c.Get(ctx, "fr")
	require.ErrorIs(t, err, cache.ErrNotFound)

	ok, err := c.Has(ctx, "fr")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "fr"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Clear(t *testing.T) {
	t.Parallel()

	t.Run("scans and deletes prefixed keys", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil, cache.WithPrefix("polyglot"))

		mock.ExpectScan(0, "polyglot:*", 100).SetVal([]string{"polyglot:a", "polyglot:b"}, 7)
		mock.ExpectDel("polyglot:a", "polyglot:b").SetVal(2)
		mock.ExpectScan(7, "polyglot:*", 100).SetVal([]string{}, 0)

		require.NoError(t, c.Clear(context.Background()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("flushes database without prefix", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		c := cache.NewRedis[tree](db, nil)

		mock.ExpectFlushDB().SetVal("OK")

		require.NoError(t, c.Clear(context.Background()))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
