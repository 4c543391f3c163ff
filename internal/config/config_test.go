package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/polyglot/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "language.yaml", cfg.Source)
	assert.Zero(t, cfg.CacheMax)
	assert.Zero(t, cfg.CacheMin)
	assert.Equal(t, 10*time.Millisecond, cfg.PurgeWindow)
	assert.Equal(t, time.Hour, cfg.SharedCacheTTL)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "translation_sources", cfg.Database.SourceTable)
	assert.Equal(t, slog.LevelInfo, cfg.Logger.Level)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("POLYGLOT_ADDR", ":9000")
	t.Setenv("POLYGLOT_SOURCE", "s3://assets/language.yaml")
	t.Setenv("POLYGLOT_CACHE_MAX", "6")
	t.Setenv("POLYGLOT_CACHE_MIN", "4")
	t.Setenv("POLYGLOT_PURGE_WINDOW", "50ms")
	t.Setenv("POLYGLOT_RELOAD_SCHEDULE", "*/5 * * * *")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "s3://assets/language.yaml", cfg.Source)
	assert.Equal(t, 6, cfg.CacheMax)
	assert.Equal(t, 4, cfg.CacheMin)
	assert.Equal(t, 50*time.Millisecond, cfg.PurgeWindow)
	assert.Equal(t, "*/5 * * * *", cfg.ReloadSchedule)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, slog.LevelDebug, cfg.Logger.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{name: "negative max", key: "POLYGLOT_CACHE_MAX", value: "-1", want: config.ErrInvalidConfig},
		{name: "negative min", key: "POLYGLOT_CACHE_MIN", value: "-4", want: config.ErrInvalidConfig},
		{name: "non-integer size", key: "POLYGLOT_CACHE_MAX", value: "six", want: config.ErrParsingConfig},
		{name: "bad duration", key: "POLYGLOT_PURGE_WINDOW", value: "soon", want: config.ErrParsingConfig},
		{name: "bad schedule", key: "POLYGLOT_RELOAD_SCHEDULE", value: "every tuesday", want: config.ErrInvalidConfig},
		{name: "blank source", key: "POLYGLOT_SOURCE", value: "  ", want: config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Parse()
			require.ErrorIs(t, err, tt.want)
		})
	}
}
