package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/polyglot/pkg/db"
	"github.com/dmitrymomot/polyglot/pkg/logger"
	"github.com/dmitrymomot/polyglot/pkg/storage"
)

// Config is the daemon configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"POLYGLOT_ADDR" envDefault:":8080"`

	// Source is the translation source location: a file path, s3://bucket/key
	// or pg://name.
	Source string `env:"POLYGLOT_SOURCE" envDefault:"language.yaml"`

	// CacheMax is the number of cached headers before a purge evicts. Zero
	// disables eviction.
	CacheMax int `env:"POLYGLOT_CACHE_MAX" envDefault:"0"`

	// CacheMin is the number of headers a purge keeps. Zero keeps CacheMax.
	CacheMin int `env:"POLYGLOT_CACHE_MIN" envDefault:"0"`

	PurgeWindow time.Duration `env:"POLYGLOT_PURGE_WINDOW" envDefault:"10ms"`
	LoadTimeout time.Duration `env:"POLYGLOT_LOAD_TIMEOUT" envDefault:"30s"`

	// ReloadSchedule is a cron expression; each run makes the next request
	// reload the source. Empty disables scheduled reloads.
	ReloadSchedule string `env:"POLYGLOT_RELOAD_SCHEDULE"`

	RequestTimeout  time.Duration `env:"POLYGLOT_REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"POLYGLOT_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RedisURL enables the shared cache when set.
	RedisURL       string        `env:"REDIS_URL"`
	SharedCacheTTL time.Duration `env:"POLYGLOT_SHARED_CACHE_TTL" envDefault:"1h"`
	SharedPrefix   string        `env:"POLYGLOT_SHARED_CACHE_PREFIX" envDefault:"polyglot"`

	S3       storage.Config
	Database db.Config
	Logger   logger.Config
}

// Load reads a .env file from the working directory, if present, and parses
// the environment into a Config.
func Load() (Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment into a Config and validates it.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if c.CacheMax < 0 {
		errs = append(errs, fmt.Errorf("POLYGLOT_CACHE_MAX must not be negative, got %d", c.CacheMax))
	}
	if c.CacheMin < 0 {
		errs = append(errs, fmt.Errorf("POLYGLOT_CACHE_MIN must not be negative, got %d", c.CacheMin))
	}
	if strings.TrimSpace(c.Source) == "" {
		errs = append(errs, errors.New("POLYGLOT_SOURCE must not be empty"))
	}
	if c.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.ReloadSchedule); err != nil {
			errs = append(errs, fmt.Errorf("POLYGLOT_RELOAD_SCHEDULE: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
