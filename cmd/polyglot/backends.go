package main

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/polyglot/internal/config"
	"github.com/dmitrymomot/polyglot/pkg/db"
	"github.com/dmitrymomot/polyglot/pkg/health"
	"github.com/dmitrymomot/polyglot/pkg/storage"
)

// backends holds the storage routes for source locations and the resources
// they opened.
type backends struct {
	mux    *storage.Mux
	checks map[string]health.CheckFunc
	hooks  []func(context.Context) error
}

// openBackends registers the file backend, plus S3 and Postgres when they are
// configured.
func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{
		mux:    storage.NewMux(),
		checks: make(map[string]health.CheckFunc),
	}
	b.mux.Handle(storage.SchemeFile, storage.NewFile(""))

	if cfg.S3.Enabled() {
		s3, err := storage.NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		b.mux.Handle(storage.SchemeS3, s3)
		log.Debug("s3 source backend enabled", slog.String("endpoint", cfg.S3.Endpoint))
	}

	if cfg.Database.Enabled() {
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.mux.Handle(storage.SchemePostgres, storage.NewPostgres(pool, cfg.Database.SourceTable))
		b.checks["postgres"] = db.Healthcheck(pool)
		b.hooks = append(b.hooks, db.Shutdown(pool))
		log.Debug("postgres source backend enabled", slog.String("table", cfg.Database.SourceTable))
	}

	return b, nil
}

// close runs the cleanup hooks directly, for paths that never start a server.
func (b *backends) close(ctx context.Context) {
	for _, hook := range b.hooks {
		_ = hook(ctx)
	}
}
