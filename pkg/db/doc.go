// Package db connects to PostgreSQL and migrates the translation source table.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with startup retries and a
// readiness check, and applies migrations with [github.com/pressly/goose/v3].
//
// # Configuration
//
// Settings are loaded from environment variables:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (empty disables pg:// sources)
//	POLYGLOT_SOURCE_TABLE       - Source table name (default: translation_sources)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: polyglot_migrations)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 4)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 0)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 2s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, logger); err != nil {
//		return err
//	}
//
//	mux.Handle(storage.SchemePostgres, storage.NewPostgres(pool, cfg.SourceTable))
//
// [Healthcheck] returns a ping closure for readiness endpoints.
//
// # Error Handling
//
//   - [ErrFailedToParseDBConfig]: invalid connection string
//   - [ErrFailedToOpenDBConnection]: connection failed after all retries
//   - [ErrHealthcheckFailed]: ping failed
//   - [ErrSetDialect], [ErrApplyMigrations]: migration failures
//
// Errors are wrapped using [errors.Join] to preserve the original error.
package db
