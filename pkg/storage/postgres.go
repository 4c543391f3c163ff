package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultSourceTable is the table created by the bundled migrations.
const DefaultSourceTable = "translation_sources"

// Querier is the subset of pgxpool.Pool used by the Postgres backend.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres reads and writes sources stored as rows of (name, body).
// Locations have the form pg://name.
type Postgres struct {
	db        Querier
	selectSQL string
	upsertSQL string
}

// NewPostgres creates a Postgres backend reading from table. An empty table
// name selects DefaultSourceTable.
func NewPostgres(db Querier, table string) *Postgres {
	if table == "" {
		table = DefaultSourceTable
	}
	ident := pgx.Identifier{table}.Sanitize()

	return &Postgres{
		db:        db,
		selectSQL: "SELECT body FROM " + ident + " WHERE name = $1",
		upsertSQL: "INSERT INTO " + ident + " (name, body, updated_at) VALUES ($1, $2, now()) " +
			"ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()",
	}
}

// Open loads the body of the source named by loc.Host.
func (p *Postgres) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	if loc.Host == "" {
		return nil, ErrInvalidLocation
	}

	var body []byte
	if err := p.db.QueryRow(ctx, p.selectSQL, loc.Host).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return io.NopCloser(bytes.NewReader(body)), nil
}

// Put inserts or replaces the source named by loc.Host.
func (p *Postgres) Put(ctx context.Context, loc Location, data []byte) error {
	if loc.Host == "" {
		return ErrInvalidLocation
	}
	if _, err := p.db.Exec(ctx, p.upsertSQL, loc.Host, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

var _ Storage = (*Postgres)(nil)
