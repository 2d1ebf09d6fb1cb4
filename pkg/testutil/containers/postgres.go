//go:build integration

// Package containers manages throwaway infrastructure for integration tests.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema is the subset of the production schema exercised by store
// integration tests.
const schema = `
CREATE TABLE IF NOT EXISTS centers (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS centers_name_unique ON centers (LOWER(name));

CREATE TABLE IF NOT EXISTS center_locations (
	center_id    UUID PRIMARY KEY REFERENCES centers (id),
	region       TEXT NOT NULL DEFAULT '',
	province     TEXT NOT NULL,
	municipality TEXT NOT NULL,
	barangay     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS age_bands (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	range_text TEXT NOT NULL,
	position   INT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	timestamp  TIMESTAMPTZ NOT NULL,
	action     TEXT NOT NULL,
	actor_id   UUID NOT NULL,
	role       TEXT NOT NULL,
	center_id  UUID,
	subject    TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_timestamp ON audit_events (timestamp DESC);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with an open
// connection pool and the test schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// StartPostgres launches a PostgreSQL container and applies the test schema.
// The container and pool are cleaned up with the test.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cdc_test"),
		tcpostgres.WithUsername("cdc"),
		tcpostgres.WithPassword("cdc"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres pool: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
