// Package testutil provides shared helpers for integration tests against
// Postgres. Every helper skips the calling test when TEST_DATABASE_URL is
// unset, so `go test ./...` stays green on machines without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/fleetcarbon/compliance-backend/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// DSN returns the integration database URL, or "" when none is configured.
func DSN() string {
	return os.Getenv(DSNEnv)
}

// NewPool opens a pool on the integration database and closes it when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back when the test finishes.
// Repos accept a pgx.Tx in place of the pool, so every test gets an isolated
// view of the schema with no cleanup code. Nested Begin calls inside the
// repos become savepoints.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := NewPool(t)

	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a database/sql handle for goose, which does not speak pgx
// natively. The handle is closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// NewMigrator returns a goose provider over the embedded migrations.
func NewMigrator(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
}

// MigrateUp applies every pending migration to the database at dsn. It is
// meant for TestMain, where no *testing.T exists.
func MigrateUp(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("testutil.MigrateUp: open: %w", err)
	}
	defer db.Close()

	provider, err := NewMigrator(db)
	if err != nil {
		return fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	return nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := DSN()
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
