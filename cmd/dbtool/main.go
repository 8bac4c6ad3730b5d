// Package main manages the database schema and demo data.
//
//	dbtool            apply all pending migrations
//	dbtool -seed      migrate, then load the Nordic Transport AS demo dataset
//	dbtool -reset     roll every migration back (destroys all data)
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/fleetcarbon/compliance-backend/internal/app"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
	"github.com/fleetcarbon/compliance-backend/migrations"
)

func main() {
	seedFlag := flag.Bool("seed", false, "load the demo dataset after migrating")
	resetFlag := flag.Bool("reset", false, "roll back all migrations and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	logger := app.NewLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, dsn, *resetFlag, *seedFlag); err != nil {
		slog.Error("dbtool failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn string, reset, seed bool) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if reset {
		results, err := provider.DownTo(ctx, 0)
		logResults("rolled back", results)
		return err
	}

	results, err := provider.Up(ctx)
	logResults("applied", results)
	if err != nil {
		return err
	}
	if !seed {
		return nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()
	return seedDemo(ctx, pool, time.Now().UTC())
}

func logResults(verb string, results []*goose.MigrationResult) {
	for _, r := range results {
		slog.Info("migration "+verb, "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	if len(results) == 0 {
		slog.Info("schema already up to date")
	}
}

// seedDemo loads the demo dataset in one transaction. A second run finds the
// demo registrations taken and leaves the database untouched.
func seedDemo(ctx context.Context, pool *pgxpool.Pool, today time.Time) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := seeder{
		companies: repo.NewCompanyRepo(tx),
		vehicles:  repo.NewVehicleRepo(tx),
		trips:     repo.NewTripRepo(tx),
		deadlines: repo.NewDeadlineRepo(tx),
	}
	sum, err := s.load(ctx, today)
	if errors.Is(err, domain.ErrConflict) {
		slog.Info("demo data already present, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	slog.Info("demo data loaded",
		"company_id", sum.companyID,
		"vehicles", sum.vehicles,
		"trips", sum.trips,
		"deadlines", sum.deadlines,
		"total_emissions_kg", sum.totalKg.String(),
	)
	return nil
}
