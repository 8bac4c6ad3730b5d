// Package app is the composition root shared by cmd/api and cmd/sweep.
// It opens the database and optional Redis connections, registers metrics and
// wires repos into services. No business logic belongs here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/fleetcarbon/compliance-backend/internal/config"
	"github.com/fleetcarbon/compliance-backend/internal/handler"
	"github.com/fleetcarbon/compliance-backend/internal/lock"
	"github.com/fleetcarbon/compliance-backend/internal/metrics"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

// lockPrefix namespaces detection locks in a shared Redis.
const lockPrefix = "fleetcarbon:lock:"

// App holds the live connections and the wired services.
type App struct {
	Config   config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Companies *service.CompanyService
	Vehicles  *service.VehicleService
	Trips     *service.TripService
	Analytics *service.AnalyticsService
	Detection *service.DetectionService
	Deadlines *service.DeadlineService
	Alerts    *service.AlertService
	Dashboard *service.DashboardService
	Sweeper   *service.Sweeper
}

// NewLogger returns a JSON logger on stdout. Unknown levels fall back to info.
func NewLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

// Open connects to Postgres (and Redis when configured), verifies both are
// reachable and wires every service. Call Close when done.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	// pgxpool.New does not open connections; the Ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.Open: ping database: %w", err)
	}
	log.Info("database connection established")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("app.Open: ping redis: %w", err)
		}
		log.Info("redis connection established", "addr", cfg.RedisAddr)
	}

	a := Wire(cfg, pool, rdb, clockwork.NewRealClock(), log)
	a.Pool = pool
	a.Redis = rdb
	return a, nil
}

// Wire builds the registry, metrics and services on top of an already open
// database handle. A nil rdb disables the cross-process detection lock.
func Wire(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, clock clockwork.Clock, log *slog.Logger) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	companies := repo.NewCompanyRepo(pool)
	vehicles := repo.NewVehicleRepo(pool)
	trips := repo.NewTripRepo(pool)
	deadlines := repo.NewDeadlineRepo(pool)
	alerts := repo.NewAlertRepo(pool)

	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  m,

		Companies: service.NewCompanyService(companies, trips),
		Vehicles:  service.NewVehicleService(vehicles, companies),
		Trips:     service.NewTripService(trips, vehicles, companies),
		Analytics: service.NewAnalyticsService(companies, trips, cfg.AnnualThresholdKg),
		Detection: service.NewDetectionService(service.DetectionDeps{
			Companies: companies,
			Trips:     trips,
			Alerts:    alerts,
			Locker:    newLocker(rdb),
			Clock:     clock,
			Metrics:   m,
			Log:       log,
			Seed:      cfg.DetectionSeed,
		}),
		Deadlines: service.NewDeadlineService(deadlines, companies, alerts, clock, m, log),
		Alerts:    service.NewAlertService(alerts, clock),
		Dashboard: service.NewDashboardService(companies, trips, alerts, cfg.PenaltyThresholdKg),
	}
	a.Sweeper = service.NewSweeper(companies, a.Detection, a.Deadlines, cfg.SweepWorkers, log)
	return a
}

// Services adapts the wired services to the handler's dependency set.
func (a *App) Services(openAPIDoc []byte) handler.Services {
	return handler.Services{
		Companies:  a.Companies,
		Vehicles:   a.Vehicles,
		Trips:      a.Trips,
		Analytics:  a.Analytics,
		Detection:  a.Detection,
		Deadlines:  a.Deadlines,
		Alerts:     a.Alerts,
		Dashboard:  a.Dashboard,
		Gatherer:   a.Registry,
		OpenAPIDoc: openAPIDoc,
	}
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("closing redis", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func newLocker(rdb *redis.Client) lock.Locker {
	if rdb == nil {
		return lock.NopLocker{}
	}
	return lock.NewRedisLocker(rdb, lockPrefix)
}
