// Package main runs one fleet-wide compliance sweep and exits: anomaly
// detection for every company, then deadline evaluation. Schedule it from cron.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fleetcarbon/compliance-backend/internal/app"
	"github.com/fleetcarbon/compliance-backend/internal/config"
)

// sweepTimeout bounds a whole run so a stuck database cannot pile up cron jobs.
const sweepTimeout = 30 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.Sweeper.Run(ctx)
	if err != nil {
		slog.Error("sweep aborted", "error", err)
		a.Close()
		os.Exit(1)
	}
	if res.Failed > 0 {
		a.Close()
		os.Exit(2)
	}
}
