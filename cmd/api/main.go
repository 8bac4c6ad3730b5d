// Package main is the entry point for the compliance API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fleetcarbon/compliance-backend/internal/app"
	"github.com/fleetcarbon/compliance-backend/internal/config"
	"github.com/fleetcarbon/compliance-backend/internal/handler"
	"github.com/fleetcarbon/compliance-backend/internal/middleware"
	"github.com/fleetcarbon/compliance-backend/openapi"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Dependencies -----------------------------------------------------
	a, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// --- Router -----------------------------------------------------------
	// RequestID → RealIP → SlogLogger → Metrics → CORS → MaxBodySize → Recoverer.
	// Recoverer sits innermost so the logger and metrics see the 500 it writes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetricsHandler(a.Metrics))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(chimiddleware.Recoverer)

	handler.NewServer(a.Services(openapi.Spec), logger).Register(r)

	// --- HTTP Server ------------------------------------------------------
	// Detection on a large fleet can take several seconds, hence the longer
	// write timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
