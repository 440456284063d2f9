// Package main runs the pricefolio HTTP API: purchase lots, live quotes with
// provider fallback, currency normalization and portfolio analytics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/di"
	"github.com/pricefolio/pricefolio/internal/scheduler"
	"github.com/pricefolio/pricefolio/internal/server"
	"github.com/pricefolio/pricefolio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
		App:    "pricefolio",
	})

	log.Info().
		Str("reporting_currency", cfg.ReportingCurrency).
		Strs("price_providers", cfg.Providers.PriceProviders).
		Strs("rate_providers", cfg.Providers.RateProviders).
		Msg("Starting pricefolio")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(log)

	container, jobs, err := di.Wire(ctx, cfg, sched, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
		Scheduler: sched,
		Jobs:      []scheduler.Job{jobs.RateSync, jobs.Cleanup, jobs.WALCheckpoints, jobs.Databases},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	sched.Start()

	// Warm the rate cache without holding up startup
	go func() {
		if err := sched.RunNow(jobs.RateSync); err != nil {
			log.Warn().Err(err).Msg("Initial rate sync failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
