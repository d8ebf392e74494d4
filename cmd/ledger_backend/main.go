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

	"github.com/farmfeed/ledger_service/internal/core/services"
	"github.com/farmfeed/ledger_service/internal/handlers"
	"github.com/farmfeed/ledger_service/internal/jobs"
	"github.com/farmfeed/ledger_service/internal/middleware"
	"github.com/farmfeed/ledger_service/internal/platform/config"
	"github.com/farmfeed/ledger_service/internal/platform/storage"
	"github.com/farmfeed/ledger_service/pkg/logging"
	"github.com/farmfeed/ledger_service/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

// @title Farmer–Dealer Ledger API
// @version 1.0
// @description Balance reconciliation engine for farmer–dealer ledgers.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Bootstrap logger until the configured one is ready
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, closeLog := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("error", err.Error()), slog.String("driver", cfg.StoreDriver))
		os.Exit(1)
	}
	if repos.Close != nil {
		defer repos.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	serviceContainer := services.NewServiceContainer(cfg, repos, ledgerMetrics)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	routeOpts := []handlers.RouteOption{handlers.WithMetricsGatherer(registry)}
	if cfg.RateLimit != "" {
		rateLimiter, closeLimiter, err := middleware.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateLimitRedisURL)
		if err != nil {
			logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = closeLimiter() }()
		routeOpts = append(routeOpts, handlers.WithRateLimiter(rateLimiter))
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, routeOpts...)

	var reconcileJob *jobs.ReconcileJob
	if cfg.ReconcileSchedule != "" {
		reconcileJob = jobs.NewReconcileJob(serviceContainer.Reconciliation, logger)
		if err := reconcileJob.Schedule(cfg.ReconcileSchedule); err != nil {
			logger.Error("Failed to schedule reconciliation", slog.String("error", err.Error()))
			os.Exit(1)
		}
		reconcileJob.Start(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		exitCode = 1
	}
	if reconcileJob != nil {
		if err := reconcileJob.Stop(shutdownCtx); err != nil {
			logger.Error("Reconcile job shutdown failed", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	logger.Info("Server stopped")
	if exitCode != 0 {
		// Deferred closers are skipped by os.Exit; release the store first.
		if repos.Close != nil {
			repos.Close()
		}
		os.Exit(exitCode)
	}
}
