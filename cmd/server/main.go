package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/escaperoom/internal/api"
	"github.com/vytor/escaperoom/internal/auth"
	"github.com/vytor/escaperoom/internal/catalog"
	"github.com/vytor/escaperoom/internal/config"
	"github.com/vytor/escaperoom/internal/db"
	"github.com/vytor/escaperoom/internal/jobs"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/ranking"
	"github.com/vytor/escaperoom/internal/repository/sqlite"
	"github.com/vytor/escaperoom/internal/services"
	"github.com/vytor/escaperoom/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Escape Room Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("catalog_path=%s", cfg.CatalogPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("leaderboard_ttl=%v", cfg.LeaderboardTTL)
	log.Debug("expiry_worker_count=%d", cfg.ExpiryWorkerCount)
	log.Debug("expiry_queue_size=%d", cfg.ExpiryQueueSize)
	log.Debug("expiry_sweep_interval=%v", cfg.ExpirySweepInterval)
	log.Debug("cors_allowed_origins=%v", cfg.CORSAllowedOrigins)

	cat, err := catalog.LoadFromFile(cfg.CatalogPath)
	if err != nil {
		log.Error("failed to load catalog: %v", err)
		os.Exit(1)
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	profileRepo := sqlite.NewProfileRepository(database.DB)
	attemptRepo := sqlite.NewAttemptRepository(database.DB)
	progressRepo := sqlite.NewProgressRepository(database.DB)
	accountRepo := sqlite.NewAccountRepository(database.DB)

	// Initialize services
	progressService := services.NewProgressService(cat, profileRepo, attemptRepo, progressRepo)
	accountService := services.NewAccountService(accountRepo, auth.NewBcryptHasher(cfg.BcryptCost), progressService)
	aggregator := ranking.NewAggregator(profileRepo, ranking.NewCache(cfg.LeaderboardTTL))

	// Background expiry of timed-out attempts
	expiryPool := worker.NewPool(cfg.ExpiryWorkerCount, cfg.ExpiryQueueSize)
	jobQueue := jobs.NewWorkerQueue(expiryPool, progressService)
	sweeper := jobs.NewExpirySweeper(attemptRepo, cat, jobQueue, cfg.ExpirySweepInterval)

	srv := &api.Server{
		Progress:       progressService,
		Accounts:       accountService,
		Ranking:        aggregator,
		Catalog:        cat,
		Health:         database,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	expiryPool.Start(ctx)
	go sweeper.Run(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stops the sweeper and any running expiry jobs
	cancel()
	log.Debug("stopping expiry pool")
	expiryPool.Stop()

	log.Info("===========================================")
	log.Info("Escape Room Server Stopped")
	log.Info("===========================================")
}
