package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dpereira/leitnerbox/internal/api"
	"github.com/dpereira/leitnerbox/internal/config"
	"github.com/dpereira/leitnerbox/internal/db"
	"github.com/dpereira/leitnerbox/internal/leitner"
	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/repository/sqlite"
	"github.com/dpereira/leitnerbox/internal/scheduler"
	"github.com/dpereira/leitnerbox/internal/services"
	"github.com/dpereira/leitnerbox/internal/worker"
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
	log.Info("LeitnerBox Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("save_worker_count=%d", cfg.SaveWorkerCount)
	log.Debug("save_queue_size=%d", cfg.SaveQueueSize)
	log.Debug("checkpoint_seconds=%d", cfg.CheckpointSeconds)
	log.Debug("stale_session_hours=%d", cfg.StaleSessionHours)
	log.Debug("max_cards_per_session=%d", cfg.MaxCardsPerSession)
	log.Debug("max_new_cards_per_day=%d", cfg.MaxNewCardsPerDay)
	log.Debug("shuffle_cards=%v", cfg.ShuffleCards)

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

	// Build the Leitner ladder from defaults plus environment overrides.
	leitnerCfg := leitner.DefaultConfig()
	leitnerCfg.ShuffleCards = cfg.ShuffleCards
	leitnerCfg.Scheduling.MaxNewCardsPerDay = cfg.MaxNewCardsPerDay
	if err := leitnerCfg.Validate(); err != nil {
		log.Error("invalid leitner configuration: %v", err)
		os.Exit(1)
	}

	boxScheduler, err := leitner.NewScheduler(leitnerCfg)
	if err != nil {
		log.Error("failed to create scheduler: %v", err)
		os.Exit(1)
	}
	selector := leitner.NewSelector(leitnerCfg)

	// Initialize repositories
	deckRepo := sqlite.NewDeckRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)

	// Initialize worker pool for background session saves
	savePool := worker.NewPool(cfg.SaveWorkerCount, cfg.SaveQueueSize)

	// Initialize services
	deckService := services.NewDeckService(deckRepo, leitnerCfg)
	studyService := services.NewStudyService(deckRepo, sessionRepo, boxScheduler, selector, savePool)
	statsService := services.NewStatsService(deckRepo, leitnerCfg)

	srv := api.NewServer(database, deckService, studyService, statsService, cfg.MaxCardsPerSession)

	ctx, cancel := context.WithCancel(context.Background())
	savePool.Start(ctx)

	maintenance := scheduler.New(
		studyService,
		sessionRepo,
		time.Duration(cfg.CheckpointSeconds)*time.Second,
		time.Duration(cfg.StaleSessionHours)*time.Hour,
	)
	maintenance.Start()

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

	log.Debug("stopping maintenance scheduler")
	maintenance.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Flush in-flight sessions, then drain the pool so every accepted save
	// job reaches the database before the worker context dies.
	saveCtx := logger.NewContext(shutdownCtx, log)
	n := studyService.CheckpointActiveSessions(saveCtx)
	if n > 0 {
		log.Info("checkpointed %d active sessions on shutdown", n)
	}

	log.Debug("draining save pool")
	savePool.Drain()
	cancel()

	log.Info("===========================================")
	log.Info("LeitnerBox Server Stopped")
	log.Info("===========================================")
}
