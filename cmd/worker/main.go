package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"recommender/internal/config"
	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/stacc"
	"recommender/internal/store"
	"recommender/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Shared settings store, log buffer and API client
	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	sink := logbuffer.NewSink(cfg.LogBufferPath, cfg.Version, "")
	client := stacc.NewClient(cfg.StaccAPIURL, st, sink, logger)

	// Initialize worker
	w := worker.New(cfg, logger, client)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
