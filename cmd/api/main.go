package main

import (
	"log"

	"recommender/internal/api"
	"recommender/internal/config"
	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/queue"
	"recommender/internal/stacc"
	"recommender/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize settings / catalog store
	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Durable log buffer and API client
	sink := logbuffer.NewSink(cfg.LogBufferPath, cfg.Version, "")
	client := stacc.NewClient(cfg.StaccAPIURL, st, sink, logger)

	// Fire-and-forget event queue
	publisher := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopic, logger)
	defer publisher.Close()

	// Initialize API server
	server := api.New(cfg, logger, st, sink, client, publisher)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
