package worker

import (
	"context"
	"encoding/json"
	"time"

	"recommender/internal/config"
	"recommender/internal/logger"
	"recommender/internal/queue"
	"recommender/internal/stacc"

	"github.com/segmentio/kafka-go"
)

// Worker drains the storefront-events topic and dispatches each envelope
// to the remote API. This is the delivery half of fire-and-forget: the
// request path already returned, so failures here are logged and dropped.
type Worker struct {
	config *config.Config
	logger *logger.Logger
	reader *kafka.Reader
	client *stacc.Client
}

func New(cfg *config.Config, logger *logger.Logger, client *stacc.Client) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "recommender-worker",
		Topic:          cfg.EventTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: logger,
		reader: reader,
		client: client,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var envelope queue.Envelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			w.logger.Error("Failed to parse envelope: %v", err)
			continue
		}

		res := w.client.Send(stacc.Operation(envelope.Operation), envelope.Payload, w.config.DispatchTimeout)
		if !res.OK {
			// Telemetry is best effort, the failed event is not requeued.
			w.logger.Error("Dispatch of %s event %s failed: %s", envelope.Operation, envelope.ID, res.Error())
			continue
		}

		w.logger.Debug("Event %s dispatched", envelope.ID)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
