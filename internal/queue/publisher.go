package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recommender/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Envelope carries one fire-and-forget dispatch from the request path to
// the worker. The id ties API-side and worker-side log lines together.
type Envelope struct {
	ID        string                 `json:"id"`
	Operation string                 `json:"operation"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher hands an operation payload off without awaiting delivery.
type Publisher interface {
	Publish(operation string, payload map[string]interface{}) error
	Close() error
}

// KafkaPublisher writes envelopes to the storefront-events topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers, topic string, logger *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(operation string, payload map[string]interface{}) error {
	envelope := Envelope{
		ID:        uuid.NewString(),
		Operation: operation,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(operation),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Published %s event %s", operation, envelope.ID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
