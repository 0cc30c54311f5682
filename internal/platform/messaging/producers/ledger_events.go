// Package producers publishes ledger lifecycle events to Kafka so chart and
// dashboard subscribers can react to snapshot persistence without polling.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sharevest-expense-ledger/internal/config"
)

// Ledger event names
const (
	EventSnapshotPersisted = "snapshot_persisted"
	EventPersistenceFailed = "persistence_failed"
)

// LedgerEvent is the wire shape of a ledger snapshot lifecycle event. Failures
// carry the storage error text; they are warnings for subscribers, the
// in-memory state they describe has already been committed.
type LedgerEvent struct {
	Event       string    `json:"event"`
	OwnerID     string    `json:"owner_id"`
	RecordCount int       `json:"record_count"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LedgerEventProducer publishes ledger events keyed by owner id, so events for
// one owner land on a single partition in order.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewLedgerEventProducer creates the ledger event producer and ensures the topic exists
func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerEventsTopic == "" {
		return nil, fmt.Errorf("kafka ledger events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.LedgerEventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger events topic %s exists: %w", cfg.LedgerEventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LedgerEventsTopic,
		Balancer:     &kafka.Hash{}, // Same owner key always maps to the same partition
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write ledger events asynchronously", "topic", cfg.LedgerEventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote ledger events asynchronously", "topic", cfg.LedgerEventsTopic, "count", len(messages))
			}
		},
	}

	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerEventsTopic,
	}, nil
}

func (p *LedgerEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
