package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/config"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
)

// Writer publishes accepted results to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// One message per snapshot; don't hold it back waiting for a batch.
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name labels this sink in metrics and logs.
func (w *Writer) Name() string { return "kafka" }

// Publish serializes result and writes it keyed by session id, so every
// snapshot of a session lands on the same partition in feed order.
func (w *Writer) Publish(ctx context.Context, result *domain.Result) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "points", len(result.Points))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Result into a Kafka message.
func serializeToMessage(result *domain.Result) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "session_id", Value: []byte(result.SessionID)},
			{Key: "received_at", Value: []byte(result.ReceivedAt.Format(time.RFC3339))},
			{Key: "critical", Value: []byte(strconv.Itoa(result.Counts.Critical))},
			{Key: "warning", Value: []byte(strconv.Itoa(result.Counts.Warning))},
			{Key: "ok", Value: []byte(strconv.Itoa(result.Counts.OK))},
		},
	}, nil
}
