// Package kafka publishes scored fire detections to the sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wildfire-risk-etl/internal/config"
	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
)

// Writer produces scored detections to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes scored detections in a single
// WriteMessages call. Keys are fire IDs, so downstream consumers that
// upsert by key stay idempotent across re-fetches.
func (w *Writer) PublishBatch(ctx context.Context, batch []domain.Detection) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch))
	for i := range batch {
		msg, err := serializeToMessage(batch[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Detection into a Kafka message.
func serializeToMessage(det domain.Detection) (kafkago.Message, error) {
	data, err := json.Marshal(det)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(det.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_category", Value: []byte(det.RiskCategory)},
			{Key: "processed_at", Value: []byte(det.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
