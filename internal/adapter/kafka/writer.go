package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/sightings-etl/internal/config"
	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// Writer produces cleaned sightings to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes sightings in a single WriteMessages
// call. Messages are keyed by sighting ID, so a republished row lands on the
// same partition.
func (w *Writer) PublishBatch(ctx context.Context, sightings []domain.Sighting) error {
	if len(sightings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(sightings))
	for i := range sightings {
		msg, err := serializeToMessage(sightings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Sighting into a Kafka message.
func serializeToMessage(s domain.Sighting) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sighting: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(s.State)},
			{Key: "processed_at", Value: []byte(s.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
