package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-wall/internal/config"
	"github.com/couchcryptid/quake-wall/internal/rotation"
)

// messageWriter is the subset of *kafkago.Writer the adapter depends on.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces render directives to the sink topic.
// It implements rotation.Publisher.
type Writer struct {
	writer messageWriter
	key    []byte
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Writer{writer: w, key: []byte(cfg.KafkaGroupID), logger: logger}
}

// Publish writes one directive. Every directive of a wall carries the same
// key so they land on one partition in transition order.
func (w *Writer) Publish(ctx context.Context, d rotation.Directive) error {
	msg, err := serializeToMessage(w.key, d)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write directive: %w", err)
	}
	w.logger.Debug("directive published", "mode", d.Mode, "group", d.State.GroupIndex, "item", d.State.ItemIndex)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Directive into a Kafka message.
func serializeToMessage(key []byte, d rotation.Directive) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize directive: %w", err)
	}
	mode := d.Mode.String()
	return kafkago.Message{
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(mode)},
			{Key: "emitted_at", Value: []byte(d.EmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
