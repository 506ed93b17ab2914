package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-wall/internal/config"
	"github.com/couchcryptid/quake-wall/internal/domain"
)

// messageFetcher is the subset of *kafkago.Reader the adapter depends on.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Reader consumes seismic events from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        messageFetcher
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
// Offsets are committed explicitly once an event has been applied.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaSourceTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return &Reader{reader: r, flushInterval: cfg.BatchFlushInterval, logger: logger}
}

// ExtractBatch blocks for the first message, then collects more until
// batchSize messages are read or the flush interval elapses.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	batch := make([]domain.RawEvent, 0, batchSize)
	batch = append(batch, r.toRawEvent(first))

	if batchSize == 1 || r.flushInterval <= 0 {
		return batch, nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(flushCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break
			}
			// Keep what was fetched; the error resurfaces on the next call.
			r.logger.Warn("fetch message failed mid-batch", "error", err, "fetched", len(batch))
			break
		}
		batch = append(batch, r.toRawEvent(msg))
	}
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) toRawEvent(msg kafkago.Message) domain.RawEvent {
	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

// mapMessageToRawEvent copies a Kafka message into the domain type.
func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
