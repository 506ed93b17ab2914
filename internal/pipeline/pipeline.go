package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Decoder converts a raw message into a seismic event.
type Decoder interface {
	Decode(ctx context.Context, raw domain.RawEvent) (domain.Event, error)
}

// LoadResult reports how a batch changed the display snapshot.
type LoadResult struct {
	Added     int
	Revised   int
	Pruned    int
	Published bool
}

// BatchLoader applies decoded events to the display snapshot. It publishes
// a new snapshot only when the batch changed what the wall shows.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.Event) (LoadResult, error)
}

// Pipeline feeds the wall: it consumes batches of catalogue records, keeps
// the snapshot current and acknowledges what it has consumed.
type Pipeline struct {
	extractor BatchExtractor
	decoder   Decoder
	loader    BatchLoader
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int

	// published flips once the first snapshot reached the display.
	published atomic.Bool
}

// New creates a Pipeline. clock paces retries after a failed batch.
func New(e BatchExtractor, d Decoder, l BatchLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		decoder:   d,
		loader:    l,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness reports ready once the first snapshot was published, that
// is once the wall has something to rotate through.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("no snapshot published yet")
	}
	return nil
}

// Run consumes batches until ctx is cancelled. A failed batch is retried
// after a growing delay; cancellation is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newRetryDelay(p.clock)
	for ctx.Err() == nil {
		raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			err = fmt.Errorf("extract batch: %w", err)
		} else if len(raws) > 0 {
			retry.reset()
			err = p.ingest(ctx, raws)
		}
		if err == nil || ctx.Err() != nil {
			continue
		}
		p.logger.Error("batch failed", "error", err, "retry_in", retry.current())
		retry.wait(ctx)
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// ingest decodes a batch, applies it to the snapshot and commits it.
// Records that fail to decode are dropped here and acknowledged with the
// rest of the batch, so they are never redelivered. Nothing is committed
// when the snapshot could not be updated.
func (p *Pipeline) ingest(ctx context.Context, raws []domain.RawEvent) error {
	start := p.clock.Now()
	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	if events := p.decode(ctx, raws); len(events) > 0 {
		res, err := p.loader.LoadBatch(ctx, events)
		if err != nil {
			return fmt.Errorf("load %d events: %w", len(events), err)
		}
		if res.Published && !p.published.Swap(true) {
			p.logger.Info("first snapshot published", "events", res.Added)
		}
		p.logger.Debug("batch applied",
			"added", res.Added, "revised", res.Revised, "pruned", res.Pruned, "published", res.Published)
		p.metrics.BatchProcessingDuration.Observe(p.clock.Since(start).Seconds())
	}

	p.commit(ctx, raws)
	return nil
}

func (p *Pipeline) decode(ctx context.Context, raws []domain.RawEvent) []domain.Event {
	events := make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := p.decoder.Decode(ctx, raw)
		if err != nil {
			p.logger.Warn("skipping undecodable record", "error", err,
				"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
			p.metrics.DecodeErrors.Inc()
			continue
		}
		events = append(events, event)
	}
	return events
}

// commit acknowledges the batch. Kafka offsets are cumulative, so only the
// last record of each partition is committed.
func (p *Pipeline) commit(ctx context.Context, raws []domain.RawEvent) {
	type partition struct {
		topic string
		id    int
	}
	seen := make(map[partition]bool)
	for i := len(raws) - 1; i >= 0; i-- {
		raw := raws[i]
		key := partition{raw.Topic, raw.Partition}
		if raw.Commit == nil || seen[key] {
			continue
		}
		seen[key] = true
		if err := raw.Commit(ctx); err != nil {
			p.logger.Warn("commit offset failed", "error", err,
				"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
		}
	}
}
