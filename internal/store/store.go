// Package store keeps the in-memory snapshot of recent events that the
// rotation engine and the ticker render from. Nothing is persisted.
package store

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// DefaultRetention is how long an event stays on the wall.
const DefaultRetention = 24 * time.Hour

// Subscriber receives every new snapshot. Implementations must not retain
// or modify the slice beyond the call without copying it.
type Subscriber interface {
	Update(events []domain.Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(events []domain.Event)

// Update calls f(events).
func (f SubscriberFunc) Update(events []domain.Event) { f(events) }

// Store is a concurrency-safe set of events keyed by ID.
type Store struct {
	retention time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.RWMutex
	events      map[string]domain.Event
	subscribers []Subscriber

	// publishMu orders deliveries: a snapshot is taken and handed to every
	// subscriber before the next publish reads the store.
	publishMu sync.Mutex
}

// New creates an empty store. A non-positive retention uses DefaultRetention.
func New(retention time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		retention: retention,
		logger:    logger,
		metrics:   metrics,
		events:    make(map[string]domain.Event),
	}
}

// Subscribe registers s for future snapshots.
func (st *Store) Subscribe(s Subscriber) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subscribers = append(st.subscribers, s)
}

// Upsert inserts events, replacing any stored event with the same ID. It
// returns how many events were new and how many replaced a stored event
// with a different reading. A redelivered duplicate counts as neither and
// keeps its original ReceivedAt.
func (st *Store) Upsert(events ...domain.Event) (added, revised int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, e := range events {
		stored, ok := st.events[e.ID]
		switch {
		case !ok:
			added++
		case sameReading(stored, e):
			continue
		default:
			revised++
		}
		st.events[e.ID] = e
	}
	st.metrics.SnapshotEvents.Set(float64(len(st.events)))
	return added, revised
}

// sameReading reports whether a and b describe the same event identically,
// ignoring when each copy was received.
func sameReading(a, b domain.Event) bool {
	return a.Time.Equal(b.Time) &&
		a.Lat == b.Lat && a.Lon == b.Lon &&
		a.Magnitude == b.Magnitude && a.Depth == b.Depth &&
		a.Place == b.Place && a.LabelSource == b.LabelSource
}

// Prune drops events whose time is older than the retention window at now.
func (st *Store) Prune(now time.Time) int {
	cutoff := now.Add(-st.retention)

	st.mu.Lock()
	defer st.mu.Unlock()

	before := len(st.events)
	maps.DeleteFunc(st.events, func(_ string, e domain.Event) bool {
		return e.Time.Before(cutoff)
	})
	pruned := before - len(st.events)
	if pruned > 0 {
		st.metrics.EventsPruned.Add(float64(pruned))
		st.logger.Debug("pruned expired events", "count", pruned, "cutoff", cutoff)
	}
	st.metrics.SnapshotEvents.Set(float64(len(st.events)))
	return pruned
}

// Len returns the number of stored events.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.events)
}

// Snapshot returns a copy of the stored events, most recent first. Equal
// times are ordered by ID so repeated snapshots are identical.
func (st *Store) Snapshot() []domain.Event {
	st.mu.RLock()
	events := slices.Collect(maps.Values(st.events))
	st.mu.RUnlock()

	slices.SortFunc(events, func(a, b domain.Event) int {
		if c := b.Time.Compare(a.Time); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return events
}

// Publish sends the current snapshot to every subscriber. Each subscriber
// gets its own copy. Concurrent publishes are delivered one at a time in
// the order their snapshots were taken, so the last delivery always
// reflects the latest store contents.
func (st *Store) Publish() {
	st.publishMu.Lock()
	defer st.publishMu.Unlock()

	snapshot := st.Snapshot()

	st.mu.RLock()
	subs := slices.Clone(st.subscribers)
	st.mu.RUnlock()

	for _, s := range subs {
		s.Update(slices.Clone(snapshot))
	}
}

// RunPruner expires old events every interval until ctx is cancelled, so
// the wall drains even when the source topic goes quiet.
func (st *Store) RunPruner(ctx context.Context, clock clockwork.Clock, interval time.Duration) {
	t := clock.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			if st.Prune(clock.Now()) > 0 {
				st.Publish()
			}
		}
	}
}
