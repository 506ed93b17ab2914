package pipeline

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/store"
)

// SnapshotLoader applies decoded events to the in-memory store, drops
// expired ones and pushes the new snapshot to the display.
type SnapshotLoader struct {
	store *store.Store
	clock clockwork.Clock
}

// NewSnapshotLoader creates a loader; clock decides what has expired.
func NewSnapshotLoader(st *store.Store, clock clockwork.Clock) *SnapshotLoader {
	return &SnapshotLoader{store: st, clock: clock}
}

// LoadBatch upserts events and prunes expired ones. The snapshot is
// published only when that changed the store; a batch of redelivered
// duplicates leaves the display alone. It fails only when ctx is done.
func (l *SnapshotLoader) LoadBatch(ctx context.Context, events []domain.Event) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}

	var res LoadResult
	res.Added, res.Revised = l.store.Upsert(events...)
	res.Pruned = l.store.Prune(l.clock.Now())
	if res.Added+res.Revised+res.Pruned > 0 {
		l.store.Publish()
		res.Published = true
	}
	return res, nil
}
