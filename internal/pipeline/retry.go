package pipeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	minRetryDelay = 200 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

// retryDelay doubles from minRetryDelay up to maxRetryDelay on every wait
// and starts over after reset.
type retryDelay struct {
	clock clockwork.Clock
	next  time.Duration
}

func newRetryDelay(clock clockwork.Clock) *retryDelay {
	return &retryDelay{clock: clock, next: minRetryDelay}
}

func (r *retryDelay) reset() { r.next = minRetryDelay }

func (r *retryDelay) current() time.Duration { return r.next }

// wait blocks for the current delay or until ctx is done, whichever comes
// first, then doubles the delay.
func (r *retryDelay) wait(ctx context.Context) {
	t := r.clock.NewTimer(r.next)
	defer t.Stop()
	r.next = min(r.next*2, maxRetryDelay)

	select {
	case <-ctx.Done():
	case <-t.Chan():
	}
}
