package ticker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// Scroll defaults: one pixel per ~60Hz frame.
const (
	DefaultSpeed         = 1.0
	DefaultFrameInterval = 16 * time.Millisecond
)

// ErrStopped is returned when a ticker component is run after teardown.
var ErrStopped = errors.New("ticker stopped")

// Scroller moves the duplicated event list left by a constant step per frame
// and snaps back to the origin once a full copy has scrolled past.
type Scroller struct {
	clock         clockwork.Clock
	speed         float64
	frameInterval time.Duration
	glyphWidth    float64
	logger        *slog.Logger
	metrics       *observability.Metrics

	mu       sync.RWMutex
	items    []Item
	width    float64
	measured bool
	position float64
	stopped  bool
}

// NewScroller creates a scroller with an empty list.
func NewScroller(speed float64, frameInterval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scroller {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Scroller{
		clock:         clock,
		speed:         speed,
		frameInterval: frameInterval,
		glyphWidth:    DefaultGlyphWidth,
		logger:        logger,
		metrics:       metrics,
	}
}

// Update replaces the scrolled list. The position is kept so a refresh does
// not jump the ticker back to the start.
func (s *Scroller) Update(events []domain.Event) {
	items := Items(events)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.items = items
	if !s.measured {
		s.width = EstimateWidth(items, s.glyphWidth)
	}
	if math.Abs(s.position) >= s.width {
		s.position = 0
	}
}

// SetContentWidth overrides the estimated width with the width of one copy
// as measured by the display. Zero returns to the estimate.
func (s *Scroller) SetContentWidth(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w <= 0 {
		s.measured = false
		s.width = EstimateWidth(s.items, s.glyphWidth)
		return
	}
	s.measured = true
	s.width = w
}

// Advance moves the list by one step and reports whether it wrapped.
func (s *Scroller) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if s.width <= 0 {
		s.position = 0
		return false
	}
	s.position -= s.speed
	if math.Abs(s.position) >= s.width {
		s.position = 0
		s.metrics.TickerWraps.Inc()
		return true
	}
	return false
}

// Position returns the current horizontal offset in pixels (≤ 0).
func (s *Scroller) Position() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// ContentWidth returns the width of one copy of the list.
func (s *Scroller) ContentWidth() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width
}

// Items returns the current list, once.
func (s *Scroller) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Run advances once per frame until ctx is cancelled.
func (s *Scroller) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.mu.Unlock()
	defer s.stop()

	t := s.clock.NewTicker(s.frameInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.Chan():
			if s.Advance() {
				s.logger.Debug("ticker wrapped", "width", s.ContentWidth())
			}
		}
	}
}

func (s *Scroller) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
