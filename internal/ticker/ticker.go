// Package ticker drives the lower-thirds strip of the wall: a continuously
// scrolling list of recent events and a rotating world clock. Both run on
// their own timers and share nothing with the rotation engine.
package ticker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// Config holds the ticker tunables.
type Config struct {
	Speed         float64
	FrameInterval time.Duration
	Timezones     []domain.Timezone
	Dwell         time.Duration
	Gap           time.Duration
}

// Frame is what the ticker strip shows right now.
type Frame struct {
	Items        []Item   `json:"items"`
	Offset       float64  `json:"offset"`
	ContentWidth float64  `json:"content_width"`
	Zone         ZoneView `json:"zone"`
}

// Ticker pairs the scroller with the zone rotator.
type Ticker struct {
	scroller *Scroller
	zones    *ZoneRotator
}

// New builds a ticker on the given clock.
func New(cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) (*Ticker, error) {
	zones, err := NewZoneRotator(cfg.Timezones, cfg.Dwell, cfg.Gap, clock, logger, metrics)
	if err != nil {
		return nil, err
	}
	return &Ticker{
		scroller: NewScroller(cfg.Speed, cfg.FrameInterval, clock, logger, metrics),
		zones:    zones,
	}, nil
}

// Update replaces the scrolled event list.
func (t *Ticker) Update(events []domain.Event) { t.scroller.Update(events) }

// SetContentWidth applies the width of one copy as measured by the display.
func (t *Ticker) SetContentWidth(w float64) { t.scroller.SetContentWidth(w) }

// Scroller exposes the scroll state.
func (t *Ticker) Scroller() *Scroller { return t.scroller }

// Zones exposes the timezone rotator.
func (t *Ticker) Zones() *ZoneRotator { return t.zones }

// Frame returns the duplicated list, its offset and the current clock label.
func (t *Ticker) Frame() Frame {
	return Frame{
		Items:        Duplicate(t.scroller.Items()),
		Offset:       t.scroller.Position(),
		ContentWidth: t.scroller.ContentWidth(),
		Zone:         t.zones.Current(),
	}
}

// Run drives both timers until ctx is cancelled. It reports the errors of
// either runner.
func (t *Ticker) Run(ctx context.Context) error {
	var (
		wg                 sync.WaitGroup
		scrollErr, zoneErr error
	)
	wg.Go(func() { scrollErr = t.scroller.Run(ctx) })
	wg.Go(func() { zoneErr = t.zones.Run(ctx) })
	wg.Wait()
	return errors.Join(scrollErr, zoneErr)
}
