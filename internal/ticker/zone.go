package ticker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// Zone data is embedded so the clock works on minimal images.
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// Zone rotation defaults.
const (
	DefaultDwell = 10 * time.Second
	DefaultGap   = 150 * time.Millisecond
)

// ZoneView is the clock label currently on screen.
type ZoneView struct {
	Name    string    `json:"name"`
	Zone    string    `json:"zone"`
	Visible bool      `json:"visible"`
	Local   time.Time `json:"local"`
	Clock   string    `json:"clock"`
}

type zone struct {
	domain.Timezone
	loc *time.Location
}

// ZoneRotator cycles the ticker clock through a list of timezones. Every
// dwell period the label is hidden for a short gap before the next zone
// is shown.
type ZoneRotator struct {
	clock   clockwork.Clock
	dwell   time.Duration
	gap     time.Duration
	zones   []zone
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	index   int
	visible bool
	stopped bool
}

// NewZoneRotator resolves every zone up front; an unknown IANA name is an error.
func NewZoneRotator(timezones []domain.Timezone, dwell, gap time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) (*ZoneRotator, error) {
	if len(timezones) == 0 {
		timezones = domain.DefaultTimezones()
	}
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	if gap < 0 || gap >= dwell {
		gap = DefaultGap
	}

	zones := make([]zone, len(timezones))
	for i, tz := range timezones {
		loc, err := time.LoadLocation(tz.Zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", tz.Zone, err)
		}
		zones[i] = zone{Timezone: tz, loc: loc}
	}

	return &ZoneRotator{
		clock:   clock,
		dwell:   dwell,
		gap:     gap,
		zones:   zones,
		logger:  logger,
		metrics: metrics,
		visible: true,
	}, nil
}

// Current returns the zone on screen and its wall clock time now.
func (z *ZoneRotator) Current() ZoneView {
	z.mu.RLock()
	cur, visible := z.zones[z.index], z.visible
	z.mu.RUnlock()

	local := z.clock.Now().In(cur.loc)
	return ZoneView{
		Name:    cur.Name,
		Zone:    cur.Zone,
		Visible: visible,
		Local:   local,
		Clock:   local.Format(time.TimeOnly),
	}
}

// Index returns the position of the current zone in the list.
func (z *ZoneRotator) Index() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.index
}

// Run cycles zones until ctx is cancelled.
func (z *ZoneRotator) Run(ctx context.Context) error {
	z.mu.Lock()
	if z.stopped {
		z.mu.Unlock()
		return ErrStopped
	}
	z.mu.Unlock()
	defer z.stop()

	dwell := z.clock.NewTicker(z.dwell)
	defer dwell.Stop()

	var gap clockwork.Timer
	var gapC <-chan time.Time
	defer func() {
		if gap != nil {
			gap.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-dwell.Chan():
			z.hide()
			if gap != nil {
				gap.Stop()
			}
			gap = z.clock.NewTimer(z.gap)
			gapC = gap.Chan()
		case <-gapC:
			gap, gapC = nil, nil
			z.showNext()
		}
	}
}

func (z *ZoneRotator) hide() {
	z.mu.Lock()
	defer z.mu.Unlock()
	if !z.stopped {
		z.visible = false
	}
}

func (z *ZoneRotator) showNext() {
	z.mu.Lock()
	if z.stopped {
		z.mu.Unlock()
		return
	}
	z.index = (z.index + 1) % len(z.zones)
	z.visible = true
	next := z.zones[z.index]
	z.mu.Unlock()

	z.metrics.TickerZoneRotations.Inc()
	z.logger.Debug("ticker timezone rotated", "name", next.Name, "zone", next.Zone)
}

func (z *ZoneRotator) stop() {
	z.mu.Lock()
	z.stopped = true
	z.mu.Unlock()
}
