package rotation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// DefaultInterval is how long each view stays on screen.
const DefaultInterval = 15 * time.Second

// ErrStopped is returned when Run is called on an engine that already ran.
var ErrStopped = errors.New("rotation engine stopped")

// Config holds the tunable rotation parameters.
type Config struct {
	Threshold float64
	PageSize  int
	Interval  time.Duration
	// Region enables the regional view when non-nil.
	Region *domain.Region
}

// Publisher receives the directive produced by every transition.
type Publisher interface {
	Publish(ctx context.Context, d Directive) error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the real clock, typically with a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithPublisher forwards every directive to p.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// Engine drives the rotation state machine on a single display timer.
type Engine struct {
	cfg       Config
	clock     clockwork.Clock
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu      sync.RWMutex
	state   State
	view    view
	stopped bool

	// reshaped signals Run that a snapshot changed the grouping shape.
	reshaped chan struct{}
}

// New creates an Engine in the Initial state with an empty snapshot.
func New(cfg Config, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = domain.DefaultPageSize
	}
	e := &Engine{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
		state:    Initial,
		reshaped: make(chan struct{}, 1),
	}
	e.view = newView(nil, cfg.Threshold, cfg.PageSize, cfg.Region)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update replaces the event snapshot. The grouping is re-derived at once;
// the state itself is only reinterpreted on the next tick. A change in the
// grouping shape restarts the pending display interval.
func (e *Engine) Update(events []domain.Event) {
	v := newView(slices.Clone(events), e.cfg.Threshold, e.cfg.PageSize, e.cfg.Region)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	changed := !v.shape.Equal(e.view.shape)
	e.view = v
	e.mu.Unlock()

	e.metrics.SignificantGroups.Set(float64(len(v.groups)))
	if changed {
		select {
		case e.reshaped <- struct{}{}:
		default:
		}
	}
}

// State returns the current rotation state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Directive renders the current state against the current snapshot.
func (e *Engine) Directive() Directive {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return BuildDirective(e.state, e.view.events, e.view.groups, e.cfg.Region, e.cfg.Threshold, e.clock.Now())
}

// Run drives the state machine until ctx is cancelled. Every tick schedules
// exactly one next tick a full interval later; an engine cannot be run twice.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrStopped
	}
	e.mu.Unlock()
	defer e.stop()

	// A snapshot applied before start needs no reschedule.
	select {
	case <-e.reshaped:
	default:
	}

	e.logger.Info("rotation started",
		"interval", e.cfg.Interval,
		"threshold", e.cfg.Threshold,
		"page_size", e.cfg.PageSize,
		"regional", e.cfg.Region != nil,
	)
	e.setModeGauge(e.State().Mode)

	timer := e.clock.NewTimer(e.cfg.Interval)
	defer func() { timer.Stop() }()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("rotation stopping", "reason", ctx.Err())
			return nil

		case <-e.reshaped:
			timer.Stop()
			timer = e.clock.NewTimer(e.cfg.Interval)
			e.metrics.RotationReschedules.Inc()
			e.logger.Debug("grouping changed, display interval restarted")

		case <-timer.Chan():
			d, ok := e.tick()
			if !ok {
				return nil
			}
			timer = e.clock.NewTimer(e.cfg.Interval)
			e.publish(ctx, d)
		}
	}
}

// tick applies one transition and returns the directive for the new state.
func (e *Engine) tick() (Directive, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return Directive{}, false
	}

	from := e.state
	shape := e.view.shape
	if _, corrected := Normalize(from, shape); corrected {
		e.metrics.RotationCorrections.Inc()
		e.logger.Info("stale rotation index redirected to world view",
			"mode", from.Mode,
			"group", from.GroupIndex,
			"item", from.ItemIndex,
			"groups", shape.GroupCount(),
		)
	}

	next := Next(from, shape)
	e.state = next

	e.metrics.RotationTransitions.WithLabelValues(from.Mode.String(), next.Mode.String()).Inc()
	e.setModeGauge(next.Mode)
	e.logger.Debug("rotation tick",
		"from", from.Mode,
		"to", next.Mode,
		"group", next.GroupIndex,
		"item", next.ItemIndex,
	)

	return BuildDirective(next, e.view.events, e.view.groups, e.cfg.Region, e.cfg.Threshold, e.clock.Now()), true
}

func (e *Engine) publish(ctx context.Context, d Directive) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, d); err != nil {
		e.metrics.DirectivesPublished.WithLabelValues("error").Inc()
		e.logger.Warn("publish directive failed", "mode", d.Mode, "error", err)
		return
	}
	e.metrics.DirectivesPublished.WithLabelValues("success").Inc()
}

// stop marks the engine as torn down; later ticks and updates are ignored.
func (e *Engine) stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	for _, m := range Modes {
		e.metrics.RotationMode.WithLabelValues(m.String()).Set(0)
	}
}

func (e *Engine) setModeGauge(current Mode) {
	for _, m := range Modes {
		v := 0.0
		if m == current {
			v = 1
		}
		e.metrics.RotationMode.WithLabelValues(m.String()).Set(v)
	}
}
