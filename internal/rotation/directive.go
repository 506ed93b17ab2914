package rotation

import (
	"time"

	"github.com/couchcryptid/quake-wall/internal/domain"
)

// Directive tells the display surface what to render for the current state.
// World and Regional directives carry the full event list and the markers
// visible in the viewport; Detail directives carry a single card.
type Directive struct {
	Mode       Mode            `json:"mode"`
	State      State           `json:"state"`
	GroupCount int             `json:"group_count"`
	Viewport   domain.Viewport `json:"viewport"`
	Region     *domain.Region  `json:"region,omitempty"`
	Events     []domain.Event  `json:"events,omitempty"`
	Markers    []domain.Marker `json:"markers,omitempty"`
	Card       *domain.Card    `json:"card,omitempty"`
	EmittedAt  time.Time       `json:"emitted_at"`
}

// view is one immutable derivation of an event snapshot.
type view struct {
	events []domain.Event
	groups []domain.Group
	shape  Shape
}

func newView(events []domain.Event, threshold float64, pageSize int, region *domain.Region) view {
	groups := domain.GroupSignificant(events, threshold, pageSize)
	return view{
		events: events,
		groups: groups,
		shape:  Shape{GroupSizes: domain.GroupSizes(groups), Regional: region != nil},
	}
}

// BuildDirective renders a state against a snapshot. States that do not fit
// the snapshot render as the world view. Markers at or above threshold are
// shown with a permanent tooltip.
func BuildDirective(s State, events []domain.Event, groups []domain.Group, region *domain.Region, threshold float64, now time.Time) Directive {
	shape := Shape{GroupSizes: domain.GroupSizes(groups), Regional: region != nil}
	s, _ = Normalize(s, shape)

	d := Directive{
		Mode:       s.Mode,
		State:      s,
		GroupCount: len(groups),
		EmittedAt:  now,
	}

	switch s.Mode {
	case Detail:
		event := groups[s.GroupIndex][s.ItemIndex]
		card := domain.NewCard(event)
		d.Card = &card
		d.Viewport = domain.Viewport{
			Center: event.Point(),
			Zoom:   card.Zoom,
			Bounds: domain.WorldBounds,
		}
	case Regional:
		d.Region = region
		d.Viewport = domain.ViewportFor(region)
		d.Events = events
		d.Markers = domain.EncodeAll(domain.FilterWithin(events, region), threshold, now)
	default:
		d.Viewport = domain.ViewportFor(nil)
		d.Events = events
		d.Markers = domain.EncodeAll(events, threshold, now)
	}
	return d
}
