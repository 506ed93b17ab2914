package ticker

import (
	"fmt"
	"unicode/utf8"

	"github.com/couchcryptid/quake-wall/internal/domain"
)

// Layout estimates used until the display reports a measured width.
const (
	DefaultGlyphWidth = 10.0
	itemMargin        = 32.0
)

// Item is one entry of the scrolling event list.
type Item struct {
	EventID   string      `json:"event_id"`
	Magnitude float64     `json:"magnitude"`
	Label     string      `json:"label"`
	Tone      domain.Tone `json:"tone"`
	Text      string      `json:"text"`
}

// Items returns the ticker entries for events, most recent first.
func Items(events []domain.Event) []Item {
	sorted := domain.SortByRecency(events)
	items := make([]Item, len(sorted))
	for i, e := range sorted {
		items[i] = Item{
			EventID:   e.ID,
			Magnitude: e.Magnitude,
			Label:     e.Label(),
			Tone:      domain.TickerTone(e.Magnitude),
			Text:      fmt.Sprintf("M%.1f • %s", e.Magnitude, e.Label()),
		}
	}
	return items
}

// Duplicate renders the list twice so the scroll wraps without a gap.
func Duplicate(items []Item) []Item {
	out := make([]Item, 0, 2*len(items))
	out = append(out, items...)
	return append(out, items...)
}

// EstimateWidth approximates the pixel width of one copy of items.
func EstimateWidth(items []Item, glyphWidth float64) float64 {
	if glyphWidth <= 0 {
		glyphWidth = DefaultGlyphWidth
	}
	var w float64
	for _, it := range items {
		w += float64(utf8.RuneCountInString(it.Text))*glyphWidth + itemMargin
	}
	return w
}
