package domain

import (
	"math"
	"time"
)

// Marker encoding constants. The radius curve 4·e^(m/2) makes an M7 roughly
// twenty times the size of an M1 on a shared map.
const (
	RadiusFloor = 4.0
	radiusBase  = 4.0

	MinOpacity     = 0.6
	opacityFadeHrs = 24.0
)

// Recency colors, most urgent first.
const (
	ColorUnderOneHour   = "#FF0000"
	ColorUnderTwoHours  = "#FF3300"
	ColorUnderFourHours = "#FF6600"
	ColorUnderEightHrs  = "#FF9900"
	ColorOlder          = "#FFCC00"
)

// Marker is the visual encoding of one event on the world or regional map.
type Marker struct {
	EventID   string  `json:"event_id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Magnitude float64 `json:"magnitude"`
	Label     string  `json:"label"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
	// Permanent markers keep their tooltip open.
	Permanent bool `json:"permanent"`
}

// Radius maps magnitude to a display radius in pixels. It is monotonic in
// magnitude and never below RadiusFloor.
func Radius(magnitude float64) float64 {
	if magnitude < 0 || math.IsNaN(magnitude) {
		magnitude = 0
	}
	return math.Max(RadiusFloor, radiusBase*math.Exp(magnitude/2))
}

// Color maps event age to one of five recency buckets.
func Color(ts, now time.Time) string {
	h := hoursSince(ts, now)
	switch {
	case h < 1:
		return ColorUnderOneHour
	case h < 2:
		return ColorUnderTwoHours
	case h < 4:
		return ColorUnderFourHours
	case h < 8:
		return ColorUnderEightHrs
	default:
		return ColorOlder
	}
}

// Opacity fades linearly from 1 at age zero to MinOpacity.
func Opacity(ts, now time.Time) float64 {
	return math.Max(MinOpacity, 1-hoursSince(ts, now)/opacityFadeHrs)
}

// Encode builds the map marker for an event as seen at now. Events at or
// above threshold keep their tooltip open.
func Encode(e Event, threshold float64, now time.Time) Marker {
	return Marker{
		EventID:   e.ID,
		Lat:       e.Lat,
		Lon:       e.Lon,
		Magnitude: e.Magnitude,
		Label:     e.Label(),
		Radius:    Radius(e.Magnitude),
		Color:     Color(e.Time, now),
		Opacity:   Opacity(e.Time, now),
		Permanent: e.Magnitude >= threshold,
	}
}

// EncodeAll encodes events largest first.
func EncodeAll(events []Event, threshold float64, now time.Time) []Marker {
	sorted := SortByMagnitude(events)
	markers := make([]Marker, len(sorted))
	for i, e := range sorted {
		markers[i] = Encode(e, threshold, now)
	}
	return markers
}

// hoursSince clamps events reported slightly in the future to age zero.
func hoursSince(ts, now time.Time) float64 {
	d := now.Sub(ts)
	if d < 0 {
		return 0
	}
	return d.Hours()
}
