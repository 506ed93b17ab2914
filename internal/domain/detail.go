package domain

// Detail card constants.
const (
	detailRadiusFloor = 10.0
	detailRadiusScale = 3.0
)

// Card is everything the detail view shows for one event.
type Card struct {
	Event       Event   `json:"event"`
	Label       string  `json:"label"`
	Zoom        int     `json:"zoom"`
	Radius      float64 `json:"radius"`
	Description string  `json:"description"`
}

// NewCard builds the detail card for an event.
func NewCard(e Event) Card {
	return Card{
		Event:       e,
		Label:       e.Label(),
		Zoom:        DetailZoom(e.Magnitude),
		Radius:      DetailRadius(e.Magnitude),
		Description: Describe(e.Magnitude),
	}
}

// DetailZoom frames larger events with a wider map.
func DetailZoom(magnitude float64) int {
	switch {
	case magnitude >= 7:
		return 4
	case magnitude >= 6:
		return 5
	case magnitude >= 5:
		return 6
	default:
		return 7
	}
}

// DetailRadius is the epicentre marker size on the detail map.
func DetailRadius(magnitude float64) float64 {
	return max(detailRadiusFloor, magnitude*detailRadiusScale)
}

// Describe returns the damage-potential blurb for a magnitude.
func Describe(magnitude float64) string {
	switch {
	case magnitude >= 7:
		return "Major earthquake capable of causing widespread, serious damage."
	case magnitude >= 6:
		return "Strong earthquake capable of causing significant damage in populated areas."
	case magnitude >= 5:
		return "Moderate earthquake that can cause damage to poorly constructed buildings."
	default:
		return "Light to moderate earthquake, rarely causes significant damage."
	}
}

// Tone is the ticker text color class for a magnitude.
type Tone string

// Ticker tones, strongest first.
const (
	ToneRed    Tone = "red"
	ToneOrange Tone = "orange"
	ToneYellow Tone = "yellow"
	ToneGreen  Tone = "green"
	ToneWhite  Tone = "white"
)

// TickerTone maps magnitude to a ticker text tone.
func TickerTone(magnitude float64) Tone {
	switch {
	case magnitude >= 7:
		return ToneRed
	case magnitude >= 6:
		return ToneOrange
	case magnitude >= 5:
		return ToneYellow
	case magnitude >= 4:
		return ToneGreen
	default:
		return ToneWhite
	}
}
