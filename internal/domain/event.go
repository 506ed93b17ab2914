package domain

import (
	"context"
	"time"
)

// UnknownLocation is shown when an event carries no usable place name.
const UnknownLocation = "Unknown Location"

// RawQuakeRecord represents the JSON document produced by the upstream poller.
// ID is left untyped because the catalogue emits both numeric and string IDs.
type RawQuakeRecord struct {
	ID             any            `json:"id"`
	SourceID       string         `json:"sourceId"`
	Timestamp      string         `json:"timestamp"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Magnitude      float64        `json:"magnitude"`
	Depth          float64        `json:"depth"`
	AdditionalData AdditionalData `json:"additionalData"`
}

// AdditionalData holds the optional descriptive fields of a catalogue record.
type AdditionalData struct {
	Place       string `json:"place,omitempty"`
	FlynnRegion string `json:"flynn_region,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Event is a decoded seismic event. Events are immutable once received;
// everything the display shows is derived from copies.
type Event struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"timestamp"`
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Magnitude float64   `json:"magnitude"`
	Depth     float64   `json:"depth"`
	Place     string    `json:"place,omitempty"`

	// LabelSource records where Place came from: "feed", "reverse" or "" when
	// no label is known.
	LabelSource string    `json:"label_source,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Label returns the best-effort place name, falling back to UnknownLocation.
func (e Event) Label() string {
	if e.Place == "" {
		return UnknownLocation
	}
	return e.Place
}

// Point returns the event's epicentre.
func (e Event) Point() Point {
	return Point{Lat: e.Lat, Lon: e.Lon}
}
