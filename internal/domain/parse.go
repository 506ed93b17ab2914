package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	errMissingID        = errors.New("missing event id")
	errMissingTimestamp = errors.New("missing timestamp")
)

// ParseRawEvent deserializes a RawEvent's value into an Event.
// It expects the catalogue JSON produced by the upstream poller.
func ParseRawEvent(raw RawEvent) (Event, error) {
	var rec RawQuakeRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Event{}, fmt.Errorf("parse raw event: %w", err)
	}
	event, err := DecodeRecord(rec)
	if err != nil {
		return Event{}, fmt.Errorf("parse raw event: %w", err)
	}
	return event, nil
}

// DecodeRecord validates a catalogue record and converts it into an Event.
func DecodeRecord(rec RawQuakeRecord) (Event, error) {
	id := normalizeID(rec.ID, rec.SourceID)
	if id == "" {
		return Event{}, errMissingID
	}

	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", id, err)
	}

	if rec.Latitude < -90 || rec.Latitude > 90 {
		return Event{}, fmt.Errorf("event %s: latitude %g out of range", id, rec.Latitude)
	}
	if rec.Longitude < -180 || rec.Longitude > 180 {
		return Event{}, fmt.Errorf("event %s: longitude %g out of range", id, rec.Longitude)
	}

	event := Event{
		ID:        id,
		Time:      ts,
		Lat:       rec.Latitude,
		Lon:       rec.Longitude,
		Magnitude: clampNonNegative(rec.Magnitude),
		Depth:     clampNonNegative(rec.Depth),
		Place:     pickPlace(rec.AdditionalData),
	}
	if event.Place != "" {
		event.LabelSource = "feed"
	}
	event.ReceivedAt = clock.Now().UTC()
	return event, nil
}

// normalizeID renders numeric catalogue IDs without exponent notation and
// falls back to sourceId when id is absent.
func normalizeID(id any, sourceID string) string {
	switch v := id.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(sourceID)
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds and
// returns the instant in UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errMissingTimestamp
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// pickPlace prefers the catalogue place description over the Flinn-Engdahl region.
func pickPlace(d AdditionalData) string {
	if p := strings.TrimSpace(d.Place); p != "" {
		return p
	}
	return strings.TrimSpace(d.FlynnRegion)
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
