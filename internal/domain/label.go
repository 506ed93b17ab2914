package domain

import (
	"context"
	"log/slog"
)

// EnrichLabel fills in a missing place name by reverse geocoding the
// epicentre. Events that already carry a label, a nil geocoder or a failed
// lookup leave the event unchanged; the display then falls back to
// UnknownLocation.
func EnrichLabel(ctx context.Context, event Event, geocoder ReverseGeocoder, logger *slog.Logger) Event {
	if geocoder == nil || event.Place != "" {
		return event
	}

	result, err := geocoder.ReverseGeocode(ctx, event.Lat, event.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"event_id", event.ID,
			"lat", event.Lat,
			"lon", event.Lon,
			"error", err,
		)
		return event
	}

	switch {
	case result.FormattedAddress != "":
		event.Place = result.FormattedAddress
	case result.PlaceName != "":
		event.Place = result.PlaceName
	default:
		return event
	}
	event.LabelSource = "reverse"
	return event
}
