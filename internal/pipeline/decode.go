package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quake-wall/internal/domain"
)

// EventDecoder implements Decoder using the domain parser with optional
// reverse-geocoded labels.
type EventDecoder struct {
	geocoder domain.ReverseGeocoder
	logger   *slog.Logger
}

// NewDecoder creates an EventDecoder. Pass a nil geocoder to keep missing
// labels on the "Unknown Location" fallback.
func NewDecoder(geocoder domain.ReverseGeocoder, logger *slog.Logger) *EventDecoder {
	return &EventDecoder{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (d *EventDecoder) Decode(ctx context.Context, raw domain.RawEvent) (domain.Event, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.EnrichLabel(ctx, event, d.geocoder, d.logger), nil
}
