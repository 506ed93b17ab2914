package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// ReverseGeocoder resolves coordinates to a place description.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
