// Package domain models seismic events and the pure derivations the display
// builds from them.
//
// # Data Source
//
// Events originate from an upstream poller that mirrors a public earthquake
// catalogue and publishes one JSON document per event to the Kafka source
// topic. The poller owns fetching, retries and deduplication against the
// catalogue; this service only sees the decoded feed.
//
// # Feed Conventions
//
// Identity:
//
//	"id" is the catalogue's stable identifier and may be a JSON number or a
//	string. "sourceId" is used when "id" is missing. The same ID is re-sent
//	whenever the catalogue revises an event, so consumers upsert by ID.
//
// Time format:
//
//	"timestamp" is RFC 3339 with an explicit offset, e.g.
//	"2025-03-28T06:20:52.715Z". All times are normalized to UTC.
//
// Coordinates:
//
//	"latitude" ∈ [-90, 90] and "longitude" ∈ [-180, 180], signed decimal
//	degrees. Records outside these ranges are rejected.
//
// Magnitude and depth:
//
//	"magnitude" is non-negative, typically 0–9. "depth" is kilometres below
//	the surface. Negative values occasionally appear for shallow events near
//	the reference ellipsoid and are clamped to zero.
//
// Location label:
//
//	"additionalData.place" is a human readable description
//	("12 km SSW of Kainantu, Papua New Guinea"). When absent the Flinn-Engdahl
//	region name in "additionalData.flynn_region" is used instead. Events with
//	neither render as [UnknownLocation].
//
// # Significance and Paging
//
// An event is significant when its magnitude is at or above the configured
// threshold (5.0 by default). Significant events are ordered most recent
// first and split into fixed-size pages; see [Group].
//
// # Visual Encoding
//
// Marker radius grows exponentially with magnitude, marker color steps
// through five recency buckets and marker opacity fades linearly over a day.
// All encoders take an explicit "now" so they are independent of wall time;
// see [Radius], [Color] and [Opacity].
package domain
