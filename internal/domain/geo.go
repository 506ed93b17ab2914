package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	boundsMargin = 0.10
	// DefaultZoom is the world view zoom level.
	DefaultZoom = 2
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is an axis-aligned lat/lon rectangle, always normalized so that
// SouthWest holds the minimum of both axes.
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Region is the optional bounding box of the regional view. A nil *Region
// means no regional variant is configured.
type Region struct {
	Bounds
}

// Viewport bundles every map parameter derived from a region.
type Viewport struct {
	Center Point  `json:"center"`
	Zoom   int    `json:"zoom"`
	Bounds Bounds `json:"bounds"`
}

// WorldBounds covers the whole globe.
var WorldBounds = Bounds{
	SouthWest: Point{Lat: -90, Lon: -180},
	NorthEast: Point{Lat: 90, Lon: 180},
}

// NewRegion builds a region from two opposite corners in any order.
// Degenerate and inverted corners are normalized rather than rejected.
func NewRegion(a, b Point) *Region {
	return &Region{Bounds: Bounds{
		SouthWest: Point{Lat: math.Min(a.Lat, b.Lat), Lon: math.Min(a.Lon, b.Lon)},
		NorthEast: Point{Lat: math.Max(a.Lat, b.Lat), Lon: math.Max(a.Lon, b.Lon)},
	}}
}

// ParseRegion reads "lat1,lon1,lat2,lon2". An empty string yields a nil region.
func ParseRegion(s string) (*Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, errors.New("region must have four comma-separated values")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("region value %q: %w", p, err)
		}
		v[i] = f
	}
	return RegionFromCorners([2][2]float64{{v[0], v[1]}, {v[2], v[3]}}), nil
}

// RegionFromCorners builds a region from the [[lat1,lon1],[lat2,lon2]] form.
func RegionFromCorners(c [2][2]float64) *Region {
	return NewRegion(Point{Lat: c[0][0], Lon: c[0][1]}, Point{Lat: c[1][0], Lon: c[1][1]})
}

// ExpandedBounds grows the region by 10% of its span on each axis, clamped
// to valid coordinates. A nil region yields WorldBounds.
func ExpandedBounds(r *Region) Bounds {
	if r == nil {
		return WorldBounds
	}
	b := r.normalized()
	latPad := (b.NorthEast.Lat - b.SouthWest.Lat) * boundsMargin
	lonPad := (b.NorthEast.Lon - b.SouthWest.Lon) * boundsMargin
	return Bounds{
		SouthWest: Point{
			Lat: clamp(b.SouthWest.Lat-latPad, -90, 90),
			Lon: clamp(b.SouthWest.Lon-lonPad, -180, 180),
		},
		NorthEast: Point{
			Lat: clamp(b.NorthEast.Lat+latPad, -90, 90),
			Lon: clamp(b.NorthEast.Lon+lonPad, -180, 180),
		},
	}
}

// zoomSteps maps the larger axis span (degrees) to a zoom level. The first
// step whose span is exceeded wins.
var zoomSteps = []struct {
	span float64
	zoom int
}{
	{120, 2},
	{60, 3},
	{30, 4},
	{15, 5},
	{7, 6},
	{3, 7},
}

const maxRegionZoom = 8

// BoundsZoom picks a zoom level for the region: the smaller the span, the
// higher the zoom. A nil region yields DefaultZoom.
func BoundsZoom(r *Region) int {
	if r == nil {
		return DefaultZoom
	}
	b := r.normalized()
	span := math.Max(b.NorthEast.Lat-b.SouthWest.Lat, b.NorthEast.Lon-b.SouthWest.Lon)
	for _, s := range zoomSteps {
		if span > s.span {
			return s.zoom
		}
	}
	return maxRegionZoom
}

// WithinBounds reports whether the point lies inside the region's expanded
// bounds, edges included. Every point is within a nil region.
func WithinBounds(lat, lon float64, r *Region) bool {
	if r == nil {
		return true
	}
	b := ExpandedBounds(r)
	return lat >= b.SouthWest.Lat && lat <= b.NorthEast.Lat &&
		lon >= b.SouthWest.Lon && lon <= b.NorthEast.Lon
}

// Center returns the midpoint of the region's corners, or the origin for nil.
func Center(r *Region) Point {
	if r == nil {
		return Point{}
	}
	b := r.normalized()
	return Point{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lon: (b.SouthWest.Lon + b.NorthEast.Lon) / 2,
	}
}

// ViewportFor bundles center, zoom and expanded bounds for a region.
func ViewportFor(r *Region) Viewport {
	return Viewport{
		Center: Center(r),
		Zoom:   BoundsZoom(r),
		Bounds: ExpandedBounds(r),
	}
}

// FilterWithin returns the events inside the region's expanded bounds.
func FilterWithin(events []Event, r *Region) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if WithinBounds(e.Lat, e.Lon, r) {
			out = append(out, e)
		}
	}
	return out
}

// normalized guards against regions built as struct literals with swapped corners.
func (r *Region) normalized() Bounds {
	return NewRegion(r.SouthWest, r.NorthEast).Bounds
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
