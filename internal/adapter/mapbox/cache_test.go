package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Mandalay, Myanmar", PlaceName: "Mandalay"},
	}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ReverseGeocode(context.Background(), 22.011, 95.936)
	require.NoError(t, err)
	assert.Equal(t, "Mandalay", r1.PlaceName)

	r2, err := cached.ReverseGeocode(context.Background(), 22.011, 95.936)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_NearbyAftershocksShareEntry(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{PlaceName: "Mandalay"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 22.0112, 95.9361)
	_, _ = cached.ReverseGeocode(context.Background(), 22.0088, 95.9355)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{PlaceName: "Somewhere"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 22.01, 95.94)
	_, _ = cached.ReverseGeocode(context.Background(), 36.20, 141.11)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyAndErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), -20.56, -174.41)
	_, _ = cached.ReverseGeocode(context.Background(), -20.56, -174.41)
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("rate limited")
	inner.result = domain.GeocodingResult{PlaceName: "ignored"}
	_, err := cached.ReverseGeocode(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Zero(t, cached.cache.size())
}

func TestCacheKey_Rounds(t *testing.T) {
	assert.Equal(t, "rev:22.01,95.94", cacheKey(22.011, 95.936))
	assert.Equal(t, "rev:22.01,95.94", cacheKey(22.0149, 95.9351))
	assert.Equal(t, "rev:-23.61,-70.39", cacheKey(-23.612, -70.391))
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.PlaceName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.put("c", domain.GeocodingResult{PlaceName: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A1"})
	c.put("a", domain.GeocodingResult{PlaceName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.PlaceName)
	assert.Equal(t, 1, c.size())
}
