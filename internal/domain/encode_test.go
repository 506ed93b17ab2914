package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRadius_MonotonicWithFloor(t *testing.T) {
	prev := Radius(0)
	assert.GreaterOrEqual(t, prev, RadiusFloor)

	for m := 0.1; m <= 10; m += 0.1 {
		r := Radius(m)
		assert.GreaterOrEqual(t, r, prev, "radius must not shrink at m=%.1f", m)
		assert.GreaterOrEqual(t, r, RadiusFloor)
		prev = r
	}
}

func TestRadius_LargeEventsDominate(t *testing.T) {
	assert.Greater(t, Radius(7)/Radius(3), 5.0)
	assert.InEpsilon(t, 4.0, Radius(0), 1e-9)
	assert.Equal(t, RadiusFloor, Radius(-2))
}

func TestColor_Buckets(t *testing.T) {
	now := baseTime
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"just now", 0, ColorUnderOneHour},
		{"59 minutes", 59 * time.Minute, ColorUnderOneHour},
		{"one hour", time.Hour, ColorUnderTwoHours},
		{"three hours", 3 * time.Hour, ColorUnderFourHours},
		{"four hours", 4 * time.Hour, ColorUnderEightHrs},
		{"eight hours", 8 * time.Hour, ColorOlder},
		{"two days", 48 * time.Hour, ColorOlder},
		{"future", -10 * time.Minute, ColorUnderOneHour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(now.Add(-tt.age), now))
		})
	}
}

func TestOpacity(t *testing.T) {
	now := baseTime

	assert.InDelta(t, 1.0, Opacity(now, now), 1e-9)
	assert.InDelta(t, 0.75, Opacity(now.Add(-6*time.Hour), now), 1e-9)
	assert.InDelta(t, MinOpacity, Opacity(now.Add(-12*time.Hour), now), 1e-9)
	assert.InDelta(t, MinOpacity, Opacity(now.Add(-72*time.Hour), now), 1e-9)

	prev := Opacity(now, now)
	for age := time.Duration(0); age <= 30*time.Hour; age += 15 * time.Minute {
		o := Opacity(now.Add(-age), now)
		assert.LessOrEqual(t, o, prev)
		assert.GreaterOrEqual(t, o, MinOpacity)
		prev = o
	}
}

func TestEncodeAll(t *testing.T) {
	events := []Event{
		{ID: "small", Magnitude: 2.5, Time: baseTime.Add(-30 * time.Minute)},
		{ID: "big", Magnitude: 6.1, Time: baseTime.Add(-5 * time.Hour), Place: "Off the coast of Chile"},
	}

	markers := EncodeAll(events, DefaultThreshold, baseTime)

	assert.Len(t, markers, 2)
	assert.Equal(t, "big", markers[0].EventID)
	assert.True(t, markers[0].Permanent)
	assert.Equal(t, ColorUnderEightHrs, markers[0].Color)
	assert.Equal(t, "Off the coast of Chile", markers[0].Label)

	assert.Equal(t, "small", markers[1].EventID)
	assert.False(t, markers[1].Permanent)
	assert.Equal(t, ColorUnderOneHour, markers[1].Color)
	assert.Equal(t, UnknownLocation, markers[1].Label)
}

func TestEncode_PermanentFollowsThreshold(t *testing.T) {
	e := Event{ID: "m5", Magnitude: 5.4, Time: baseTime}

	assert.True(t, Encode(e, 5.0, baseTime).Permanent)
	assert.False(t, Encode(e, 6.0, baseTime).Permanent)
	assert.True(t, Encode(e, 5.4, baseTime).Permanent, "the threshold itself is significant")
}
