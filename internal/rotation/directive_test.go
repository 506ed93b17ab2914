package rotation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/rotation"
)

func directiveFixture() ([]domain.Event, []domain.Group, *domain.Region) {
	events := []domain.Event{
		{ID: "tokyo", Time: start.Add(-10 * time.Minute), Lat: 35.7, Lon: 139.7, Magnitude: 6.1, Place: "near Tokyo, Japan"},
		{ID: "chile", Time: start.Add(-3 * time.Hour), Lat: -23.6, Lon: -70.4, Magnitude: 7.2, Place: "Antofagasta, Chile"},
		{ID: "kyushu", Time: start.Add(-9 * time.Hour), Lat: 32.8, Lon: 130.7, Magnitude: 4.1},
	}
	groups := domain.GroupSignificant(events, domain.DefaultThreshold, domain.DefaultPageSize)
	japan := domain.RegionFromCorners([2][2]float64{{30, 128}, {46, 146}})
	return events, groups, japan
}

func TestBuildDirective_World(t *testing.T) {
	events, groups, region := directiveFixture()

	d := rotation.BuildDirective(rotation.Initial, events, groups, region, domain.DefaultThreshold, start)

	assert.Equal(t, rotation.World, d.Mode)
	assert.Equal(t, 1, d.GroupCount)
	assert.Equal(t, domain.DefaultZoom, d.Viewport.Zoom)
	assert.Equal(t, domain.WorldBounds, d.Viewport.Bounds)
	assert.Nil(t, d.Region)
	assert.Nil(t, d.Card)
	require.Len(t, d.Markers, 3)
	assert.Equal(t, "chile", d.Markers[0].EventID, "largest markers are listed first")
	assert.Equal(t, start, d.EmittedAt)
}

func TestBuildDirective_RegionalFiltersMarkers(t *testing.T) {
	events, groups, region := directiveFixture()

	d := rotation.BuildDirective(rotation.State{Mode: rotation.Regional}, events, groups, region, domain.DefaultThreshold, start)

	assert.Equal(t, rotation.Regional, d.Mode)
	assert.Same(t, region, d.Region)
	assert.Len(t, d.Events, 3, "the event list is not filtered")
	require.Len(t, d.Markers, 2)
	for _, m := range d.Markers {
		assert.NotEqual(t, "chile", m.EventID)
	}
	assert.Equal(t, domain.ViewportFor(region), d.Viewport)
}

func TestBuildDirective_Detail(t *testing.T) {
	events, groups, region := directiveFixture()

	d := rotation.BuildDirective(rotation.State{Mode: rotation.Detail, ItemIndex: 1}, events, groups, region, domain.DefaultThreshold, start)

	assert.Equal(t, rotation.Detail, d.Mode)
	require.NotNil(t, d.Card)
	assert.Equal(t, "chile", d.Card.Event.ID)
	assert.Equal(t, "Antofagasta, Chile", d.Card.Label)
	assert.Equal(t, 4, d.Card.Zoom)
	assert.Equal(t, domain.Point{Lat: -23.6, Lon: -70.4}, d.Viewport.Center)
	assert.Equal(t, 4, d.Viewport.Zoom)
	assert.Empty(t, d.Markers)
}

func TestBuildDirective_InvalidStateRendersWorld(t *testing.T) {
	events, groups, _ := directiveFixture()

	tests := []struct {
		name  string
		state rotation.State
	}{
		{"detail past group end", rotation.State{Mode: rotation.Detail, ItemIndex: 5}},
		{"detail past last group", rotation.State{Mode: rotation.Detail, GroupIndex: 3}},
		{"regional without region", rotation.State{Mode: rotation.Regional}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rotation.BuildDirective(tt.state, events, groups, nil, domain.DefaultThreshold, start)
			assert.Equal(t, rotation.World, d.Mode)
			assert.Equal(t, rotation.Initial, d.State)
			assert.Nil(t, d.Card)
		})
	}
}

func TestBuildDirective_EmptySnapshot(t *testing.T) {
	d := rotation.BuildDirective(rotation.Initial, nil, nil, nil, domain.DefaultThreshold, start)

	assert.Equal(t, rotation.World, d.Mode)
	assert.Zero(t, d.GroupCount)
	assert.Empty(t, d.Markers)
}

func TestBuildDirective_PermanentTooltipsFollowThreshold(t *testing.T) {
	events, _, _ := directiveFixture()
	groups := domain.GroupSignificant(events, 7.0, domain.DefaultPageSize)

	d := rotation.BuildDirective(rotation.Initial, events, groups, nil, 7.0, start)

	permanent := map[string]bool{}
	for _, m := range d.Markers {
		permanent[m.EventID] = m.Permanent
	}
	assert.Equal(t, map[string]bool{"chile": true, "tokyo": false, "kyushu": false}, permanent)
}

func TestDirective_JSONUsesModeNames(t *testing.T) {
	events, groups, region := directiveFixture()
	d := rotation.BuildDirective(rotation.State{Mode: rotation.Regional}, events, groups, region, domain.DefaultThreshold, start)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "regional", decoded["mode"])
	state, ok := decoded["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "regional", state["mode"])
}
