package ticker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
	"github.com/couchcryptid/quake-wall/internal/ticker"
)

var start = time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvents() []domain.Event {
	return []domain.Event{
		{ID: "old", Time: start.Add(-5 * time.Hour), Magnitude: 4.2, Place: "Central Alaska"},
		{ID: "new", Time: start.Add(-2 * time.Minute), Magnitude: 7.1},
		{ID: "mid", Time: start.Add(-1 * time.Hour), Magnitude: 5.6, Place: "Kermadec Islands"},
	}
}

func runInBackground(t *testing.T, run func(context.Context) error) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return ctx
}

// --- items ---

func TestItems_RecencyOrderAndTone(t *testing.T) {
	items := ticker.Items(sampleEvents())

	require.Len(t, items, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{items[0].EventID, items[1].EventID, items[2].EventID})
	assert.Equal(t, domain.ToneRed, items[0].Tone)
	assert.Equal(t, domain.ToneYellow, items[1].Tone)
	assert.Equal(t, domain.ToneGreen, items[2].Tone)
	assert.Equal(t, "M7.1 • Unknown Location", items[0].Text)
	assert.Equal(t, "M5.6 • Kermadec Islands", items[1].Text)
}

func TestItems_DoesNotMutateInput(t *testing.T) {
	events := sampleEvents()
	ticker.Items(events)
	assert.Equal(t, "old", events[0].ID)
}

func TestDuplicate(t *testing.T) {
	items := ticker.Items(sampleEvents())
	dup := ticker.Duplicate(items)

	require.Len(t, dup, 6)
	assert.Equal(t, items, dup[:3])
	assert.Equal(t, items, dup[3:])
	assert.Empty(t, ticker.Duplicate(nil))
}

func TestEstimateWidth(t *testing.T) {
	items := []ticker.Item{{Text: "abcd"}, {Text: "é"}}
	assert.InDelta(t, 4*10+32+1*10+32, ticker.EstimateWidth(items, 0), 1e-9)
	assert.InDelta(t, 4*2+32+2+32, ticker.EstimateWidth(items, 2), 1e-9)
}

// --- scroller ---

func TestScroller_WrapsAfterOneCopy(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	s := ticker.NewScroller(2, 0, clockwork.NewFakeClock(), discardLogger(), metrics)
	s.Update(sampleEvents())
	s.SetContentWidth(5)

	assert.False(t, s.Advance())
	assert.InDelta(t, -2, s.Position(), 1e-9)
	assert.False(t, s.Advance())
	assert.True(t, s.Advance(), "|−6| ≥ 5 wraps")
	assert.Zero(t, s.Position())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TickerWraps), 0)
}

func TestScroller_EmptyListStaysAtOrigin(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	s := ticker.NewScroller(1, 0, clockwork.NewFakeClock(), discardLogger(), metrics)

	for range 10 {
		assert.False(t, s.Advance())
	}
	assert.Zero(t, s.Position())
	assert.Zero(t, testutil.ToFloat64(metrics.TickerWraps))
}

func TestScroller_MeasuredWidthSurvivesUpdate(t *testing.T) {
	s := ticker.NewScroller(1, 0, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())
	s.SetContentWidth(400)
	s.Update(sampleEvents())
	assert.InDelta(t, 400, s.ContentWidth(), 0)

	s.SetContentWidth(0)
	assert.InDelta(t, ticker.EstimateWidth(ticker.Items(sampleEvents()), 0), s.ContentWidth(), 1e-9)
}

func TestScroller_RunAdvancesPerFrame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := ticker.NewScroller(1, 16*time.Millisecond, clock, discardLogger(), observability.NewMetricsForTesting())
	s.Update(sampleEvents())
	ctx := runInBackground(t, s.Run)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	for i := 1; i <= 5; i++ {
		clock.Advance(16 * time.Millisecond)
		want := -float64(i)
		require.Eventually(t, func() bool { return s.Position() == want }, time.Second, time.Millisecond)
	}
}

func TestScroller_RunAfterStop(t *testing.T) {
	s := ticker.NewScroller(1, 0, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	require.ErrorIs(t, s.Run(context.Background()), ticker.ErrStopped)
	s.Update(sampleEvents())
	assert.Empty(t, s.Items())
	assert.False(t, s.Advance())
}

// --- zones ---

func TestNewZoneRotator_DefaultsAndUnknownZone(t *testing.T) {
	z, err := ticker.NewZoneRotator(nil, 0, 0, clockwork.NewFakeClockAt(start), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	cur := z.Current()
	assert.Equal(t, "Los Angeles", cur.Name)
	assert.True(t, cur.Visible)
	assert.Equal(t, "05:00:00", cur.Clock, "PDT is UTC-7 in late March")

	_, err = ticker.NewZoneRotator([]domain.Timezone{{Name: "Nowhere", Zone: "Mars/Olympus_Mons"}}, 0, 0,
		clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}

func TestZoneRotator_DwellAndGap(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	metrics := observability.NewMetricsForTesting()
	zones := []domain.Timezone{
		{Name: "UTC", Zone: "UTC"},
		{Name: "Tokyo", Zone: "Asia/Tokyo"},
	}
	z, err := ticker.NewZoneRotator(zones, 10*time.Second, 150*time.Millisecond, clock, discardLogger(), metrics)
	require.NoError(t, err)
	ctx := runInBackground(t, z.Run)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Second)
	// The gap timer joins the dwell ticker once the label is hidden.
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	assert.False(t, z.Current().Visible)
	assert.Equal(t, "UTC", z.Current().Name)

	clock.Advance(150 * time.Millisecond)
	require.Eventually(t, func() bool { return z.Current().Visible }, time.Second, time.Millisecond)
	cur := z.Current()
	assert.Equal(t, "Tokyo", cur.Name)
	assert.Equal(t, "21:00:10", cur.Clock)

	// Wraps back to the first zone on the next cycle.
	clock.Advance(10*time.Second - 150*time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(150 * time.Millisecond)
	require.Eventually(t, func() bool { return z.Index() == 0 && z.Current().Visible }, time.Second, time.Millisecond)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.TickerZoneRotations), 0)
}

// --- ticker ---

func TestTicker_Frame(t *testing.T) {
	tk, err := ticker.New(ticker.Config{}, clockwork.NewFakeClockAt(start), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	tk.Update(sampleEvents())
	tk.Scroller().SetContentWidth(100)
	tk.Scroller().Advance()

	f := tk.Frame()
	assert.Len(t, f.Items, 6)
	assert.InDelta(t, -1, f.Offset, 1e-9)
	assert.InDelta(t, 100, f.ContentWidth, 0)
	assert.Equal(t, "Los Angeles", f.Zone.Name)
}

func TestTicker_RunStopsOnCancel(t *testing.T) {
	tk, err := ticker.New(ticker.Config{}, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, tk.Run(ctx))
	require.ErrorIs(t, tk.Run(context.Background()), ticker.ErrStopped)
}

func TestTicker_RunReportsStoppedScroller(t *testing.T) {
	tk, err := ticker.New(ticker.Config{}, clockwork.NewFakeClock(), discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, tk.Scroller().Run(ctx))

	// The zone rotator still runs and returns cleanly; the scroller's error
	// surfaces anyway.
	err = tk.Run(ctx)
	require.ErrorIs(t, err, ticker.ErrStopped)
	assert.Equal(t, ticker.ErrStopped.Error(), err.Error())
}
