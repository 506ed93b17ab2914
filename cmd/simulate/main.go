// Command simulate replays a JSON event fixture through the rotation engine
// on a fake clock and prints every view the wall would show. It uses the
// real decoder and engine, so the output matches production behaviour.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -in data/mock/quakes_250328.json \
//	  -region 30,128,46,146 \
//	  -ticks 20 \
//	  -out directives.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
	"github.com/couchcryptid/quake-wall/internal/rotation"
)

type options struct {
	in        string
	out       string
	region    string
	now       string
	ticks     int
	threshold float64
	pageSize  int
	interval  time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.in, "in", "data/mock/quakes_250328.json", "JSON array of catalogue records")
	flag.StringVar(&opts.out, "out", "", "optional path to write every directive as JSON")
	flag.StringVar(&opts.region, "region", "", "regional box as lat1,lon1,lat2,lon2")
	flag.StringVar(&opts.now, "now", "", "simulation start time (RFC 3339); defaults to the newest event")
	flag.IntVar(&opts.ticks, "ticks", 0, "number of transitions; defaults to one full cycle")
	flag.Float64Var(&opts.threshold, "threshold", domain.DefaultThreshold, "significance threshold")
	flag.IntVar(&opts.pageSize, "page-size", domain.DefaultPageSize, "events per group")
	flag.DurationVar(&opts.interval, "interval", rotation.DefaultInterval, "display interval")
	flag.Parse()

	events, err := loadEvents(opts.in)
	if err != nil {
		return err
	}
	log.Printf("%s: %d events", opts.in, len(events))

	directives, err := simulate(context.Background(), events, opts)
	if err != nil {
		return err
	}
	printTimeline(os.Stdout, directives, opts.interval)

	if opts.out != "" {
		if err := writeJSON(opts.out, directives); err != nil {
			return fmt.Errorf("writing directives: %w", err)
		}
		log.Printf("wrote %d directives: %s", len(directives), opts.out)
	}
	return nil
}

func loadEvents(path string) ([]domain.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var records []domain.RawQuakeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	events := make([]domain.Event, 0, len(records))
	for i, rec := range records {
		e, err := domain.DecodeRecord(rec)
		if err != nil {
			log.Printf("skipping record %d: %v", i, err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// cycleLength is the number of ticks before the rotation returns to the
// initial state.
func cycleLength(groups []domain.Group, regional bool) int {
	if len(groups) == 0 {
		return 1
	}
	n := 0
	for _, g := range groups {
		n += 1 + len(g)
		if regional {
			n++
		}
	}
	return n
}

// simulate drives a real engine on a fake clock and collects one directive
// per transition.
func simulate(ctx context.Context, events []domain.Event, opts options) ([]rotation.Directive, error) {
	region, err := domain.ParseRegion(opts.region)
	if err != nil {
		return nil, err
	}

	start, err := startTime(opts.now, events)
	if err != nil {
		return nil, err
	}
	if opts.interval <= 0 {
		opts.interval = rotation.DefaultInterval
	}

	ticks := opts.ticks
	if ticks <= 0 {
		groups := domain.GroupSignificant(events, opts.threshold, opts.pageSize)
		ticks = cycleLength(groups, region != nil)
	}

	clock := clockwork.NewFakeClockAt(start)
	rec := &recorder{ch: make(chan rotation.Directive, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := rotation.New(rotation.Config{
		Threshold: opts.threshold,
		PageSize:  opts.pageSize,
		Interval:  opts.interval,
		Region:    region,
	}, logger, observability.NewMetricsForTesting(), rotation.WithClock(clock), rotation.WithPublisher(rec))
	engine.Update(events)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	directives := make([]rotation.Directive, 0, ticks+1)
	directives = append(directives, engine.Directive())
	for range ticks {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			return nil, err
		}
		clock.Advance(opts.interval)
		select {
		case d := <-rec.ch:
			directives = append(directives, d)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return directives, nil
}

func startTime(now string, events []domain.Event) (time.Time, error) {
	if now != "" {
		t, err := time.Parse(time.RFC3339, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid -now: %w", err)
		}
		return t.UTC(), nil
	}
	if len(events) == 0 {
		return time.Time{}, errors.New("no events and no -now given")
	}
	return domain.SortByRecency(events)[0].Time, nil
}

// recorder hands each published directive to the simulation loop.
type recorder struct {
	ch chan rotation.Directive
}

func (r *recorder) Publish(ctx context.Context, d rotation.Directive) error {
	select {
	case r.ch <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func printTimeline(w io.Writer, directives []rotation.Directive, interval time.Duration) {
	fmt.Fprintln(w, "\n=== Rotation timeline ===")
	for i, d := range directives {
		elapsed := time.Duration(i) * interval
		fmt.Fprintf(w, "%3d  +%-8s %-8s group=%d item=%d  %s\n",
			i, elapsed, d.Mode, d.State.GroupIndex, d.State.ItemIndex, describe(d))
	}
}

func describe(d rotation.Directive) string {
	switch d.Mode {
	case rotation.Detail:
		return fmt.Sprintf("M%.1f %s", d.Card.Event.Magnitude, d.Card.Label)
	case rotation.Regional:
		return fmt.Sprintf("%d markers in region, zoom %d", len(d.Markers), d.Viewport.Zoom)
	default:
		return fmt.Sprintf("%d markers, %d significant groups", len(d.Markers), d.GroupCount)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
