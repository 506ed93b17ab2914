package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-wall/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-wall/internal/adapter/kafka"
	"github.com/couchcryptid/quake-wall/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-wall/internal/config"
	"github.com/couchcryptid/quake-wall/internal/domain"
	"github.com/couchcryptid/quake-wall/internal/observability"
	"github.com/couchcryptid/quake-wall/internal/pipeline"
	"github.com/couchcryptid/quake-wall/internal/rotation"
	"github.com/couchcryptid/quake-wall/internal/store"
	"github.com/couchcryptid/quake-wall/internal/ticker"
)

// pruneInterval is how often expired events are dropped when no new
// events arrive.
const pruneInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.ReverseGeocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	engine := rotation.New(rotation.Config{
		Threshold: cfg.Threshold,
		PageSize:  cfg.PageSize,
		Interval:  cfg.DisplayInterval,
		Region:    cfg.Region,
	}, logger, metrics, rotation.WithClock(clock), rotation.WithPublisher(writer))

	tk, err := ticker.New(ticker.Config{
		Speed:         cfg.TickerSpeed,
		FrameInterval: cfg.TickerFrameInterval,
		Timezones:     cfg.Timezones,
		Dwell:         cfg.TickerDwell,
		Gap:           cfg.TickerGap,
	}, clock, logger, metrics)
	if err != nil {
		logger.Error("failed to build ticker", "error", err)
		os.Exit(1)
	}

	st := store.New(cfg.EventRetention, logger, metrics)
	st.Subscribe(engine)
	st.Subscribe(tk)

	reader := kafkaadapter.NewReader(cfg, logger)
	decoder := pipeline.NewDecoder(geocoder, logger)
	loader := pipeline.NewSnapshotLoader(st, clock)

	p := pipeline.New(reader, decoder, loader, clock, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, engine, tk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	})
	wg.Go(func() {
		if err := engine.Run(ctx); err != nil {
			logger.Error("rotation error", "error", err)
		}
	})
	wg.Go(func() {
		if err := tk.Run(ctx); err != nil {
			logger.Error("ticker error", "error", err)
		}
	})
	wg.Go(func() { st.RunPruner(ctx, clock, pruneInterval) })

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("workers did not stop before shutdown timeout")
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
