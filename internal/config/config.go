package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/quake-wall/internal/domain"
)

// Config holds all service settings, populated from environment variables
// and an optional display file.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Rotation settings.
	Threshold       float64
	PageSize        int
	DisplayInterval time.Duration
	Region          *domain.Region
	EventRetention  time.Duration

	// Ticker settings.
	TickerSpeed         float64
	TickerFrameInterval time.Duration
	Timezones           []domain.Timezone
	TickerDwell         time.Duration
	TickerGap           time.Duration

	// Mapbox reverse geocoding for events without a place name.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// envSettings lists the variables parsed by struct tag. Brokers, batching and
// the shutdown timeout go through the shared config helpers instead.
type envSettings struct {
	KafkaSourceTopic string `env:"KAFKA_SOURCE_TOPIC" envDefault:"seismic-events"`
	KafkaSinkTopic   string `env:"KAFKA_SINK_TOPIC" envDefault:"display-directives"`
	KafkaGroupID     string `env:"KAFKA_GROUP_ID" envDefault:"quake-wall"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"json"`

	Threshold       float64       `env:"SIGNIFICANCE_THRESHOLD" envDefault:"5.0"`
	PageSize        int           `env:"GROUP_PAGE_SIZE" envDefault:"4"`
	DisplayInterval time.Duration `env:"DISPLAY_INTERVAL" envDefault:"15s"`
	Region          string        `env:"REGION"`
	EventRetention  time.Duration `env:"EVENT_RETENTION" envDefault:"24h"`

	TickerSpeed         float64       `env:"TICKER_SPEED" envDefault:"1"`
	TickerFrameInterval time.Duration `env:"TICKER_FRAME_INTERVAL" envDefault:"16ms"`
	TickerTimezones     []string      `env:"TICKER_TIMEZONES" envSeparator:";"`
	TickerDwell         time.Duration `env:"TICKER_DWELL" envDefault:"10s"`
	TickerGap           time.Duration `env:"TICKER_GAP" envDefault:"150ms"`

	// DisplayFile optionally points at a YAML file overriding the region and
	// the timezone rotation.
	DisplayFile string `env:"DISPLAY_FILE"`

	MapboxToken string `env:"MAPBOX_TOKEN"`
	// MapboxEnabled stays nil when unset; a token then enables geocoding.
	MapboxEnabled   *bool         `env:"MAPBOX_ENABLED"`
	MapboxTimeout   time.Duration `env:"MAPBOX_TIMEOUT" envDefault:"5s"`
	MapboxCacheSize int           `env:"MAPBOX_CACHE_SIZE" envDefault:"1000"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	es, err := env.ParseAs[envSettings]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	region, err := domain.ParseRegion(es.Region)
	if err != nil {
		return nil, fmt.Errorf("invalid REGION: %w", err)
	}
	timezones, err := parseTimezones(es.TickerTimezones)
	if err != nil {
		return nil, fmt.Errorf("invalid TICKER_TIMEZONES: %w", err)
	}

	mapboxEnabled := es.MapboxToken != ""
	if es.MapboxEnabled != nil {
		mapboxEnabled = *es.MapboxEnabled
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   es.KafkaSourceTopic,
		KafkaSinkTopic:     es.KafkaSinkTopic,
		KafkaGroupID:       es.KafkaGroupID,
		HTTPAddr:           es.HTTPAddr,
		LogLevel:           es.LogLevel,
		LogFormat:          es.LogFormat,
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		Threshold:       es.Threshold,
		PageSize:        es.PageSize,
		DisplayInterval: es.DisplayInterval,
		Region:          region,
		EventRetention:  es.EventRetention,

		TickerSpeed:         es.TickerSpeed,
		TickerFrameInterval: es.TickerFrameInterval,
		Timezones:           timezones,
		TickerDwell:         es.TickerDwell,
		TickerGap:           es.TickerGap,

		MapboxToken:     es.MapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   es.MapboxTimeout,
		MapboxCacheSize: es.MapboxCacheSize,
	}

	if es.DisplayFile != "" {
		display, err := LoadDisplayFile(es.DisplayFile)
		if err != nil {
			return nil, err
		}
		display.apply(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.Threshold < 0 {
		return errors.New("SIGNIFICANCE_THRESHOLD must not be negative")
	}
	if cfg.PageSize <= 0 {
		return errors.New("GROUP_PAGE_SIZE must be positive")
	}
	if cfg.DisplayInterval <= 0 {
		return errors.New("DISPLAY_INTERVAL must be positive")
	}
	if cfg.EventRetention <= 0 {
		return errors.New("EVENT_RETENTION must be positive")
	}
	if cfg.TickerSpeed <= 0 {
		return errors.New("TICKER_SPEED must be positive")
	}
	if cfg.TickerFrameInterval <= 0 {
		return errors.New("TICKER_FRAME_INTERVAL must be positive")
	}
	if cfg.TickerDwell <= 0 || cfg.TickerGap < 0 || cfg.TickerGap >= cfg.TickerDwell {
		return errors.New("TICKER_DWELL must be positive and longer than TICKER_GAP")
	}
	if cfg.MapboxTimeout <= 0 {
		return errors.New("invalid MAPBOX_TIMEOUT")
	}
	if cfg.MapboxCacheSize <= 0 {
		return errors.New("MAPBOX_CACHE_SIZE must be positive")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

// parseTimezones reads "Name=Area/City" entries. No entries yields the
// default rotation.
func parseTimezones(specs []string) ([]domain.Timezone, error) {
	var zones []domain.Timezone
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		name, zone, ok := strings.Cut(s, "=")
		name, zone = strings.TrimSpace(name), strings.TrimSpace(zone)
		if !ok || name == "" || zone == "" {
			return nil, fmt.Errorf("entry %q must look like Name=Area/City", s)
		}
		zones = append(zones, domain.Timezone{Name: name, Zone: zone})
	}
	if len(zones) == 0 {
		return domain.DefaultTimezones(), nil
	}
	return zones, nil
}
