package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_wall"

// Metrics holds the Prometheus counters, histograms, and gauges for the display service.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	DecodeErrors     prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Snapshot metrics.
	SnapshotEvents prometheus.Gauge
	EventsPruned   prometheus.Counter

	// Rotation metrics.
	RotationTransitions *prometheus.CounterVec // labels: from, to
	RotationMode        *prometheus.GaugeVec   // labels: mode
	SignificantGroups   prometheus.Gauge
	RotationCorrections prometheus.Counter
	RotationReschedules prometheus.Counter
	DirectivesPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Ticker metrics.
	TickerWraps         prometheus.Counter
	TickerZoneRotations prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total source messages that could not be decoded into events.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the ingest pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-decode-apply cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_events",
			Help:      "Events currently held in the in-memory snapshot.",
		}),
		EventsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_pruned_total",
			Help:      "Events dropped from the snapshot after the retention window.",
		}),
		RotationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_transitions_total",
			Help:      "Display mode transitions by source and target mode.",
		}, []string{"from", "to"}),
		RotationMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rotation_mode",
			Help:      "1 for the display mode currently shown, 0 for the others.",
		}, []string{"mode"}),
		SignificantGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "significant_groups",
			Help:      "Pages of significant events in the current snapshot.",
		}),
		RotationCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_corrections_total",
			Help:      "Ticks that redirected a stale group or item index back to the world view.",
		}),
		RotationReschedules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_reschedules_total",
			Help:      "Pending display timers cancelled because the grouping changed.",
		}),
		DirectivesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directives_published_total",
			Help:      "Render directives handed to the publisher by outcome.",
		}, []string{"outcome"}),
		TickerWraps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticker_wraps_total",
			Help:      "Times the ticker scroll wrapped back to its origin.",
		}),
		TickerZoneRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticker_zone_rotations_total",
			Help:      "Timezone label changes on the ticker clock.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding of missing labels is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.DecodeErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SnapshotEvents,
		m.EventsPruned,
		m.RotationTransitions,
		m.RotationMode,
		m.SignificantGroups,
		m.RotationCorrections,
		m.RotationReschedules,
		m.DirectivesPublished,
		m.TickerWraps,
		m.TickerZoneRotations,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
