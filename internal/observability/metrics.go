package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sensor_feed"

// Metrics holds the Prometheus counters, histograms, and gauges for the feed pipeline.
type Metrics struct {
	LinesRead          prometheus.Counter
	LinesIgnored       prometheus.Counter
	SnapshotsAccepted  prometheus.Counter
	MessagesDiscarded  *prometheus.CounterVec // labels: reason={decode,malformed}
	PipelineState      prometheus.Gauge       // 0 awaiting, 1 streaming, 2 closed
	SessionsClosed     *prometheus.CounterVec // labels: reason
	SnapshotDuration   prometheus.Histogram
	SnapshotPoints     prometheus.Gauge
	PointsBySeverity   *prometheus.GaugeVec // labels: severity={ok,warning,critical}
	FieldMean          *prometheus.GaugeVec // labels: field
	SinkPublishErrors  *prometheus.CounterVec
	WeatherRequests    *prometheus.CounterVec   // labels: endpoint={weather,uvi}, outcome={success,error}
	WeatherAPIDuration *prometheus.HistogramVec // labels: endpoint
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Total lines read from the feed.",
		}),
		LinesIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_ignored_total",
			Help:      "Lines skipped because they carry no data prefix.",
		}),
		SnapshotsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_accepted_total",
			Help:      "Snapshots parsed and published.",
		}),
		MessagesDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_discarded_total",
			Help:      "Data lines discarded by reason.",
		}, []string{"reason"}),
		PipelineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_state",
			Help:      "0 awaiting first snapshot, 1 streaming, 2 closed.",
		}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Feed sessions ended, by closure reason.",
		}, []string{"reason"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_processing_duration_seconds",
			Help:      "Time to parse, aggregate, classify and publish one snapshot.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SnapshotPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_points",
			Help:      "Number of points in the current snapshot.",
		}),
		PointsBySeverity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "points",
			Help:      "Points in the current snapshot by severity.",
		}, []string{"severity"}),
		FieldMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_mean",
			Help:      "Mean reading per field in the current snapshot.",
		}, []string{"field"}),
		SinkPublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_publish_errors_total",
			Help:      "Failed result publications by sink.",
		}, []string{"sink"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Current-conditions API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Current-conditions API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LinesRead,
		m.LinesIgnored,
		m.SnapshotsAccepted,
		m.MessagesDiscarded,
		m.PipelineState,
		m.SessionsClosed,
		m.SnapshotDuration,
		m.SnapshotPoints,
		m.PointsBySeverity,
		m.FieldMean,
		m.SinkPublishErrors,
		m.WeatherRequests,
		m.WeatherAPIDuration,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates Metrics registered on reg. Offline tools use
// it to keep their counters off the default registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}
