package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the domain Metrics interface with Prometheus collectors.
type Recorder struct {
	scans        *prometheus.HistogramVec
	outcomes     *prometheus.CounterVec
	snapshots    *prometheus.CounterVec
	snapshotRows prometheus.Counter
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the collectors on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		scans: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candlescan_scan_duration_seconds",
				Help:    "Time to evaluate one pattern over every price file",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"pattern"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlescan_scan_outcomes_total",
				Help: "Per-symbol scan outcomes by status (bullish, bearish, neutral, failed)",
			},
			[]string{"pattern", "status"},
		),
		snapshots: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlescan_snapshot_runs_total",
				Help: "Snapshot refreshes by result",
			},
			[]string{"result"},
		),
		snapshotRows: f.NewCounter(
			prometheus.CounterOpts{
				Name: "candlescan_snapshot_rows_total",
				Help: "Daily rows written by snapshot refreshes",
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlescan_errors_total",
				Help: "Errors by kind",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candlescan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordScan(pattern string, seconds float64) {
	r.scans.WithLabelValues(pattern).Observe(seconds)
}

func (r *Recorder) RecordOutcome(pattern, status string) {
	r.outcomes.WithLabelValues(pattern, status).Inc()
}

func (r *Recorder) RecordSnapshot(result string) {
	r.snapshots.WithLabelValues(result).Inc()
}

func (r *Recorder) AddSnapshotRows(n int) {
	r.snapshotRows.Add(float64(n))
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Noop discards everything. Tests use it.
type Noop struct{}

func (Noop) RecordScan(string, float64)    {}
func (Noop) RecordOutcome(string, string)  {}
func (Noop) RecordSnapshot(string)         {}
func (Noop) AddSnapshotRows(int)           {}
func (Noop) RecordError(string)            {}
func (Noop) RecordLatency(string, float64) {}
