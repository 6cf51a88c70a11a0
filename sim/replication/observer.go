package replication

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// Observer receives replication lifecycle events. Methods are called from
// the runner's worker goroutines and must be safe for concurrent use.
type Observer interface {
	ReplicationStarted(rep int)
	ReplicationFinished(rep int, wall time.Duration, s asu.Summary)
	ReplicationFailed(rep int, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ReplicationStarted(int)                             {}
func (NopObserver) ReplicationFinished(int, time.Duration, asu.Summary) {}
func (NopObserver) ReplicationFailed(int, error)                       {}

// PromObserver exports replication progress as Prometheus metrics.
type PromObserver struct {
	started  prometheus.Counter
	finished prometheus.Counter
	failed   prometheus.Counter
	running  prometheus.Gauge
	wall     prometheus.Histogram
	arrivals *prometheus.CounterVec
	queueHrs prometheus.Histogram
}

// NewPromObserver creates the observer's collectors and registers them
// with reg.
func NewPromObserver(reg prometheus.Registerer) (*PromObserver, error) {
	o := &PromObserver{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asu_replications_started_total",
			Help: "Replications started.",
		}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asu_replications_finished_total",
			Help: "Replications that ran to their horizon.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "asu_replications_failed_total",
			Help: "Replications that ended in an error.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asu_replications_running",
			Help: "Replications currently executing.",
		}),
		wall: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asu_replication_wall_seconds",
			Help:    "Wall-clock duration of one replication.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asu_patient_arrivals_total",
			Help: "Patients counted in finished replications, by class.",
		}, []string{"class"}),
		queueHrs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asu_trimmed_mean_queue_hours",
			Help:    "Per-replication trimmed mean queue time in hours.",
			Buckets: prometheus.LinearBuckets(0, 6, 12),
		}),
	}
	for _, c := range []prometheus.Collector{o.started, o.finished, o.failed, o.running, o.wall, o.arrivals, o.queueHrs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PromObserver) ReplicationStarted(int) {
	o.started.Inc()
	o.running.Inc()
}

func (o *PromObserver) ReplicationFinished(_ int, wall time.Duration, s asu.Summary) {
	o.running.Dec()
	o.finished.Inc()
	o.wall.Observe(wall.Seconds())
	for _, c := range workload.Classes {
		o.arrivals.WithLabelValues(string(c)).Add(float64(s.Arrivals[c]))
	}
	if s.TrimmedMeanQueueHrs.Defined {
		o.queueHrs.Observe(s.TrimmedMeanQueueHrs.Value)
	}
}

func (o *PromObserver) ReplicationFailed(int, error) {
	o.running.Dec()
	o.failed.Inc()
}
