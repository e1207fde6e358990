package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records pipeline outcomes. It satisfies weather.Recorder.
type Collector struct {
	Fetches           *prometheus.CounterVec
	Fallbacks         *prometheus.CounterVec
	NormalizeFailures *prometheus.CounterVec
	SnapshotWrites    *prometheus.CounterVec
	Duration          prometheus.Histogram
}

// New registers the pipeline collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_fetch_total",
				Help: "Upstream fetches by outcome (ok or the classified HTTP status)",
			},
			[]string{"outcome"},
		),
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_fallback_total",
				Help: "Snapshot store fallbacks after a failed fetch",
			},
			[]string{"result"},
		),
		NormalizeFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_normalize_failures_total",
				Help: "Payloads that could not be normalized",
			},
			[]string{"kind"},
		),
		SnapshotWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_snapshot_writes_total",
				Help: "Write-through attempts to the snapshot store",
			},
			[]string{"result"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weather_pipeline_duration_seconds",
				Help:    "Time spent in one pipeline run",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (c *Collector) FetchOutcome(outcome string) {
	c.Fetches.WithLabelValues(outcome).Inc()
}

func (c *Collector) Fallback(result string) {
	c.Fallbacks.WithLabelValues(result).Inc()
}

func (c *Collector) NormalizeFailure(kind string) {
	c.NormalizeFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) SnapshotWrite(result string) {
	c.SnapshotWrites.WithLabelValues(result).Inc()
}

func (c *Collector) PipelineDuration(d time.Duration) {
	c.Duration.Observe(d.Seconds())
}
