package runner

import (
	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	m := &metrics{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "styx_outcomes_total",
			Help: "Number of processed records by outcome kind.",
		}, []string{"kind"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "styx_record_duration_seconds",
			Help:    "Time spent fetching and persisting the asset of one record.",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "styx_records_in_flight",
			Help: "Number of records currently being processed.",
		}),
	}

	for _, k := range outcome.Kinds() {
		m.outcomes.WithLabelValues(k.String())
	}

	return m
}
