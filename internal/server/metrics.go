package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"traceview/internal/storage"
)

type viewMetrics struct {
	buildDuration *prometheus.HistogramVec
	buildFailures *prometheus.CounterVec
}

func newViewMetrics(reg prometheus.Registerer, registry *storage.Registry) *viewMetrics {
	m := &viewMetrics{
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "traceview",
			Name:      "view_build_seconds",
			Help:      "Time spent building a view.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"view"}),
		buildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traceview",
			Name:      "view_build_failures_total",
			Help:      "Number of view builds that returned an error.",
		}, []string{"view"}),
	}
	loaded := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "traceview",
		Name:      "datasets_loaded",
		Help:      "Number of datasets currently held in memory.",
	}, func() float64 {
		return float64(len(registry.Loaded()))
	})
	reg.MustRegister(m.buildDuration, m.buildFailures, loaded)
	return m
}

func (m *viewMetrics) observe(view string, elapsed time.Duration, err error) {
	m.buildDuration.WithLabelValues(view).Observe(elapsed.Seconds())
	if err != nil {
		m.buildFailures.WithLabelValues(view).Inc()
	}
}
