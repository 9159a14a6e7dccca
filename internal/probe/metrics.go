// Package probe exposes run health: Prometheus metrics, the metrics HTTP
// server, and the pre-flight environment reachability check.
package probe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for bankprobe.
type Metrics struct {
	ChecksTotal    *prometheus.CounterVec
	CheckDuration  *prometheus.HistogramVec
	ChecksInFlight prometheus.Gauge
	RetriesTotal   *prometheus.CounterVec
	EnvironmentUp  *prometheus.GaugeVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bankprobe",
				Name:      "checks_total",
				Help:      "Completed checks by group and result",
			},
			[]string{"group", "result"},
		),
		CheckDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bankprobe",
				Name:      "check_duration_seconds",
				Help:      "Check wall-clock duration",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
			},
			[]string{"group"},
		),
		ChecksInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "bankprobe",
				Name:      "checks_in_flight",
				Help:      "Checks currently executing",
			},
		),
		RetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bankprobe",
				Name:      "http_retries_total",
				Help:      "HTTP retries performed, by environment",
			},
			[]string{"environment"},
		),
		EnvironmentUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bankprobe",
				Name:      "environment_up",
				Help:      "Pre-flight reachability of each environment (1=up, 0=down)",
			},
			[]string{"environment"},
		),
	}
}

// RecordCheck records metrics for one completed check.
func (m *Metrics) RecordCheck(group string, passed bool, durationSeconds float64) {
	result := "pass"
	if !passed {
		result = "fail"
	}
	m.ChecksTotal.WithLabelValues(group, result).Inc()
	m.CheckDuration.WithLabelValues(group).Observe(durationSeconds)
}
