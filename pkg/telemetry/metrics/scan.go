// Package metrics exposes Prometheus metrics for the guardrail runtime.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
)

// ScanMetrics tracks guardrail scan activity.
//
// Metrics:
//   - railguard_scans_total: scans by ingestion surface and outcome
//   - railguard_scan_duration_seconds: scan duration
//   - railguard_violations_total: violations by rule and action
//   - railguard_blocked_total: blocked inputs by surface
type ScanMetrics struct {
	registry *prometheus.Registry
	path     string

	scansTotal      *prometheus.CounterVec
	scanDuration    *prometheus.HistogramVec
	violationsTotal *prometheus.CounterVec
	blockedTotal    *prometheus.CounterVec
}

// NewScanMetrics creates and registers scan metrics on a fresh registry.
func NewScanMetrics(cfg config.MetricsConfig) *ScanMetrics {
	registry := prometheus.NewRegistry()

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	m := &ScanMetrics{
		registry: registry,
		path:     path,

		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "scans_total",
				Help:      "Total number of guardrail scans",
			},
			[]string{"surface", "outcome"},
		),

		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of guardrail scans in seconds",
				// Scans are pure in-memory pattern matching (< 10ms).
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
			[]string{"surface"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "violations_total",
				Help:      "Total guardrail violations by rule and action",
			},
			[]string{"rule", "action"},
		),

		blockedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "blocked_total",
				Help:      "Total inputs rejected by a Block violation",
			},
			[]string{"surface"},
		),
	}

	registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.violationsTotal,
		m.blockedTotal,
	)

	return m
}

// RecordScan records one scan outcome for an ingestion surface.
func (m *ScanMetrics) RecordScan(surface string, result *guardrails.ScanResult, duration time.Duration) {
	if m == nil || result == nil {
		return
	}

	outcome := "clean"
	if result.Blocked() {
		outcome = "blocked"
		m.blockedTotal.WithLabelValues(surface).Inc()
	} else if len(result.Violations) > 0 {
		outcome = "flagged"
	}

	m.scansTotal.WithLabelValues(surface, outcome).Inc()
	m.scanDuration.WithLabelValues(surface).Observe(duration.Seconds())

	for _, v := range result.Violations {
		m.violationsTotal.WithLabelValues(v.Rule, string(v.Action)).Inc()
	}
}

// Path returns the configured metrics endpoint path.
func (m *ScanMetrics) Path() string {
	return m.path
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *ScanMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}
