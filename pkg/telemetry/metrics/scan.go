package metrics

import (
	"time"

	"a11y-hq/lumen/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics tracks whole-tree scans.
//
// Metrics:
//   - lumen_scans_total: scans by outcome
//   - lumen_scan_duration_seconds: scan wall time
//   - lumen_scan_elements: elements per scanned tree
//   - lumen_scans_in_flight: scans currently running
type ScanMetrics struct {
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	scanElements prometheus.Histogram
	inFlight     prometheus.Gauge
}

// NewScanMetrics creates and registers scan metrics.
func NewScanMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ScanMetrics {
	sm := &ScanMetrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "scans_total",
				Help:      "Total number of scans by status",
			},
			[]string{"status"},
		),

		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of a scan in seconds",
				Buckets:   cfg.ScanDurationBuckets,
			},
			[]string{"status"},
		),

		scanElements: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "scan_elements",
				Help:      "Number of elements in scanned trees",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 8), // 10 to ~160K
			},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "scans_in_flight",
				Help:      "Number of scans currently running",
			},
		),
	}

	registry.MustRegister(
		sm.scansTotal,
		sm.scanDuration,
		sm.scanElements,
		sm.inFlight,
	)

	return sm
}

// RecordScan records a completed scan.
func (sm *ScanMetrics) RecordScan(status string, duration time.Duration, elements int) {
	sm.scansTotal.WithLabelValues(status).Inc()
	sm.scanDuration.WithLabelValues(status).Observe(duration.Seconds())
	sm.scanElements.Observe(float64(elements))
}
