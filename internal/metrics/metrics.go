// Package metrics holds the Prometheus instrumentation for macrorun runs,
// served by the monitor command.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all macrorun metrics.
type Registry struct {
	reg *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	ScanDuration  prometheus.Histogram
	ScansTotal    prometheus.Counter
	SeriesSkipped prometheus.Counter
}

// NewRegistry builds a registry with every macrorun metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrorun_fetch_total",
				Help: "Series fetches by outcome",
			},
			[]string{"series", "result"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "macrorun_fetch_duration_seconds",
				Help:    "Duration of one series fetch",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "macrorun_scan_duration_seconds",
				Help:    "End-to-end duration of one scan run",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		ScansTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "macrorun_scans_total",
				Help: "Completed scan runs",
			},
		),
		SeriesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "macrorun_series_skipped_total",
				Help: "Series omitted from a run after fetch failure",
			},
		),
	}

	r.reg.MustRegister(r.FetchTotal, r.FetchDuration, r.ScanDuration, r.ScansTotal, r.SeriesSkipped)
	return r
}

// Handler exposes the registry for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
