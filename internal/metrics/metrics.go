// Package metrics exposes Prometheus instrumentation for the scanner: scan
// cycles, Schwab API traffic, and contract filter/return outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram

	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	contractsSeen    prometheus.Counter
	contractsSkipped *prometheus.CounterVec
	reportRows       prometheus.Counter

	watchlistSymbols prometheus.Gauge
	bestReturn       prometheus.Gauge
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buywrite_scans_total",
				Help: "Total number of scan cycles by outcome",
			},
			[]string{"status"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "buywrite_scan_duration_seconds",
				Help:    "Scan cycle duration in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buywrite_api_requests_total",
				Help: "Total number of Schwab API requests",
			},
			[]string{"endpoint", "status"},
		),
		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buywrite_api_request_duration_seconds",
				Help:    "Schwab API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		contractsSeen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "buywrite_contracts_seen_total",
				Help: "Total number of call contracts walked",
			},
		),
		contractsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buywrite_contracts_skipped_total",
				Help: "Total number of contracts rejected by the eligibility filter",
			},
			[]string{"reason"},
		),
		reportRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "buywrite_report_rows_total",
				Help: "Total number of report rows produced",
			},
		),
		watchlistSymbols: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "buywrite_watchlist_symbols",
				Help: "Number of symbols on the watchlist",
			},
		),
		bestReturn: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "buywrite_best_return",
				Help: "Best annualized return found in the most recent scan",
			},
		),
	}

	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.scanDuration)
	reg.MustRegister(r.apiRequestsTotal)
	reg.MustRegister(r.apiRequestDuration)
	reg.MustRegister(r.contractsSeen)
	reg.MustRegister(r.contractsSkipped)
	reg.MustRegister(r.reportRows)
	reg.MustRegister(r.watchlistSymbols)
	reg.MustRegister(r.bestReturn)

	return r
}

// RecordScan records a completed scan cycle.
func (r *Registry) RecordScan(status string, duration float64) {
	r.scansTotal.WithLabelValues(status).Inc()
	r.scanDuration.Observe(duration)
}

// RecordAPIRequest records one Schwab API call.
func (r *Registry) RecordAPIRequest(endpoint, status string, duration float64) {
	r.apiRequestsTotal.WithLabelValues(endpoint, status).Inc()
	r.apiRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordContracts records one symbol's filter outcomes: how many contracts
// were walked, how many were rejected per reason, and how many made the
// report.
func (r *Registry) RecordContracts(seen, rows int, skipped map[string]int) {
	r.contractsSeen.Add(float64(seen))
	r.reportRows.Add(float64(rows))
	for reason, n := range skipped {
		r.contractsSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// SetWatchlistSize sets the watchlist size.
func (r *Registry) SetWatchlistSize(size int) {
	r.watchlistSymbols.Set(float64(size))
}

// SetBestReturn publishes the best annualized return of the latest scan.
func (r *Registry) SetBestReturn(v float64) {
	r.bestReturn.Set(v)
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
