// Package metrics provides Prometheus metrics for the triage API:
// generic HTTP request metrics plus pipeline-level counters for triage
// plans and red-flag escalations. All metrics register with the
// default registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	TriagePlansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_plans_total",
			Help: "Total consolidated triage plans produced",
		},
	)

	TriageRedFlagsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_red_flag_plans_total",
			Help: "Triage plans that carried at least one red flag",
		},
	)

	SnapshotRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_refresh_total",
			Help: "Reference data refresh attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(TriagePlansTotal)
	prometheus.MustRegister(TriageRedFlagsTotal)
	prometheus.MustRegister(SnapshotRefreshTotal)
}
