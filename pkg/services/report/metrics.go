package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "solsignal"

const (
	ResultOK                = "ok"
	ResultContractViolation = "contract_violation"
	ResultBadRequest        = "bad_request"
	ResultUnavailable       = "unavailable"
	ResultNotFound          = "not_found"
	ResultError             = "error"
)

type Metrics struct {
	ReportViews        *prometheus.CounterVec
	ContractViolations *prometheus.CounterVec
	UpstreamFetch      *prometheus.HistogramVec
	SnapshotFallbacks  *prometheus.CounterVec
}

// NewMetrics registers the service metrics with reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReportViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "views_total",
			Help:      "Report views built, by kind and result",
		}, []string{"kind", "result"}),
		ContractViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "contract_violations_total",
			Help:      "Report documents rejected by view mode validation",
		}, []string{"kind"}),
		UpstreamFetch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of report fetches from the backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		SnapshotFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "snapshot_fallbacks_total",
			Help:      "Reports served from a stored snapshot after an upstream failure",
		}, []string{"kind"}),
	}
}
