// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Components reported in the external call latency histogram.
const (
	ComponentLedger   = "ledger"
	ComponentResolver = "resolver"
	ComponentInviter  = "inviter"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Gate metrics
	ChecksTotal         *prometheus.CounterVec
	CheckDuration       prometheus.Histogram
	GuardContention     prometheus.Counter
	InvitesIssued       prometheus.Counter
	ExternalCallLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests    *prometheus.CounterVec
	HTTPRateLimited prometheus.Counter

	// Audit metrics
	AuditWrites      *prometheus.CounterVec
	AuditWriteErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulInvite prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a new Metrics instance registered with reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_gate"
	}
	factory := promauto.With(reg)

	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "checks_total",
			Help:      "Total number of eligibility checks by outcome",
		}, []string{"outcome"}),
		CheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "check_duration_seconds",
			Help:      "End-to-end eligibility check duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		GuardContention: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "guard_contention_total",
			Help:      "Checks rejected because the same wallet was already in flight",
		}),
		InvitesIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "invites_issued_total",
			Help:      "Total number of channel invites issued",
		}),
		ExternalCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "external_call_latency_seconds",
			Help:      "Latency of calls to the ledger, resolver and inviter in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"component", "status"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of HTTP requests rejected by the rate limiter",
		}),

		AuditWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "writes_total",
			Help:      "Total number of audit rows written by store",
		}, []string{"store"}),
		AuditWriteErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "write_errors_total",
			Help:      "Total number of failed audit writes by store",
		}, []string{"store"}),

		LastSuccessfulInvite: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_invite_timestamp",
			Help:      "Unix timestamp of last issued invite",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCheck records a finished eligibility check.
func RecordCheck(outcome string, seconds float64) {
	DefaultMetrics.ChecksTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.CheckDuration.Observe(seconds)
}

// RecordExternalCall records the latency of one call to an external component.
func RecordExternalCall(component string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.ExternalCallLatency.WithLabelValues(component, status).Observe(seconds)
}

// RecordGuardContention increments the guard contention counter.
func RecordGuardContention() {
	DefaultMetrics.GuardContention.Inc()
}

// RecordInviteIssued increments the invites counter and stamps the health gauge.
func RecordInviteIssued(unixSeconds float64) {
	DefaultMetrics.InvitesIssued.Inc()
	DefaultMetrics.LastSuccessfulInvite.Set(unixSeconds)
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited() {
	DefaultMetrics.HTTPRateLimited.Inc()
}

// RecordAuditWrite records an audit write to store.
func RecordAuditWrite(store string, err error) {
	if err != nil {
		DefaultMetrics.AuditWriteErrors.WithLabelValues(store).Inc()
		return
	}
	DefaultMetrics.AuditWrites.WithLabelValues(store).Inc()
}
