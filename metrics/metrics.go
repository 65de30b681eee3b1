// metrics/metrics.go
// Package metrics exposes Prometheus collectors for the admin API client.
// All methods are safe on a nil *Metrics so callers that do not care about metrics pass nil.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "menuadmin_client"

// Refresh results.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// Metrics holds the client collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	retried         prometheus.Counter
	permitsInUse    prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg creates
// unregistered collectors, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total HTTP requests sent to the admin API, by method and status class.",
		}, []string{"method", "status_class"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests sent to the admin API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refresh calls, by result.",
		}, []string{"result"}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retried_requests_total",
			Help:      "Requests resent after a successful token refresh.",
		}),
		permitsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "concurrency_permits_in_use",
			Help:      "Concurrency permits currently held by in-flight requests.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.requestDuration, m.refreshes, m.retried, m.permitsInUse)
	}
	return m
}

// ObserveRequest records one completed HTTP attempt. statusClass is "2xx", "4xx", ... or "error"
// when no response was received.
func (m *Metrics) ObserveRequest(method, statusClass string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveRefresh records the outcome of a refresh call.
func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	result := RefreshSuccess
	if err != nil {
		result = RefreshFailure
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// IncRetried counts a request resent after refresh.
func (m *Metrics) IncRetried() {
	if m == nil {
		return
	}
	m.retried.Inc()
}

// SetPermitsInUse reports the number of held concurrency permits.
func (m *Metrics) SetPermitsInUse(n int) {
	if m == nil {
		return
	}
	m.permitsInUse.Set(float64(n))
}
