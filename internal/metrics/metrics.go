// Package metrics defines the Prometheus instruments for the reservation core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tablekeep"

// Metrics holds every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	authDecisions   *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	policyCache     *prometheus.CounterVec
	policyVersion   prometheus.Gauge
	reconciliations *prometheus.CounterVec
	manifestChanges *prometheus.CounterVec
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_decisions_total",
			Help:      "Authorization decisions by resource type, action and resolved scope.",
		}, []string{"resource", "action", "scope"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Reservation create and move attempts by outcome.",
		}, []string{"outcome"}),
		policyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_cache_lookups_total",
			Help:      "Policy matrix lookups by result (hit, miss, bootstrap).",
		}, []string{"result"}),
		policyVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "policy_matrix_version",
			Help:      "Version of the currently cached policy matrix (0 = bootstrap default).",
		}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_reconciliations_total",
			Help:      "Attendee manifest reconciliations by outcome.",
		}, []string{"outcome"}),
		manifestChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_changes_total",
			Help:      "Attendee rows changed by reconciliation, by operation.",
		}, []string{"op"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.authDecisions, m.bookings,
		m.policyCache, m.policyVersion,
		m.reconciliations, m.manifestChanges,
		m.requestCount, m.requestDuration,
	)
	return m
}

// Handler exposes the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) AuthDecision(resource, action, scope string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(resource, action, scope).Inc()
}

// Booking records a booking outcome such as created, moved, slot_conflict,
// capacity_conflict or transition_<status>.
func (m *Metrics) Booking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PolicyCacheLookup(result string) {
	if m == nil {
		return
	}
	m.policyCache.WithLabelValues(result).Inc()
}

func (m *Metrics) PolicyVersion(v int64) {
	if m == nil {
		return
	}
	m.policyVersion.Set(float64(v))
}

func (m *Metrics) Reconciliation(outcome string, deleted, updated, inserted int) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
	m.manifestChanges.WithLabelValues("delete").Add(float64(deleted))
	m.manifestChanges.WithLabelValues("update").Add(float64(updated))
	m.manifestChanges.WithLabelValues("insert").Add(float64(inserted))
}

func (m *Metrics) Request(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
