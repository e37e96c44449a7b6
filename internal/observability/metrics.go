package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for wizard advances.
const (
	AdvanceAdvanced            = "advanced"
	AdvanceInvalid             = "invalid"
	AdvancePersistenceFailed   = "persistence_failed"
	AdvanceAllocationExhausted = "allocation_exhausted"
	AdvanceCompleted           = "completed"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	advances        *prometheus.CounterVec
	allocations     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onboarding",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP errors by code",
		}, []string{"route", "method", "code"}),
		advances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "wizard",
			Name:      "advances_total",
			Help:      "Wizard advance attempts by outcome",
		}, []string{"outcome"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "email",
			Name:      "allocations_total",
			Help:      "Company email allocations by outcome",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onboarding",
			Subsystem: "notify",
			Name:      "dispatches_total",
			Help:      "Notification dispatches by event kind and outcome",
		}, []string{"event", "outcome"}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration, m.errors,
		m.advances, m.allocations, m.notifications,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the collectors for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response by its domain code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordAdvance counts a wizard advance by outcome.
func (m *Metrics) RecordAdvance(outcome string) {
	if m == nil {
		return
	}
	m.advances.WithLabelValues(outcome).Inc()
}

// RecordAllocation counts an email allocation attempt by outcome.
func (m *Metrics) RecordAllocation(outcome string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a dispatch by event kind and outcome.
func (m *Metrics) RecordNotification(event, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcome).Inc()
}
