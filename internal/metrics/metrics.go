// Package metrics exposes Prometheus collectors for the onboarding service.
// All recording methods are no-ops on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onboarding"

// Metrics groups the service collectors and the registry that owns them
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	VisaUploadsTotal       *prometheus.CounterVec
	VisaReviewsTotal       *prometheus.CounterVec
	VisaWorkflowsCompleted prometheus.Counter
	OnboardingReviewsTotal *prometheus.CounterVec
	InvitationsIssued      prometheus.Counter
	InvitationsExpired     prometheus.Counter
	WorkflowConflicts      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		VisaUploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visa",
			Name:      "uploads_total",
			Help:      "Visa document uploads by document type.",
		}, []string{"type"}),
		VisaReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visa",
			Name:      "reviews_total",
			Help:      "Visa document reviews by document type and decision.",
		}, []string{"type", "decision"}),
		VisaWorkflowsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visa",
			Name:      "workflows_completed_total",
			Help:      "Visa workflows that reached all steps approved.",
		}),
		OnboardingReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "application",
			Name:      "reviews_total",
			Help:      "Onboarding application reviews by decision.",
		}, []string{"decision"}),
		InvitationsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invitation",
			Name:      "issued_total",
			Help:      "Registration invitations issued.",
		}),
		InvitationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invitation",
			Name:      "expired_total",
			Help:      "Registration invitations marked expired by the expiry job.",
		}),
		WorkflowConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visa",
			Name:      "conflicts_total",
			Help:      "Rejected concurrent visa writes by cause (version, lock).",
		}, []string{"cause"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.VisaUploadsTotal,
		m.VisaReviewsTotal,
		m.VisaWorkflowsCompleted,
		m.OnboardingReviewsTotal,
		m.InvitationsIssued,
		m.InvitationsExpired,
		m.WorkflowConflicts,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) VisaUploaded(docType string) {
	if m == nil {
		return
	}
	m.VisaUploadsTotal.WithLabelValues(docType).Inc()
}

func (m *Metrics) VisaReviewed(docType, decision string) {
	if m == nil {
		return
	}
	m.VisaReviewsTotal.WithLabelValues(docType, decision).Inc()
}

func (m *Metrics) VisaWorkflowCompleted() {
	if m == nil {
		return
	}
	m.VisaWorkflowsCompleted.Inc()
}

func (m *Metrics) ApplicationReviewed(decision string) {
	if m == nil {
		return
	}
	m.OnboardingReviewsTotal.WithLabelValues(decision).Inc()
}

func (m *Metrics) InvitationIssued() {
	if m == nil {
		return
	}
	m.InvitationsIssued.Inc()
}

func (m *Metrics) InvitationsExpiredBy(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.InvitationsExpired.Add(float64(n))
}

func (m *Metrics) Conflict(cause string) {
	if m == nil {
		return
	}
	m.WorkflowConflicts.WithLabelValues(cause).Inc()
}
