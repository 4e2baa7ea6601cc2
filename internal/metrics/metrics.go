// Package metrics exposes Prometheus instrumentation for the candidate pipeline.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "careerpilot"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	resumes       *prometheus.CounterVec
	invites       *prometheus.CounterVec
	webhooks      *prometheus.CounterVec
	events        *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
	uploadBatch   prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resumes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resumes_processed_total",
				Help:      "Uploaded resumes by outcome",
			},
			[]string{"outcome"},
		),
		invites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invites_total",
				Help:      "Interview invite deliveries by result",
			},
			[]string{"result"},
		),
		webhooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interview_webhooks_total",
				Help:      "Interview completion webhooks by result",
			},
			[]string{"result"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_events_total",
				Help:      "Candidate lifecycle events by type and result",
			},
			[]string{"type", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		uploadBatch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_batch_size",
				Help:      "Documents per upload request",
				Buckets:   prometheus.LinearBuckets(1, 5, 10),
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resumes, m.invites, m.webhooks, m.events,
		m.httpRequests, m.httpDurations, m.uploadBatch,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ResumeProcessed counts one document with outcome "created" or "failed".
func (m *Metrics) ResumeProcessed(outcome string) {
	if m == nil {
		return
	}
	m.resumes.WithLabelValues(outcome).Inc()
}

// UploadBatch records the number of documents in one upload.
func (m *Metrics) UploadBatch(n int) {
	if m == nil {
		return
	}
	m.uploadBatch.Observe(float64(n))
}

// InviteDelivered counts one invite delivery attempt.
func (m *Metrics) InviteDelivered(err error) {
	if m == nil {
		return
	}
	m.invites.WithLabelValues(result(err)).Inc()
}

// Webhook counts one completion webhook with result "updated", "not_found" or "invalid".
func (m *Metrics) Webhook(res string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(res).Inc()
}

// EventPublished counts one lifecycle event publication.
func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, result(err)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
