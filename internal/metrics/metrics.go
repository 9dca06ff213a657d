// Package metrics defines the Prometheus metrics exported by the API.
//
// Metric naming follows Prometheus conventions:
//   - tasks_api_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knownMethods bounds the method label. Anything else is reported as "other".
var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return "other"
}

// Metrics holds the collectors the HTTP layer updates.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	authDecisions   *prometheus.CounterVec
	mailJobs        *prometheus.CounterVec
}

// New creates and registers the API metrics on a fresh registry together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the API metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasks_api_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds by method and status code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		authDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasks_api_auth_decisions_total",
				Help: "Total authorization gate decisions by outcome.",
			},
			[]string{"decision"},
		),
		mailJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasks_api_mail_jobs_total",
				Help: "Total outbound mail jobs by result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.requestDuration, m.authDecisions, m.mailJobs)
	return m
}

// ObserveRequest records a completed request. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(methodLabel(method), strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// AuthDecision counts one gate outcome. A nil receiver is a no-op.
func (m *Metrics) AuthDecision(decision string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(decision).Inc()
}

// MailJob counts one processed mail job. A nil receiver is a no-op.
func (m *Metrics) MailJob(result string) {
	if m == nil {
		return
	}
	m.mailJobs.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
