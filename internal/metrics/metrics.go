// Package metrics owns the prometheus registry served on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server instance
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cascadeDeletes  *prometheus.CounterVec
	codesSent       *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		cascadeDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minitrello_deletes_total",
				Help: "Deletes of boards, cards and tasks including everything under them",
			},
			[]string{"entity"},
		),
		codesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minitrello_verification_codes_total",
				Help: "Verification codes issued, by delivery channel",
			},
			[]string{"channel"},
		),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.cascadeDeletes, m.codesSent)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// DeleteCompleted counts a successful delete of entity ("board", "card" or "task")
func (m *Metrics) DeleteCompleted(entity string) {
	m.cascadeDeletes.WithLabelValues(entity).Inc()
}

// CodeIssued counts a verification code; delivered distinguishes SMTP from the log fallback
func (m *Metrics) CodeIssued(delivered bool) {
	channel := "log"
	if delivered {
		channel = "smtp"
	}
	m.codesSent.WithLabelValues(channel).Inc()
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
