// Package metrics exposes Prometheus counters for the HTTP API, mail delivery
// and authentication events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDropped = "dropped"
)

// Metrics groups the collectors of the server.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	MailMessages *prometheus.CounterVec
	AuthEvents   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactkeeper_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contactkeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		MailMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactkeeper_mail_messages_total",
				Help: "Total number of outgoing mail messages by template and result",
			},
			[]string{"template", "result"},
		),
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contactkeeper_auth_events_total",
				Help: "Total number of authentication flow events by event and result",
			},
			[]string{"event", "result"},
		),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.MailMessages, m.AuthEvents)
	return m
}

// NewRegistry returns a registry carrying the standard Go and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordHTTPRequest counts a served request and observes its duration.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordMail counts a mail message outcome (use Result* constants).
func (m *Metrics) RecordMail(template, result string) {
	if m == nil {
		return
	}
	m.MailMessages.WithLabelValues(template, result).Inc()
}

// RecordAuthEvent counts an authentication flow event such as "login" or
// "register" with its outcome.
func (m *Metrics) RecordAuthEvent(event, result string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, result).Inc()
}
