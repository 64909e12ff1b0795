// Package metrics exposes Prometheus collectors for the dashboard service.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sapdash"

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	notificationsShown   *prometheus.CounterVec
	notificationsRemoved prometheus.Counter
	exports              *prometheus.CounterVec
	activeResources      prometheus.Gauge
	eventsSaved          *prometheus.CounterVec
	retriesPublished     prometheus.Counter
	wsClients            prometheus.Gauge
	wsMessagesSent       prometheus.Counter
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		notificationsShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_shown_total",
			Help:      "Notifications appended to the page, by severity.",
		}, []string{"severity"}),
		notificationsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_removed_total",
			Help:      "Notifications removed after their display window.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_exports_total",
			Help:      "Table exports, by format and result.",
		}, []string{"format", "result"}),
		activeResources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "download_resources_active",
			Help:      "Download resource handles not yet released.",
		}),
		eventsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_saved_total",
			Help:      "Integration events saved, by status.",
		}, []string{"status"}),
		retriesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_retries_published_total",
			Help:      "Retry messages published for failed events.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}),
		wsMessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_messages_sent_total",
			Help:      "Messages queued to WebSocket clients.",
		}),
	}

	reg.MustRegister(
		m.notificationsShown,
		m.notificationsRemoved,
		m.exports,
		m.activeResources,
		m.eventsSaved,
		m.retriesPublished,
		m.wsClients,
		m.wsMessagesSent,
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
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) NotificationShown(severity string) {
	if m == nil {
		return
	}
	m.notificationsShown.WithLabelValues(severity).Inc()
}

func (m *Metrics) NotificationRemoved() {
	if m == nil {
		return
	}
	m.notificationsRemoved.Inc()
}

// Export records a table export attempt.
func (m *Metrics) Export(format string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exports.WithLabelValues(format, result).Inc()
}

func (m *Metrics) SetActiveResources(n int) {
	if m == nil {
		return
	}
	m.activeResources.Set(float64(n))
}

func (m *Metrics) EventSaved(status string) {
	if m == nil {
		return
	}
	m.eventsSaved.WithLabelValues(status).Inc()
}

func (m *Metrics) RetryPublished() {
	if m == nil {
		return
	}
	m.retriesPublished.Inc()
}

func (m *Metrics) SetWebSocketClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

func (m *Metrics) WebSocketMessageSent() {
	if m == nil {
		return
	}
	m.wsMessagesSent.Inc()
}
