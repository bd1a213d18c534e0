package metrics

import "github.com/prometheus/client_golang/prometheus"

// initEventMetrics initializes event bus metrics.
func (m *Manager) initEventMetrics() {
	m.eventBusPublish = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_publish_total",
			Help: "Total event bus publish attempts by status",
		},
		[]string{"status"},
	)

	m.eventBusDegraded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_bus_degraded",
			Help: "Whether the event bus is currently in degraded mode (1=degraded)",
		},
	)

	m.eventBusRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_bus_publish_retries_total",
			Help: "Total number of event-bus publish retries",
		},
	)

	m.registry.MustRegister(m.eventBusPublish)
	m.registry.MustRegister(m.eventBusDegraded)
	m.registry.MustRegister(m.eventBusRetries)
}

// RecordPublish records an event-bus publish status.
func (m *Manager) RecordPublish(status string) {
	if !m.enabled {
		return
	}
	m.eventBusPublish.WithLabelValues(status).Inc()
}

// RecordRetry records an event-bus publish retry.
func (m *Manager) RecordRetry() {
	if !m.enabled {
		return
	}
	m.eventBusRetries.Inc()
}

// SetEventBusDegraded sets the event-bus degraded state gauge.
func (m *Manager) SetEventBusDegraded(active bool) {
	if !m.enabled {
		return
	}
	if active {
		m.eventBusDegraded.Set(1)
		return
	}
	m.eventBusDegraded.Set(0)
}
