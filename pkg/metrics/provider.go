package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initProviderMetrics initializes provider adapter metrics.
func (m *Manager) initProviderMetrics(cfg Config) {
	m.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of generation requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	m.providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_latency_seconds",
			Help:    "Generation latency in seconds by provider",
			Buckets: cfg.ProviderLatencyBuckets,
		},
		[]string{"provider"},
	)

	m.providerFailovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_failovers_total",
			Help: "Total number of failovers between providers",
		},
		[]string{"from", "to"},
	)

	m.providerAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_available",
			Help: "Whether a provider is currently available (1=available)",
		},
		[]string{"provider"},
	)

	m.providerActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_active",
			Help: "Whether a provider is the active one (1=active)",
		},
		[]string{"provider"},
	)

	m.registry.MustRegister(m.providerRequests)
	m.registry.MustRegister(m.providerLatency)
	m.registry.MustRegister(m.providerFailovers)
	m.registry.MustRegister(m.providerAvailability)
	m.registry.MustRegister(m.providerActive)
}

// RecordProviderRequest records a generation request outcome.
func (m *Manager) RecordProviderRequest(provider, status string) {
	if !m.enabled {
		return
	}
	m.providerRequests.WithLabelValues(provider, status).Inc()
}

// RecordProviderLatency records generation latency for a provider.
func (m *Manager) RecordProviderLatency(provider string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFailover records a failover from one provider to another.
func (m *Manager) RecordFailover(from, to string) {
	if !m.enabled {
		return
	}
	m.providerFailovers.WithLabelValues(from, to).Inc()
}

// SetProviderAvailable sets the availability gauge for a provider.
func (m *Manager) SetProviderAvailable(provider string, available bool) {
	if !m.enabled {
		return
	}
	if available {
		m.providerAvailability.WithLabelValues(provider).Set(1)
		return
	}
	m.providerAvailability.WithLabelValues(provider).Set(0)
}

// SetProviderActive marks a provider as the active one.
func (m *Manager) SetProviderActive(provider string, active bool) {
	if !m.enabled {
		return
	}
	if active {
		m.providerActive.WithLabelValues(provider).Set(1)
		return
	}
	m.providerActive.WithLabelValues(provider).Set(0)
}
