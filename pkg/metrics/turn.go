package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initTurnMetrics initializes conversation turn metrics.
func (m *Manager) initTurnMetrics(cfg Config) {
	m.turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Total number of conversation turns by status",
		},
		[]string{"status"},
	)

	m.turnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_duration_seconds",
			Help:    "End-to-end turn duration in seconds",
			Buckets: cfg.TurnDurationBuckets,
		},
		[]string{"provider"},
	)

	m.reflections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reflections_total",
			Help: "Total number of self-reflections generated",
		},
	)

	m.registry.MustRegister(m.turnsTotal)
	m.registry.MustRegister(m.turnDuration)
	m.registry.MustRegister(m.reflections)
}

// RecordTurn records a completed turn with its final status.
func (m *Manager) RecordTurn(status string) {
	if !m.enabled {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
}

// RecordTurnDuration records the end-to-end duration of a turn.
func (m *Manager) RecordTurnDuration(provider string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.turnDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordReflection records a generated self-reflection.
func (m *Manager) RecordReflection() {
	if !m.enabled {
		return
	}
	m.reflections.Inc()
}
