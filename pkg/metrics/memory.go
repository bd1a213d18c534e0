package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initMemoryMetrics initializes long-term memory metrics.
func (m *Manager) initMemoryMetrics(cfg Config) {
	m.memoryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_entries",
			Help: "Current number of entries in the memory store",
		},
	)

	m.memoryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_operations_total",
			Help: "Total number of memory store operations by type",
		},
		[]string{"op"},
	)

	m.memoryEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_evictions_total",
			Help: "Total number of evicted entries by tier",
		},
		[]string{"tier"},
	)

	m.memoryPersistFails = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_persist_failures_total",
			Help: "Total number of failed persistence attempts",
		},
	)

	m.recallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_recall_duration_seconds",
			Help:    "Relevance-scored recall duration in seconds",
			Buckets: cfg.RecallDurationBuckets,
		},
	)

	m.registry.MustRegister(m.memoryEntries)
	m.registry.MustRegister(m.memoryOps)
	m.registry.MustRegister(m.memoryEvictions)
	m.registry.MustRegister(m.memoryPersistFails)
	m.registry.MustRegister(m.recallDuration)
}

// SetMemoryEntries sets the current memory store entry count.
func (m *Manager) SetMemoryEntries(count float64) {
	if !m.enabled {
		return
	}
	m.memoryEntries.Set(count)
}

// RecordMemoryOp records a memory store operation.
func (m *Manager) RecordMemoryOp(op string) {
	if !m.enabled {
		return
	}
	m.memoryOps.WithLabelValues(op).Inc()
}

// RecordEviction records evicted entries for a tier.
func (m *Manager) RecordEviction(tier string, count int) {
	if !m.enabled {
		return
	}
	m.memoryEvictions.WithLabelValues(tier).Add(float64(count))
}

// RecordPersistFailure records a failed persistence attempt.
func (m *Manager) RecordPersistFailure() {
	if !m.enabled {
		return
	}
	m.memoryPersistFails.Inc()
}

// RecordRecallDuration records the time spent scoring and ranking a recall.
func (m *Manager) RecordRecallDuration(duration time.Duration) {
	if !m.enabled {
		return
	}
	m.recallDuration.Observe(duration.Seconds())
}
