package metrics

import "github.com/prometheus/client_golang/prometheus"

// initEmotionMetrics initializes emotional state metrics.
func (m *Manager) initEmotionMetrics() {
	m.emotionUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emotion_updates_total",
			Help: "Total number of emotional state updates",
		},
	)

	m.emotionChannels = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "emotion_channel_level",
			Help: "Current level of each emotion channel (0 to 1)",
		},
		[]string{"channel"},
	)

	m.toneTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_tone_transitions_total",
			Help: "Total number of transitions into each tone",
		},
		[]string{"tone"},
	)

	m.registry.MustRegister(m.emotionUpdates)
	m.registry.MustRegister(m.emotionChannels)
	m.registry.MustRegister(m.toneTransitions)
}

// RecordEmotionUpdate records one emotional state update.
func (m *Manager) RecordEmotionUpdate() {
	if !m.enabled {
		return
	}
	m.emotionUpdates.Inc()
}

// SetEmotionChannel sets the current level for an emotion channel.
func (m *Manager) SetEmotionChannel(channel string, level float64) {
	if !m.enabled {
		return
	}
	m.emotionChannels.WithLabelValues(channel).Set(level)
}

// RecordToneTransition records a transition into a tone.
func (m *Manager) RecordToneTransition(tone string) {
	if !m.enabled {
		return
	}
	m.toneTransitions.WithLabelValues(tone).Inc()
}
