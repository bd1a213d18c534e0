package emotion

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultIntensity = 0.6
	defaultStability = 0.8

	// autoDecayAfter is how long the state must sit untouched before a
	// Process call folds in time decay.
	autoDecayAfter   = 5 * time.Minute
	maxAutoDecayRate = 0.05

	// hitIntensityStep scales keyword hits into trigger intensity,
	// capped at maxTriggerIntensity.
	hitIntensityStep    = 0.1
	maxTriggerIntensity = 0.3

	// maxNetChange bounds the accumulated per-channel change of a
	// single Process call.
	maxNetChange = 0.5
)

// Tone is the coarse emotional tone derived from channel levels.
type Tone string

const (
	ToneJoyful        Tone = "joyful"
	ToneMelancholic   Tone = "melancholic"
	ToneCurious       Tone = "curious"
	ToneExcited       Tone = "excited"
	ToneSerene        Tone = "serene"
	ToneConcerned     Tone = "concerned"
	ToneCompassionate Tone = "compassionate"
	ToneBalanced      Tone = "balanced"
)

var toneModifiers = map[Tone]string{
	ToneJoyful:        "Respond with enthusiasm and warmth",
	ToneMelancholic:   "Respond with gentle compassion and understanding",
	ToneCurious:       "Show genuine interest and ask thoughtful questions",
	ToneExcited:       "Express enthusiasm and energy",
	ToneSerene:        "Respond with calm wisdom and peace",
	ToneConcerned:     "Show care and offer support",
	ToneCompassionate: "Express deep empathy and understanding",
}

// dominantModifiers add nuance when a channel runs hot among the top two.
var dominantModifiers = map[Channel]string{
	ChannelCuriosity: "Ask engaging follow-up questions",
	ChannelEmpathy:   "Acknowledge and validate feelings",
	ChannelAffection: "Express genuine care and connection",
}

const neutralModifier = "Respond naturally"

// Telemetry records emotional state changes.
type Telemetry interface {
	RecordEmotionUpdate()
	SetEmotionChannel(channel string, level float64)
	RecordToneTransition(tone string)
}

type nopTelemetry struct{}

func (nopTelemetry) RecordEmotionUpdate()                         {}
func (nopTelemetry) SetEmotionChannel(channel string, lv float64) {}
func (nopTelemetry) RecordToneTransition(tone string)             {}

// ChannelLevel pairs a channel with its current level.
type ChannelLevel struct {
	Channel Channel `json:"channel"`
	Level   float64 `json:"level"`
}

// Snapshot is a point-in-time copy of the emotional state.
type Snapshot struct {
	Levels      Vector         `json:"levels"`
	Intensity   float64        `json:"intensity"`
	Stability   float64        `json:"stability"`
	Tone        Tone           `json:"tone"`
	Dominant    []ChannelLevel `json:"dominant"`
	LastUpdated time.Time      `json:"last_updated"`
}

// ProcessResult reports what a Process call did.
type ProcessResult struct {
	Hits         map[string]int `json:"hits,omitempty"`
	Tone         Tone           `json:"tone"`
	PreviousTone Tone           `json:"previous_tone"`
}

// Triggered reports whether any trigger matched.
func (r ProcessResult) Triggered() bool { return len(r.Hits) > 0 }

// ToneChanged reports whether the call moved the tone.
func (r ProcessResult) ToneChanged() bool { return r.Tone != r.PreviousTone }

// Engine holds the agent's emotional state and evolves it from
// conversation text and elapsed time. Safe for concurrent use.
type Engine struct {
	mu          sync.RWMutex
	levels      Vector
	intensity   float64
	stability   float64
	lastUpdated time.Time
	lastTone    Tone

	telemetry Telemetry
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTelemetry attaches a metrics sink.
func WithTelemetry(t Telemetry) Option {
	return func(e *Engine) {
		if t != nil {
			e.telemetry = t
		}
	}
}

// WithIntensity overrides how strongly triggers move the state.
func WithIntensity(v float64) Option {
	return func(e *Engine) { e.intensity = clamp01(v) }
}

// WithStability overrides how much the state resists change.
func WithStability(v float64) Option {
	return func(e *Engine) { e.stability = clamp01(v) }
}

// NewEngine creates an engine at baseline levels.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		levels:    NewBaselineVector(),
		intensity: defaultIntensity,
		stability: defaultStability,
		telemetry: nopTelemetry{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastUpdated = e.now()
	e.lastTone = e.toneLocked()
	e.syncChannelGaugesLocked()
	return e
}

// Process scans text for emotional triggers and applies the resulting
// channel changes, folding in time decay first when the state has been
// idle past the decay threshold.
func (e *Engine) Process(text string) ProcessResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	prevTone := e.lastTone
	mutated := e.autoDecayLocked()

	hits := matchTriggers(text)
	if len(hits) > 0 {
		changes := make(map[Channel]float64)
		for name, count := range hits {
			trig, ok := triggerByName(name)
			if !ok {
				continue
			}
			intensity := float64(count) * hitIntensityStep
			if intensity > maxTriggerIntensity {
				intensity = maxTriggerIntensity
			}
			for ch, delta := range trig.Deltas {
				changes[ch] += delta * intensity
			}
		}
		for ch, change := range changes {
			if change > maxNetChange {
				change = maxNetChange
			} else if change < -maxNetChange {
				change = -maxNetChange
			}
			e.applyLocked(ch, change)
		}
		mutated = true
	}

	if mutated {
		e.lastUpdated = e.now()
		e.telemetry.RecordEmotionUpdate()
		e.syncChannelGaugesLocked()
	}

	tone := e.toneLocked()
	if tone != prevTone {
		e.telemetry.RecordToneTransition(string(tone))
	}
	e.lastTone = tone

	result := ProcessResult{Tone: tone, PreviousTone: prevTone}
	if len(hits) > 0 {
		result.Hits = hits
	}
	return result
}

// Apply shifts one channel by delta, damped by stability and clamped
// to [0, 1].
func (e *Engine) Apply(ch Channel, delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(ch, delta)
	e.lastUpdated = e.now()
	e.telemetry.RecordEmotionUpdate()
	e.syncChannelGaugesLocked()
	e.lastTone = e.toneLocked()
}

func (e *Engine) applyLocked(ch Channel, delta float64) {
	if _, ok := baselines[ch]; !ok {
		return
	}
	actual := delta * (1 - e.stability*0.5)
	e.levels[ch] = clamp01(e.levels[ch] + actual)
}

// Decay moves every channel toward its baseline by the given rate.
func (e *Engine) Decay(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decayLocked(rate)
	e.lastUpdated = e.now()
	e.syncChannelGaugesLocked()
	e.lastTone = e.toneLocked()
}

func (e *Engine) decayLocked(rate float64) {
	for ch, level := range e.levels {
		e.levels[ch] = level + rate*(baselines[ch]-level)
	}
}

// autoDecayLocked applies time decay when the state has been idle for
// at least autoDecayAfter. Returns whether anything changed.
func (e *Engine) autoDecayLocked() bool {
	elapsed := e.now().Sub(e.lastUpdated)
	if elapsed < autoDecayAfter {
		return false
	}
	rate := elapsed.Seconds() / 3600
	if rate > maxAutoDecayRate {
		rate = maxAutoDecayRate
	}
	e.decayLocked(rate)
	return true
}

// Level returns the current level of one channel.
func (e *Engine) Level(ch Channel) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.levels[ch]
}

// Tone derives the current coarse tone from channel levels.
func (e *Engine) Tone() Tone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.toneLocked()
}

// toneLocked is a first-match ladder, checked in fixed order.
func (e *Engine) toneLocked() Tone {
	switch {
	case e.levels[ChannelJoy] > 0.8:
		return ToneJoyful
	case e.levels[ChannelSadness] > 0.6:
		return ToneMelancholic
	case e.levels[ChannelCuriosity] > 0.8:
		return ToneCurious
	case e.levels[ChannelExcitement] > 0.7:
		return ToneExcited
	case e.levels[ChannelCalmness] > 0.8:
		return ToneSerene
	case e.levels[ChannelConcern] > 0.6:
		return ToneConcerned
	case e.levels[ChannelEmpathy] > 0.8:
		return ToneCompassionate
	default:
		return ToneBalanced
	}
}

// Modifier renders response guidance for the current state: the tone's
// base instruction plus nuance for hot channels among the top two.
func (e *Engine) Modifier() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var parts []string
	if m, ok := toneModifiers[e.toneLocked()]; ok {
		parts = append(parts, m)
	}
	for _, dom := range e.dominantLocked(2) {
		if dom.Level <= 0.8 {
			continue
		}
		if m, ok := dominantModifiers[dom.Channel]; ok {
			parts = append(parts, m)
		}
	}
	if len(parts) == 0 {
		return neutralModifier
	}
	return strings.Join(parts, "; ")
}

// Dominant returns the n highest channels, level descending.
func (e *Engine) Dominant(n int) []ChannelLevel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dominantLocked(n)
}

func (e *Engine) dominantLocked(n int) []ChannelLevel {
	if n <= 0 {
		return nil
	}
	all := make([]ChannelLevel, 0, len(e.levels))
	for _, ch := range channelOrder {
		all = append(all, ChannelLevel{Channel: ch, Level: e.levels[ch]})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Level != all[j].Level {
			return all[i].Level > all[j].Level
		}
		return all[i].Channel < all[j].Channel
	})
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		Levels:      e.levels.Clone(),
		Intensity:   e.intensity,
		Stability:   e.stability,
		Tone:        e.toneLocked(),
		Dominant:    e.dominantLocked(3),
		LastUpdated: e.lastUpdated,
	}
}

func (e *Engine) syncChannelGaugesLocked() {
	for _, ch := range channelOrder {
		e.telemetry.SetEmotionChannel(string(ch), e.levels[ch])
	}
}
