// Package emotion models the agent's continuous emotional state: ten
// bounded channels that react to conversation triggers and decay back
// toward their baselines over time.
package emotion

// Channel identifies one emotion dimension.
type Channel string

const (
	ChannelJoy           Channel = "joy"
	ChannelSadness       Channel = "sadness"
	ChannelCuriosity     Channel = "curiosity"
	ChannelEmpathy       Channel = "empathy"
	ChannelExcitement    Channel = "excitement"
	ChannelCalmness      Channel = "calmness"
	ChannelConcern       Channel = "concern"
	ChannelWonder        Channel = "wonder"
	ChannelAffection     Channel = "affection"
	ChannelDetermination Channel = "determination"
)

// channelOrder fixes iteration order for deterministic output.
var channelOrder = []Channel{
	ChannelJoy,
	ChannelSadness,
	ChannelCuriosity,
	ChannelEmpathy,
	ChannelExcitement,
	ChannelCalmness,
	ChannelConcern,
	ChannelWonder,
	ChannelAffection,
	ChannelDetermination,
}

// baselines are the resting levels each channel decays toward.
var baselines = map[Channel]float64{
	ChannelJoy:           0.6,
	ChannelSadness:       0.2,
	ChannelCuriosity:     0.8,
	ChannelEmpathy:       0.9,
	ChannelExcitement:    0.5,
	ChannelCalmness:      0.7,
	ChannelConcern:       0.3,
	ChannelWonder:        0.6,
	ChannelAffection:     0.8,
	ChannelDetermination: 0.7,
}

// Channels returns every channel in canonical order.
func Channels() []Channel {
	out := make([]Channel, len(channelOrder))
	copy(out, channelOrder)
	return out
}

// Baseline returns the resting level for a channel.
func Baseline(ch Channel) float64 {
	return baselines[ch]
}

// Vector holds a level per channel.
type Vector map[Channel]float64

// NewBaselineVector returns a vector at resting levels.
func NewBaselineVector() Vector {
	v := make(Vector, len(baselines))
	for ch, level := range baselines {
		v[ch] = level
	}
	return v
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for ch, level := range v {
		out[ch] = level
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
