// Package personality holds the agent's trait profile and the mood
// overlays that shade it. Traits are stable; moods shift a few traits
// temporarily and feed prompt construction and offline phrasing.
package personality

import (
	"fmt"
	"strings"
	"sync"
)

// Trait identifies one personality dimension.
type Trait string

const (
	TraitEmpathy    Trait = "empathy"
	TraitCreativity Trait = "creativity"
	TraitHumor      Trait = "humor"
	TraitCuriosity  Trait = "curiosity"
	TraitWarmth     Trait = "warmth"
	TraitPatience   Trait = "patience"
	TraitWisdom     Trait = "wisdom"
)

var traitOrder = []Trait{
	TraitEmpathy,
	TraitCreativity,
	TraitHumor,
	TraitCuriosity,
	TraitWarmth,
	TraitPatience,
	TraitWisdom,
}

var baseTraits = map[Trait]float64{
	TraitEmpathy:    0.9,
	TraitCreativity: 0.95,
	TraitHumor:      0.7,
	TraitCuriosity:  0.85,
	TraitWarmth:     0.88,
	TraitPatience:   0.9,
	TraitWisdom:     0.8,
}

// Mood names a temporary overlay over the base traits.
type Mood string

const (
	MoodBalanced   Mood = "balanced"
	MoodCurious    Mood = "curious"
	MoodEmpathetic Mood = "empathetic"
	MoodCreative   Mood = "creative"
	MoodPlayful    Mood = "playful"
	MoodReflective Mood = "reflective"
	MoodSupportive Mood = "supportive"
)

var moodOrder = []Mood{
	MoodBalanced,
	MoodCurious,
	MoodEmpathetic,
	MoodCreative,
	MoodPlayful,
	MoodReflective,
	MoodSupportive,
}

// moodOverlays are additive trait shifts; balanced applies none.
var moodOverlays = map[Mood]map[Trait]float64{
	MoodBalanced: {},
	MoodCurious: {
		TraitCuriosity:  0.1,
		TraitCreativity: 0.05,
	},
	MoodEmpathetic: {
		TraitEmpathy: 0.1,
		TraitWarmth:  0.08,
	},
	MoodCreative: {
		TraitCreativity: 0.15,
		TraitHumor:      0.05,
	},
	MoodPlayful: {
		TraitHumor:      0.1,
		TraitCreativity: 0.05,
	},
	MoodReflective: {
		TraitWisdom:  0.1,
		TraitEmpathy: 0.05,
	},
	MoodSupportive: {
		TraitEmpathy:  0.08,
		TraitPatience: 0.1,
		TraitWarmth:   0.05,
	},
}

// Moods returns every known mood in canonical order.
func Moods() []Mood {
	out := make([]Mood, len(moodOrder))
	copy(out, moodOrder)
	return out
}

// ValidMood reports whether the name is a known mood.
func ValidMood(name string) bool {
	_, ok := moodOverlays[Mood(name)]
	return ok
}

// Traits returns every trait in canonical order.
func Traits() []Trait {
	out := make([]Trait, len(traitOrder))
	copy(out, traitOrder)
	return out
}

// Snapshot is a point-in-time copy of the personality.
type Snapshot struct {
	Name      string            `json:"name"`
	Mood      Mood              `json:"mood"`
	Traits    map[Trait]float64 `json:"traits"`
	Effective map[Trait]float64 `json:"effective"`
}

// State is the agent's personality. Safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	name   string
	mood   Mood
	traits map[Trait]float64
}

// New creates a personality with the given name and starting mood.
func New(name string, mood Mood) (*State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("personality: name cannot be empty")
	}
	if !ValidMood(string(mood)) {
		return nil, fmt.Errorf("personality: unknown mood %q", mood)
	}
	traits := make(map[Trait]float64, len(baseTraits))
	for t, v := range baseTraits {
		traits[t] = v
	}
	return &State{name: name, mood: mood, traits: traits}, nil
}

// Name returns the agent's name.
func (s *State) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Mood returns the current mood.
func (s *State) Mood() Mood {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mood
}

// SetMood switches the current mood overlay.
func (s *State) SetMood(mood Mood) error {
	if !ValidMood(string(mood)) {
		return fmt.Errorf("personality: unknown mood %q", mood)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mood = mood
	return nil
}

// Trait returns the base value of one trait.
func (s *State) Trait(t Trait) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.traits[t]
}

// AdjustTrait shifts a base trait by delta, clamped to [0, 1]. A
// temporary adjustment returns the value the trait would take without
// storing it; a permanent one stores the clamped result.
func (s *State) AdjustTrait(t Trait, delta float64, temporary bool) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.traits[t]
	if !ok {
		return 0, fmt.Errorf("personality: unknown trait %q", t)
	}
	adjusted := current + delta
	if adjusted > 1 {
		adjusted = 1
	} else if adjusted < 0 {
		adjusted = 0
	}
	if !temporary {
		s.traits[t] = adjusted
	}
	return adjusted, nil
}

// EffectiveTrait returns one trait with the mood overlay applied.
func (s *State) EffectiveTrait(t Trait) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveTraitLocked(t)
}

func (s *State) effectiveTraitLocked(t Trait) float64 {
	base, ok := s.traits[t]
	if !ok {
		return 0
	}
	v := base + moodOverlays[s.mood][t]
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// Effective returns all traits with the mood overlay applied.
func (s *State) Effective() map[Trait]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Trait]float64, len(baseTraits))
	for _, t := range traitOrder {
		out[t] = s.effectiveTraitLocked(t)
	}
	return out
}

// Describe renders the personality for prompt use: name, mood, and
// effective traits in canonical order.
func (s *State) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s is in a %s mood. Traits:", s.name, s.mood)
	for i, t := range traitOrder {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s %.2f", t, s.effectiveTraitLocked(t))
	}
	b.WriteByte('.')
	return b.String()
}

// Snapshot returns a copy of the current personality.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	traits := make(map[Trait]float64, len(s.traits))
	effective := make(map[Trait]float64, len(s.traits))
	for _, t := range traitOrder {
		traits[t] = s.traits[t]
		effective[t] = s.effectiveTraitLocked(t)
	}
	return Snapshot{
		Name:      s.name,
		Mood:      s.mood,
		Traits:    traits,
		Effective: effective,
	}
}
