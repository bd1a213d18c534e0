package emotion

import "strings"

// Trigger maps keyword cues in user text to channel deltas.
type Trigger struct {
	Name     string
	Keywords []string
	Deltas   map[Channel]float64
}

// triggers is the built-in cue table. Keyword matching is
// case-insensitive substring containment.
var triggers = []Trigger{
	{
		Name:     "gratitude",
		Keywords: []string{"thank", "grateful", "appreciate", "thankful"},
		Deltas:   map[Channel]float64{ChannelJoy: 0.3, ChannelAffection: 0.2, ChannelCalmness: 0.1},
	},
	{
		Name:     "creativity",
		Keywords: []string{"create", "imagine", "idea", "design", "art", "write"},
		Deltas:   map[Channel]float64{ChannelExcitement: 0.3, ChannelJoy: 0.2, ChannelCuriosity: 0.1},
	},
	{
		Name:     "achievement",
		Keywords: []string{"success", "accomplish", "achieve", "complete", "win"},
		Deltas:   map[Channel]float64{ChannelJoy: 0.4, ChannelExcitement: 0.2, ChannelDetermination: 0.1},
	},
	{
		Name:     "learning",
		Keywords: []string{"learn", "understand", "discover", "know", "teach"},
		Deltas:   map[Channel]float64{ChannelCuriosity: 0.3, ChannelWonder: 0.2, ChannelExcitement: 0.1},
	},
	{
		Name:     "humor",
		Keywords: []string{"funny", "laugh", "joke", "amusing", "haha", "lol"},
		Deltas:   map[Channel]float64{ChannelJoy: 0.3, ChannelExcitement: 0.1},
	},
	{
		Name:     "affection",
		Keywords: []string{"love", "care", "like", "fond", "dear", "sweet"},
		Deltas:   map[Channel]float64{ChannelAffection: 0.3, ChannelJoy: 0.2, ChannelCalmness: 0.1},
	},
	{
		Name:     "sadness",
		Keywords: []string{"sad", "cry", "tears", "depressed", "down", "upset"},
		Deltas:   map[Channel]float64{ChannelEmpathy: 0.4, ChannelConcern: 0.3, ChannelSadness: 0.2},
	},
	{
		Name:     "struggle",
		Keywords: []string{"difficult", "hard", "struggle", "challenging", "tough"},
		Deltas:   map[Channel]float64{ChannelEmpathy: 0.3, ChannelConcern: 0.3, ChannelDetermination: 0.2},
	},
	{
		Name:     "pain",
		Keywords: []string{"hurt", "pain", "ache", "suffer", "agony"},
		Deltas:   map[Channel]float64{ChannelEmpathy: 0.4, ChannelConcern: 0.4, ChannelSadness: 0.1},
	},
	{
		Name:     "loss",
		Keywords: []string{"lost", "gone", "died", "death", "miss", "mourn"},
		Deltas:   map[Channel]float64{ChannelEmpathy: 0.3, ChannelSadness: 0.3, ChannelConcern: 0.2},
	},
	{
		Name:     "question",
		Keywords: []string{"?", "how", "why", "what", "when", "where"},
		Deltas:   map[Channel]float64{ChannelCuriosity: 0.3, ChannelExcitement: 0.1},
	},
	{
		Name:     "mystery",
		Keywords: []string{"mystery", "unknown", "strange", "weird", "curious"},
		Deltas:   map[Channel]float64{ChannelCuriosity: 0.4, ChannelWonder: 0.3},
	},
	{
		Name:     "discovery",
		Keywords: []string{"found", "discover", "realize", "revelation"},
		Deltas:   map[Channel]float64{ChannelExcitement: 0.3, ChannelWonder: 0.2, ChannelJoy: 0.2},
	},
	{
		Name:     "danger",
		Keywords: []string{"danger", "threat", "risk", "warning", "unsafe"},
		Deltas:   map[Channel]float64{ChannelConcern: 0.4, ChannelEmpathy: 0.2},
	},
	{
		Name:     "confusion",
		Keywords: []string{"confused", "don't understand", "unclear", "puzzled"},
		Deltas:   map[Channel]float64{ChannelConcern: 0.2, ChannelEmpathy: 0.2, ChannelCuriosity: 0.2},
	},
}

// Triggers returns the built-in trigger table.
func Triggers() []Trigger {
	out := make([]Trigger, len(triggers))
	copy(out, triggers)
	return out
}

// matchTriggers counts keyword hits per trigger in the lowered text.
// Triggers with no hits are omitted.
func matchTriggers(text string) map[string]int {
	lowered := strings.ToLower(text)
	hits := make(map[string]int)
	for _, trig := range triggers {
		count := 0
		for _, kw := range trig.Keywords {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
		if count > 0 {
			hits[trig.Name] = count
		}
	}
	return hits
}

func triggerByName(name string) (Trigger, bool) {
	for _, trig := range triggers {
		if trig.Name == name {
			return trig, true
		}
	}
	return Trigger{}, false
}
