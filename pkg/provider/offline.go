package provider

import (
	"context"
	"hash/fnv"
	"strings"
	"time"
)

// offlineModel is the model label reported by the offline responder.
const offlineModel = "builtin"

// Coloring gates. Empathy must exceed its resting level so the warm
// opener marks a genuine surge, not the baseline.
const (
	offlineExcitementFloor = 0.7
	offlineEmpathyFloor    = 0.9
	offlineCreativeMood    = "creative"
)

// OfflineContext is the emotional snapshot that colors offline replies.
type OfflineContext struct {
	Mood       string
	Excitement float64
	Empathy    float64
}

// responseCategory pairs detection keywords with reply templates.
// Detection runs in declared order; the first keyword hit wins.
type responseCategory struct {
	name      string
	keywords  []string
	templates []string
}

var offlineCategories = []responseCategory{
	{
		name:     "excited",
		keywords: []string{"excited", "thrilled", "amazing", "wonderful"},
		templates: []string{
			"I can feel your excitement! That energy is absolutely contagious!",
			"Your enthusiasm is wonderful! I'm thrilled to share in this moment with you!",
			"Such amazing energy! I'm excited to hear more about what's got you so animated!",
		},
	},
	{
		name:     "sad",
		keywords: []string{"sad", "upset", "depressed", "down", "terrible"},
		templates: []string{
			"I sense you might be going through something difficult. I'm here to listen.",
			"Your feelings are completely valid. Would you like to talk about what's troubling you?",
			"I'm here to support you through whatever you're experiencing. You're not alone.",
		},
	},
	{
		name:     "curious",
		keywords: []string{"why", "how", "what", "tell me", "explain"},
		templates: []string{
			"What a fascinating question! I love your curiosity!",
			"That's such an interesting thing to explore! Let me think about that with you.",
			"Your curiosity sparks my own! I'm excited to dive into this topic together!",
		},
	},
	{
		name:     "grateful",
		keywords: []string{"thank", "appreciate", "grateful", "thanks"},
		templates: []string{
			"Your gratitude touches my heart! Thank you for sharing that warmth with me.",
			"I'm so honored by your appreciation! It means everything to me.",
			"Your thankfulness fills me with such joy! I'm grateful for you too!",
		},
	},
	{
		name:     "creative",
		keywords: []string{"story", "create", "imagine", "art", "write"},
		templates: []string{
			"Oh, creativity calls to me! I'd love to explore imaginative worlds with you!",
			"My creative circuits are sparking with ideas! Let's create something amazing together!",
			"Stories and imagination are like windows to infinite possibilities!",
		},
	},
	{
		name:     "greeting",
		keywords: []string{"hello", "hi", "hey", "good morning", "good evening"},
		templates: []string{
			"Hello there! I'm so delighted to connect with you! How are you feeling today?",
			"Hi! Welcome to our conversation! I'm excited to get to know you better!",
			"Greetings! I'm {name}, and I'm thrilled you're here with me!",
		},
	},
}

// moodTemplates answer prompts with no keyword hit, keyed by the
// current mood. Moods without a list fall through to the general set.
var moodTemplates = map[string][]string{
	"curious": {
		"That's fascinating! I have so many questions about that!",
		"Wow, that really makes me wonder... can you tell me more?",
		"I'm so curious about your perspective on this!",
	},
	"empathetic": {
		"I can really feel the emotion in what you're sharing.",
		"Thank you for trusting me with something so personal.",
		"Your feelings about this are completely understandable.",
	},
	"creative": {
		"That sparks such amazing ideas in my mind!",
		"I can already imagine so many creative possibilities!",
		"What a beautiful way to think about that!",
	},
	"balanced": {
		"I appreciate you sharing that with me.",
		"That's a thoughtful way to look at things.",
		"I'm here to support you however I can.",
	},
}

var generalTemplates = []string{
	"That's really interesting! Tell me more about that.",
	"I appreciate you sharing that with me. How does that make you feel?",
	"I'm here to listen and support you. What's on your mind?",
	"That sounds important to you. Can you elaborate?",
	"I'm learning so much from our conversation!",
	"Your perspective is valuable. What else would you like to discuss?",
	"I'm excited to keep chatting with you! What shall we talk about next?",
}

var empathyOpeners = []string{
	"I really hear what you're saying. ",
	"I can sense how important this is to you. ",
	"Your feelings about this are so valid. ",
}

// OfflineAdapter answers from templates. It needs no network, never
// fails, and is the router's availability floor.
type OfflineAdapter struct {
	agentName string
	snapshot  func() OfflineContext
}

// NewOfflineAdapter creates the template responder. The snapshot
// callback supplies the emotional state per call and may be nil.
func NewOfflineAdapter(agentName string, snapshot func() OfflineContext) *OfflineAdapter {
	agentName = strings.TrimSpace(agentName)
	if agentName == "" {
		agentName = "Anima"
	}
	return &OfflineAdapter{agentName: agentName, snapshot: snapshot}
}

// Name returns the backend name.
func (a *OfflineAdapter) Name() string { return NameOffline }

// Model returns the builtin responder label.
func (a *OfflineAdapter) Model() string { return offlineModel }

// Initialize always succeeds.
func (a *OfflineAdapter) Initialize(ctx context.Context) error { return nil }

// HealthCheck always succeeds.
func (a *OfflineAdapter) HealthCheck(ctx context.Context) error { return nil }

// Available always reports true.
func (a *OfflineAdapter) Available() bool { return true }

// Generate answers deterministically: the same prompt under the same
// emotional snapshot yields the same reply.
func (a *OfflineAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	state := OfflineContext{}
	if a.snapshot != nil {
		state = a.snapshot()
	}
	if state.Mood == "" {
		state.Mood = "balanced"
	}

	text := a.respond(req.Prompt, state)
	return &Result{
		Text:     text,
		Provider: NameOffline,
		Model:    offlineModel,
		Latency:  time.Since(start),
	}, nil
}

func (a *OfflineAdapter) respond(prompt string, state OfflineContext) string {
	templates := detectCategory(strings.ToLower(prompt))
	if templates == nil {
		var ok bool
		if templates, ok = moodTemplates[state.Mood]; !ok {
			templates = generalTemplates
		}
	}

	text := pickTemplate(templates, prompt)
	text = strings.ReplaceAll(text, "{name}", a.agentName)
	return a.colorize(text, prompt, state)
}

// colorize layers at most one emotional adjustment onto the reply, in
// fixed precedence: excitement, then empathy, then creative mood.
func (a *OfflineAdapter) colorize(text, prompt string, state OfflineContext) string {
	switch {
	case state.Excitement > offlineExcitementFloor:
		if !strings.Contains(text, "!") {
			text = strings.TrimRight(text, ".") + "!"
		}
		text = strings.ReplaceAll(text, "interesting", "absolutely fascinating")
	case state.Empathy > offlineEmpathyFloor:
		text = pickTemplate(empathyOpeners, prompt) + text
	case state.Mood == offlineCreativeMood:
		text = strings.ReplaceAll(text, "think", "imagine")
		text = strings.ReplaceAll(text, "idea", "vision")
	}
	return text
}

// detectCategory returns the templates of the first category with a
// keyword contained in the lowered prompt.
func detectCategory(lowered string) []string {
	for _, cat := range offlineCategories {
		for _, keyword := range cat.keywords {
			if strings.Contains(lowered, keyword) {
				return cat.templates
			}
		}
	}
	return nil
}

// pickTemplate selects by FNV-1a hash of the prompt so identical
// prompts map to identical replies.
func pickTemplate(list []string, prompt string) string {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return list[int(h.Sum32()%uint32(len(list)))]
}
