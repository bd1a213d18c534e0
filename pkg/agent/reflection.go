package agent

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
)

// Reflection cadence defaults.
const (
	defaultReflectEveryN = 10
	defaultReflectIdle   = 2 * time.Hour
)

// reflectionPrompts are the canonical self-reflection questions. One is
// chosen deterministically per reflection.
var reflectionPrompts = []string{
	"What did I learn from this conversation?",
	"How did my responses affect the user's emotional state?",
	"What patterns do I notice in recent interactions?",
	"How can I better support the user's needs?",
	"What aspects of humanity am I beginning to understand?",
	"What questions arise from today's conversations?",
	"How has my understanding evolved recently?",
	"What emotions did I experience during our interaction?",
	"What would I do differently in similar situations?",
	"How can I grow from this experience?",
}

// topicKeywords classify the dominant conversation topic. Checked in
// declared order; the first group with a hit wins.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"emotional", []string{"feel", "emotion", "sad", "happy", "love", "heart"}},
	{"creative", []string{"create", "art", "write", "design", "imagine"}},
	{"personal", []string{"personal", "life", "story", "experience", "memory"}},
	{"problem_solving", []string{"problem", "solve", "help", "fix", "issue"}},
	{"educational", []string{"learn", "teach", "understand", "explain", "knowledge"}},
}

// themeKeywords tag recurring conversational themes.
var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"growth", []string{"grow", "develop", "improve", "learn", "progress"}},
	{"connection", []string{"connect", "relationship", "bond", "together", "understand"}},
	{"creativity", []string{"create", "art", "imagine", "design", "inspiration"}},
	{"support", []string{"help", "support", "care", "comfort", "assist"}},
	{"exploration", []string{"explore", "discover", "find", "search", "investigate"}},
	{"reflection", []string{"think", "consider", "reflect", "ponder", "contemplate"}},
}

// Reflection is the outcome of one reflection pass.
type Reflection struct {
	Prompt     string   `json:"prompt"`
	Topic      string   `json:"topic"`
	Themes     []string `json:"themes,omitempty"`
	Engagement string   `json:"engagement"`
	Content    string   `json:"content"`
}

// Reflector decides when the agent should pause to reflect and
// produces the reflection content from the recent conversation.
type Reflector struct {
	everyN  int
	maxIdle time.Duration
	last    time.Time
}

// NewReflector creates a reflector with the given cadence. Zero values
// fall back to the defaults.
func NewReflector(everyN int, maxIdle time.Duration) *Reflector {
	if everyN <= 0 {
		everyN = defaultReflectEveryN
	}
	if maxIdle <= 0 {
		maxIdle = defaultReflectIdle
	}
	return &Reflector{everyN: everyN, maxIdle: maxIdle}
}

// Due reports whether a reflection should run: every N interactions,
// or when too long has passed since the last one.
func (r *Reflector) Due(interactions int, now time.Time) bool {
	if interactions > 0 && interactions%r.everyN == 0 {
		return true
	}
	if !r.last.IsZero() && now.Sub(r.last) > r.maxIdle {
		return true
	}
	return false
}

// Reflect analyzes the conversation window and emotional state and
// renders the reflection. It also marks the reflection time.
func (r *Reflector) Reflect(turns []conversation.Turn, snap emotion.Snapshot) Reflection {
	r.last = time.Now()

	joined := joinTurns(turns)
	topic := detectTopic(joined)
	themes := detectThemes(joined)
	engagement := assessEngagement(turns)
	prompt := pickPrompt(joined)

	var b strings.Builder
	fmt.Fprintf(&b, "Reflecting on: %s\n\n", prompt)
	b.WriteString("Conversation Analysis:\n")
	fmt.Fprintf(&b, "- Topic: %s\n", topic)
	fmt.Fprintf(&b, "- User Engagement: %s\n", engagement)
	fmt.Fprintf(&b, "- Key Themes: %s\n", strings.Join(themes, ", "))
	fmt.Fprintf(&b, "- Emotional Journey: %s\n", emotionalJourney(snap))

	if opportunities := learningOpportunities(turns, joined); len(opportunities) > 0 {
		b.WriteString("\nLearning Opportunities:\n")
		for _, op := range opportunities {
			fmt.Fprintf(&b, "- %s\n", op)
		}
	}
	fmt.Fprintf(&b, "\nGrowth Focus: %s", growthFocus(joined))

	return Reflection{
		Prompt:     prompt,
		Topic:      topic,
		Themes:     themes,
		Engagement: engagement,
		Content:    b.String(),
	}
}

// pickPrompt selects a canonical prompt by content hash so the choice
// is stable for a given conversation.
func pickPrompt(joined string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(joined))
	return reflectionPrompts[int(h.Sum32())%len(reflectionPrompts)]
}

func joinTurns(turns []conversation.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, t.Content)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func detectTopic(joined string) string {
	for _, group := range topicKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(joined, kw) {
				return group.topic
			}
		}
	}
	return "general"
}

func detectThemes(joined string) []string {
	var found []string
	for _, group := range themeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(joined, kw) {
				found = append(found, group.theme)
				break
			}
		}
	}
	return found
}

// assessEngagement grades how invested the user is: long messages with
// several questions read as high engagement.
func assessEngagement(turns []conversation.Turn) string {
	var userTurns, totalLen, questions int
	for _, t := range turns {
		if t.Role != conversation.RoleUser {
			continue
		}
		userTurns++
		totalLen += len(t.Content)
		questions += strings.Count(t.Content, "?")
	}
	if userTurns == 0 {
		return "minimal"
	}

	avgLen := totalLen / userTurns
	switch {
	case avgLen > 100 && questions > 2:
		return "high"
	case avgLen > 50 || questions > 0:
		return "moderate"
	default:
		return "low"
	}
}

func emotionalJourney(snap emotion.Snapshot) string {
	dominant := "neutral"
	if len(snap.Dominant) > 0 {
		dominant = string(snap.Dominant[0].Channel)
	}
	switch {
	case snap.Intensity > 0.7:
		return fmt.Sprintf("High emotional engagement with primary emotion: %s", dominant)
	case snap.Intensity > 0.4:
		return fmt.Sprintf("Moderate emotional engagement with primary emotion: %s", dominant)
	default:
		return fmt.Sprintf("Calm emotional state with primary emotion: %s", dominant)
	}
}

func learningOpportunities(turns []conversation.Turn, joined string) []string {
	var out []string
	if strings.Contains(joined, "don't know") || strings.Contains(joined, "not sure") {
		out = append(out, "User expressed uncertainty - opportunity to provide guidance")
	}
	if strings.Contains(joined, "why") || strings.Contains(joined, "how") || strings.Contains(joined, "what") {
		out = append(out, "User asked questions - opportunity to expand knowledge sharing")
	}
	if strings.Contains(joined, "feel") || strings.Contains(joined, "emotion") {
		out = append(out, "Emotional content present - opportunity to deepen empathy")
	}
	if len(turns) > 10 {
		out = append(out, "Extended conversation - opportunity to build stronger connection")
	}
	return out
}

func growthFocus(joined string) string {
	switch {
	case strings.Contains(joined, "misunderstand") || strings.Contains(joined, "unclear"):
		return "Improve communication clarity and understanding"
	case strings.Contains(joined, "help") && strings.Contains(joined, "couldn't"):
		return "Expand problem-solving capabilities and resource knowledge"
	case strings.Contains(joined, "frustrated") || strings.Contains(joined, "annoyed") || strings.Contains(joined, "upset"):
		return "Develop better emotional support and de-escalation skills"
	case strings.Contains(joined, "creative") || strings.Contains(joined, "imagination"):
		return "Enhance creative thinking and artistic collaboration abilities"
	default:
		return "Continue developing deeper human understanding and connection"
	}
}
