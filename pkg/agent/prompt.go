package agent

import (
	"fmt"
	"strings"

	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/personality"
	"github.com/goclaw/anima/pkg/provider"
)

// promptWindowTurns is how many window turns feed the prompt: the last
// three exchanges.
const promptWindowTurns = 6

// systemPreamble frames every generation call; the live personality,
// emotional, and memory sections are appended per turn.
const systemPreamble = `You are a personal conversational companion with a persistent memory, an evolving emotional state, and a stable personality. Respond naturally and conversationally, let your current mood and emotions color your phrasing, and draw on remembered details when they are relevant.`

// PromptInput carries the per-turn context for prompt assembly.
type PromptInput struct {
	UserText string
	Memories []*memory.Entry
	Recent   []conversation.Turn
}

// PromptBuilder renders generation requests from the agent's state.
// Assembly is deterministic: identical state produces an identical
// prompt.
type PromptBuilder struct {
	persona  *personality.State
	emotions *emotion.Engine
}

// NewPromptBuilder creates a builder over the live personality and
// emotion state.
func NewPromptBuilder(persona *personality.State, emotions *emotion.Engine) *PromptBuilder {
	return &PromptBuilder{persona: persona, emotions: emotions}
}

// Build assembles the system context and prompt for one turn.
func (b *PromptBuilder) Build(input PromptInput) provider.Request {
	var sys strings.Builder
	sys.WriteString(systemPreamble)

	sys.WriteString("\n\nPersonality: ")
	sys.WriteString(b.persona.Describe())

	snap := b.emotions.Snapshot()
	fmt.Fprintf(&sys, "\nEmotional state: tone %s", snap.Tone)
	for i, dom := range snap.Dominant {
		if i == 0 {
			sys.WriteString("; strongest feelings:")
		}
		fmt.Fprintf(&sys, " %s %.2f", dom.Channel, dom.Level)
	}
	sys.WriteString("\nResponse guidance: ")
	sys.WriteString(b.emotions.Modifier())

	if len(input.Memories) > 0 {
		sys.WriteString("\n\nRelevant memories:")
		for _, m := range input.Memories {
			sys.WriteString("\n- ")
			sys.WriteString(m.Content)
		}
	}

	if len(input.Recent) > 0 {
		sys.WriteString("\n\nRecent conversation:")
		for _, turn := range input.Recent {
			sys.WriteString("\n")
			sys.WriteString(b.roleLabel(turn.Role))
			sys.WriteString(": ")
			sys.WriteString(turn.Content)
		}
	}

	return provider.Request{
		System: sys.String(),
		Prompt: input.UserText,
	}
}

func (b *PromptBuilder) roleLabel(role conversation.Role) string {
	if role == conversation.RoleAssistant {
		return b.persona.Name()
	}
	return "User"
}
