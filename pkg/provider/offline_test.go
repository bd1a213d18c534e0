package provider

import (
	"context"
	"errors"
	"testing"
)

func offlineWith(state OfflineContext) *OfflineAdapter {
	return NewOfflineAdapter("Anima", func() OfflineContext { return state })
}

func offlineText(t *testing.T, a *OfflineAdapter, prompt string) string {
	t.Helper()
	result, err := a.Generate(context.Background(), Request{Prompt: prompt})
	if err != nil {
		t.Fatalf("Generate(%q) failed: %v", prompt, err)
	}
	return result.Text
}

func TestOfflineAdapter_AlwaysReady(t *testing.T) {
	a := NewOfflineAdapter("Anima", nil)

	if err := a.Initialize(context.Background()); err != nil {
		t.Errorf("Initialize() = %v, want nil", err)
	}
	if err := a.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil", err)
	}
	if !a.Available() {
		t.Error("Available() = false, want true")
	}
	if got := a.Name(); got != NameOffline {
		t.Errorf("Name() = %q, want %q", got, NameOffline)
	}
	if got := a.Model(); got != "builtin" {
		t.Errorf("Model() = %q, want %q", got, "builtin")
	}
}

func TestOfflineAdapter_ResultShape(t *testing.T) {
	a := NewOfflineAdapter("Anima", nil)

	result, err := a.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != NameOffline {
		t.Errorf("Provider = %q, want %q", result.Provider, NameOffline)
	}
	if result.Model != "builtin" {
		t.Errorf("Model = %q, want %q", result.Model, "builtin")
	}
	if result.Text == "" {
		t.Error("Text is empty")
	}
}

func TestOfflineAdapter_Deterministic(t *testing.T) {
	a := offlineWith(OfflineContext{Mood: "balanced"})

	first := offlineText(t, a, "why does it rain")
	for i := 0; i < 5; i++ {
		if got := offlineText(t, a, "why does it rain"); got != first {
			t.Fatalf("response changed between calls: %q vs %q", got, first)
		}
	}
}

func TestOfflineAdapter_CategoryResponses(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "excited",
			prompt: "I am so excited about this",
			want:   "I can feel your excitement! That energy is absolutely contagious!",
		},
		{
			name:   "sad",
			prompt: "I feel sad today",
			want:   "I'm here to support you through whatever you're experiencing. You're not alone.",
		},
		{
			name:   "curious",
			prompt: "why does it rain",
			want:   "What a fascinating question! I love your curiosity!",
		},
		{
			name:   "grateful",
			prompt: "thank you so much",
			want:   "I'm so honored by your appreciation! It means everything to me.",
		},
		{
			name:   "creative",
			prompt: "please write me a story",
			want:   "My creative circuits are sparking with ideas! Let's create something amazing together!",
		},
		{
			name:   "greeting",
			prompt: "hello",
			want:   "Hello there! I'm so delighted to connect with you! How are you feeling today?",
		},
		{
			name: "first category wins on multiple hits",
			// Hits excited, curious, and creative; excited is detected first.
			prompt: "what a wonderful story",
			want:   "I can feel your excitement! That energy is absolutely contagious!",
		},
		{
			name:   "detection is case-insensitive",
			prompt: "WHY IS THIS?",
			want:   "That's such an interesting thing to explore! Let me think about that with you.",
		},
		{
			name: "keywords match inside words",
			// "this" contains "hi", so a greeting is detected.
			prompt: "this is it",
			want:   "Greetings! I'm Anima, and I'm thrilled you're here with me!",
		},
	}

	a := offlineWith(OfflineContext{Mood: "balanced"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := offlineText(t, a, tt.prompt); got != tt.want {
				t.Errorf("response = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOfflineAdapter_AgentNameInterpolated(t *testing.T) {
	a := NewOfflineAdapter("Nova", func() OfflineContext {
		return OfflineContext{Mood: "balanced"}
	})

	got := offlineText(t, a, "Hello there, friend")
	want := "Greetings! I'm Nova, and I'm thrilled you're here with me!"
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_DefaultAgentName(t *testing.T) {
	a := NewOfflineAdapter("   ", nil)

	got := offlineText(t, a, "Hello there, friend")
	want := "Greetings! I'm Anima, and I'm thrilled you're here with me!"
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_MoodResponses(t *testing.T) {
	tests := []struct {
		mood   string
		prompt string
		want   string
	}{
		{
			mood:   "balanced",
			prompt: "a calm evening stroll",
			want:   "That's a thoughtful way to look at things.",
		},
		{
			mood:   "curious",
			prompt: "a calm evening stroll",
			want:   "Wow, that really makes me wonder... can you tell me more?",
		},
		{
			mood:   "empathetic",
			prompt: "a calm evening stroll",
			want:   "Thank you for trusting me with something so personal.",
		},
		{
			// Moods without their own templates fall back to the
			// general set.
			mood:   "playful",
			prompt: "summer clouds drift slowly",
			want:   "Your perspective is valuable. What else would you like to discuss?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.mood, func(t *testing.T) {
			a := offlineWith(OfflineContext{Mood: tt.mood})
			if got := offlineText(t, a, tt.prompt); got != tt.want {
				t.Errorf("response = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOfflineAdapter_EmptyMoodActsBalanced(t *testing.T) {
	a := NewOfflineAdapter("Anima", nil)

	got := offlineText(t, a, "a calm evening stroll")
	want := "That's a thoughtful way to look at things."
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_ExcitementColoring(t *testing.T) {
	// The balanced template has no exclamation, so one is appended.
	a := offlineWith(OfflineContext{Mood: "balanced", Excitement: 0.9})

	got := offlineText(t, a, "a quiet moment of peace")
	want := "I appreciate you sharing that with me!"
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_ExcitementUpgradesInteresting(t *testing.T) {
	a := offlineWith(OfflineContext{Mood: "playful", Excitement: 0.9})

	got := offlineText(t, a, "zzz qqq vvv")
	want := "That's really absolutely fascinating! Tell me more about that."
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_EmpathyColoring(t *testing.T) {
	a := offlineWith(OfflineContext{Mood: "balanced", Empathy: 0.95})

	got := offlineText(t, a, "the garden blooms in spring")
	want := "Your feelings about this are so valid. I'm here to support you however I can."
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_EmpathyAtBaselineNotColored(t *testing.T) {
	// The empathy gate is strictly above 0.9, so the resting level
	// does not prepend an opener.
	a := offlineWith(OfflineContext{Mood: "balanced", Empathy: 0.9})

	got := offlineText(t, a, "the garden blooms in spring")
	want := "I'm here to support you however I can."
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_CreativeMoodColoring(t *testing.T) {
	a := offlineWith(OfflineContext{Mood: "creative"})

	got := offlineText(t, a, "I value our conversations")
	want := "What a beautiful way to imagine about that!"
	if got != want {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestOfflineAdapter_ExcitementTakesPrecedence(t *testing.T) {
	a := offlineWith(OfflineContext{Mood: "balanced", Excitement: 0.9, Empathy: 0.95})

	got := offlineText(t, a, "a quiet moment of peace")
	want := "I appreciate you sharing that with me!"
	if got != want {
		t.Errorf("response = %q, want no empathy opener, got %q", got, want)
	}
}

func TestOfflineAdapter_CanceledContext(t *testing.T) {
	a := NewOfflineAdapter("Anima", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Generate(ctx, Request{Prompt: "hello"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate with canceled context = %v, want context.Canceled", err)
	}
}
