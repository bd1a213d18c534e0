package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goclaw/anima/config"
	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/personality"
	"github.com/goclaw/anima/pkg/provider"
)

// stubGenerator is a scriptable router for pipeline tests.
type stubGenerator struct {
	mu       sync.Mutex
	text     string
	provider string
	err      error
	calls    int
	requests []string
	cleared  int
}

func (g *stubGenerator) Generate(ctx context.Context, req provider.Request) (*provider.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.requests = append(g.requests, req.Prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &provider.Result{Text: g.text, Provider: g.provider}, nil
}

func (g *stubGenerator) ClearHistories() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cleared++
}

// memBackend is an in-memory DocumentStore so agent tests exercise a
// real memory store.
type memBackend struct {
	mu  sync.Mutex
	doc *memory.Document
}

func (b *memBackend) Load(ctx context.Context) (*memory.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return &memory.Document{Version: memory.DocumentVersion}, nil
	}
	return b.doc, nil
}

func (b *memBackend) Save(ctx context.Context, doc *memory.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc
	return nil
}

func (b *memBackend) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Memory: config.MemoryConfig{
			Backend:     "file",
			MaxEntries:  100,
			RecallLimit: 5,
		},
		Personality: config.PersonalityConfig{
			Name: "Anima",
			Mood: "balanced",
		},
		Reflection: config.ReflectionConfig{
			Enabled: true,
			EveryN:  10,
			MaxIdle: 2 * time.Hour,
		},
	}
}

type fixture struct {
	agent  *Agent
	router *stubGenerator
	window *conversation.Window
	store  *memory.Store
}

func newFixture(t *testing.T, cfg *config.Config, router *stubGenerator) *fixture {
	t.Helper()

	store, err := memory.NewStore(&cfg.Memory, &memBackend{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	persona, err := personality.New(cfg.Personality.Name, personality.Mood(cfg.Personality.Mood))
	if err != nil {
		t.Fatalf("personality.New: %v", err)
	}
	window := conversation.NewWindow(20)

	a, err := New(cfg, Deps{
		Router:      router,
		Window:      window,
		Memory:      store,
		Emotions:    emotion.NewEngine(),
		Personality: persona,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{agent: a, router: router, window: window, store: store}
}

func TestProcessTurn_Success(t *testing.T) {
	router := &stubGenerator{text: "Hello there!", provider: "hosted"}
	f := newFixture(t, testConfig(), router)

	res, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "Good morning"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Response != "Hello there!" {
		t.Errorf("expected response from router, got %q", res.Response)
	}
	if res.Provider != "hosted" {
		t.Errorf("expected provider hosted, got %q", res.Provider)
	}
	if res.SessionID != "default" {
		t.Errorf("expected default session id, got %q", res.SessionID)
	}
	if !res.MemoryUpdated {
		t.Error("expected memory to be updated")
	}

	// Both halves of the exchange land in the window, in order.
	turns := f.window.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("expected 2 window turns, got %d", len(turns))
	}
	if turns[0].Role != conversation.RoleUser || turns[0].Content != "Good morning" {
		t.Errorf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != conversation.RoleAssistant || turns[1].Content != "Hello there!" {
		t.Errorf("unexpected assistant turn: %+v", turns[1])
	}

	// Both halves are remembered.
	if got := f.store.Len(); got != 2 {
		t.Errorf("expected 2 memories, got %d", got)
	}
	if got := f.agent.Interactions(); got != 1 {
		t.Errorf("expected 1 interaction, got %d", got)
	}
}

func TestProcessTurn_EmptyText(t *testing.T) {
	f := newFixture(t, testConfig(), &stubGenerator{text: "hi", provider: "hosted"})

	if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "   "}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if f.router.calls != 0 {
		t.Errorf("expected no generation calls, got %d", f.router.calls)
	}
}

func TestProcessTurn_CanceledLeavesStateUntouched(t *testing.T) {
	router := &stubGenerator{err: context.Canceled}
	f := newFixture(t, testConfig(), router)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.agent.ProcessTurn(ctx, TurnRequest{Text: "still there?"})
	if err == nil {
		t.Fatal("expected error from canceled turn")
	}
	if f.window.Len() != 0 {
		t.Errorf("expected empty window after cancel, got %d turns", f.window.Len())
	}
	if f.store.Len() != 0 {
		t.Errorf("expected no memories after cancel, got %d", f.store.Len())
	}
	if got := f.agent.Interactions(); got != 0 {
		t.Errorf("expected 0 interactions after cancel, got %d", got)
	}
}

func TestProcessTurn_ExhaustedCommitsApology(t *testing.T) {
	router := &stubGenerator{err: errors.New("all providers down")}
	f := newFixture(t, testConfig(), router)

	res, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "anyone home?", SessionID: "s1"})
	if err != nil {
		t.Fatalf("expected apology result, got error %v", err)
	}
	if res.Response != apologyResponse {
		t.Errorf("expected apology response, got %q", res.Response)
	}
	if res.MemoryUpdated {
		t.Error("failed turn should not update memory")
	}

	// The apology is committed so the conversation survives.
	turns := f.window.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("expected 2 window turns, got %d", len(turns))
	}
	if turns[1].Content != apologyResponse {
		t.Errorf("expected apology in window, got %q", turns[1].Content)
	}
	if f.store.Len() != 0 {
		t.Errorf("failed turn should not be remembered, got %d entries", f.store.Len())
	}
}

func TestProcessTurn_TriggeredTextScoresHigher(t *testing.T) {
	router := &stubGenerator{text: "I'm glad to hear it.", provider: "hosted"}
	f := newFixture(t, testConfig(), router)

	// "thank" trips an emotional trigger, raising importance.
	if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "thank you so much for yesterday"}); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	entries, _ := f.store.List(10, 0)
	var userEntry *memory.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.Content, "User: ") {
			userEntry = e
		}
	}
	if userEntry == nil {
		t.Fatal("expected a remembered user turn")
	}
	want := baseTurnImportance + triggeredTurnBonus
	if userEntry.Importance != want {
		t.Errorf("expected importance %.2f for triggered turn, got %.2f", want, userEntry.Importance)
	}
}

func TestProcessTurn_SessionTag(t *testing.T) {
	router := &stubGenerator{text: "noted", provider: "hosted"}
	f := newFixture(t, testConfig(), router)

	if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "remember this", SessionID: "evening"}); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	entries, _ := f.store.List(10, 0)
	for _, e := range entries {
		found := false
		for _, tag := range e.Tags {
			if tag == "session:evening" {
				found = true
			}
		}
		if !found {
			t.Errorf("entry %q missing session tag, tags %v", e.Content, e.Tags)
		}
	}
}

func TestReflectionCadence(t *testing.T) {
	cfg := testConfig()
	cfg.Reflection.EveryN = 3

	router := &stubGenerator{text: "mm-hm", provider: "hosted"}
	f := newFixture(t, cfg, router)

	for i := 0; i < 3; i++ {
		if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: fmt.Sprintf("turn number %d", i)}); err != nil {
			t.Fatalf("ProcessTurn %d: %v", i, err)
		}
	}

	reflections := f.store.Reflections(10)
	if len(reflections) != 1 {
		t.Fatalf("expected 1 reflection after 3 turns, got %d", len(reflections))
	}
	if reflections[0].Importance != reflectionImportance {
		t.Errorf("expected reflection importance %.2f, got %.2f", reflectionImportance, reflections[0].Importance)
	}
	if !strings.HasPrefix(reflections[0].Content, "Reflecting on: ") {
		t.Errorf("unexpected reflection content: %q", reflections[0].Content)
	}
}

func TestReflectionDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Reflection.Enabled = false
	cfg.Reflection.EveryN = 1

	router := &stubGenerator{text: "ok", provider: "hosted"}
	f := newFixture(t, cfg, router)

	if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "hello"}); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if got := f.store.Reflections(10); len(got) != 0 {
		t.Errorf("expected no reflections when disabled, got %d", len(got))
	}
}

func TestClearConversation(t *testing.T) {
	router := &stubGenerator{text: "sure", provider: "hosted"}
	f := newFixture(t, testConfig(), router)

	if _, err := f.agent.ProcessTurn(context.Background(), TurnRequest{Text: "hello"}); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	memoriesBefore := f.store.Len()

	f.agent.ClearConversation()

	if f.window.Len() != 0 {
		t.Errorf("expected empty window, got %d turns", f.window.Len())
	}
	if f.router.cleared != 1 {
		t.Errorf("expected adapter histories cleared once, got %d", f.router.cleared)
	}
	// Long-term memory survives a conversation reset.
	if f.store.Len() != memoriesBefore {
		t.Errorf("memory should survive clear: had %d, now %d", memoriesBefore, f.store.Len())
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig()
	if _, err := New(nil, Deps{}); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := New(cfg, Deps{}); err == nil {
		t.Error("expected error for missing router")
	}
}
