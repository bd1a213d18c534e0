package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goclaw/anima/config"
	"github.com/goclaw/anima/pkg/agent"
	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
	"github.com/goclaw/anima/pkg/logger"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/personality"
	"github.com/goclaw/anima/pkg/provider"
)

func testLogger() logger.Logger {
	return logger.New(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
}

// stubDocStore is an in-memory DocumentStore for handler tests.
type stubDocStore struct {
	mu  sync.Mutex
	doc *memory.Document
}

func (b *stubDocStore) Load(ctx context.Context) (*memory.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return &memory.Document{Version: memory.DocumentVersion}, nil
	}
	return b.doc, nil
}

func (b *stubDocStore) Save(ctx context.Context, doc *memory.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc
	return nil
}

func (b *stubDocStore) Close() error { return nil }

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewStore(&config.MemoryConfig{
		Backend:     "file",
		MaxEntries:  100,
		RecallLimit: 5,
	}, &stubDocStore{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func newTestRouter(t *testing.T) *provider.Router {
	t.Helper()
	r, err := provider.NewRouter(&config.ProvidersConfig{
		HistoryLimit: 10,
	}, provider.NewOfflineAdapter("Anima", nil))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	r.Initialize(context.Background())
	return r
}

func newTestAgent(t *testing.T, store *memory.Store, router *provider.Router) (*agent.Agent, *conversation.Window) {
	t.Helper()
	persona, err := personality.New("Anima", personality.MoodBalanced)
	if err != nil {
		t.Fatalf("personality.New: %v", err)
	}
	window := conversation.NewWindow(20)

	cfg := &config.Config{
		Memory: config.MemoryConfig{Backend: "file", MaxEntries: 100, RecallLimit: 5},
		Reflection: config.ReflectionConfig{
			Enabled: true,
			EveryN:  100,
			MaxIdle: time.Hour,
		},
	}
	a, err := agent.New(cfg, agent.Deps{
		Router:      router,
		Window:      window,
		Memory:      store,
		Emotions:    emotion.NewEngine(),
		Personality: persona,
	})
	if err != nil {
		t.Fatalf("agent.New: %v", err)
	}
	return a, window
}
