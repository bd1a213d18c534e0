package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goclaw/anima/config"
)

func daemonTestConfig(baseURL string) config.DaemonProviderConfig {
	return config.DaemonProviderConfig{
		BaseURL:     baseURL,
		Model:       "llama3.2",
		MaxTokens:   128,
		Temperature: 0.6,
	}
}

func TestDaemonAdapter_Defaults(t *testing.T) {
	a := NewDaemonAdapter(config.DaemonProviderConfig{}, 0)

	if got := a.cfg.BaseURL; got != daemonDefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", got, daemonDefaultBaseURL)
	}
	if got := a.cfg.Model; got != daemonDefaultModel {
		t.Errorf("Model = %q, want %q", got, daemonDefaultModel)
	}
	if got := a.cfg.MaxTokens; got != daemonDefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", got, daemonDefaultMaxTokens)
	}
	if a.Available() {
		t.Error("Available() = true before Initialize")
	}
}

func TestDaemonAdapter_Initialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("probe path = %q, want /api/tags", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)
	if err := a.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !a.Available() {
		t.Error("Available() = false after successful Initialize")
	}
	if err := a.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestDaemonAdapter_InitializeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)
	if err := a.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize succeeded against a failing daemon")
	}
	if a.Available() {
		t.Error("Available() = true after failed Initialize")
	}
}

func TestDaemonAdapter_Generate(t *testing.T) {
	var captured runnerGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("generate path = %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "  all is well \n"})
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)

	result, err := a.Generate(context.Background(), Request{
		System: "be kind",
		Prompt: "how are you",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if captured.Model != "llama3.2" {
		t.Errorf("request model = %q, want llama3.2", captured.Model)
	}
	if captured.System != "be kind" {
		t.Errorf("request system = %q, want %q", captured.System, "be kind")
	}
	if captured.Stream {
		t.Error("request stream = true, want false")
	}
	if captured.Options.NumPredict != 128 {
		t.Errorf("num_predict = %d, want 128", captured.Options.NumPredict)
	}
	if captured.Options.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", captured.Options.Temperature)
	}
	if want := "Human: how are you\nAssistant:"; captured.Prompt != want {
		t.Errorf("request prompt = %q, want %q", captured.Prompt, want)
	}

	if result.Text != "all is well" {
		t.Errorf("Text = %q, want trimmed %q", result.Text, "all is well")
	}
	if result.Provider != NameDaemon {
		t.Errorf("Provider = %q, want %q", result.Provider, NameDaemon)
	}
	if result.Model != "llama3.2" {
		t.Errorf("Model = %q, want llama3.2", result.Model)
	}
}

func TestDaemonAdapter_GenerateFoldsHistory(t *testing.T) {
	var captured runnerGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)
	for _, pair := range [][2]string{{"q1", "a1"}, {"q2", "a2"}, {"q3", "a3"}, {"q4", "a4"}} {
		a.RecordExchange(pair[0], pair[1])
	}

	if _, err := a.Generate(context.Background(), Request{Prompt: "q5"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Only the last three exchanges ride along.
	want := "Human: q2\nAssistant: a2\n" +
		"Human: q3\nAssistant: a3\n" +
		"Human: q4\nAssistant: a4\n" +
		"Human: q5\nAssistant:"
	if captured.Prompt != want {
		t.Errorf("folded prompt = %q, want %q", captured.Prompt, want)
	}
	if strings.Contains(captured.Prompt, "q1") {
		t.Error("folded prompt contains an exchange older than the context window")
	}
}

func TestDaemonAdapter_ClearHistory(t *testing.T) {
	var captured runnerGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)
	a.RecordExchange("old question", "old answer")
	a.ClearHistory()

	if _, err := a.Generate(context.Background(), Request{Prompt: "fresh"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if want := "Human: fresh\nAssistant:"; captured.Prompt != want {
		t.Errorf("folded prompt after clear = %q, want %q", captured.Prompt, want)
	}
}

func TestDaemonAdapter_GenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)
	_, err := a.Generate(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate succeeded against a failing daemon")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention the status code", err)
	}
}

func TestDaemonAdapter_GenerateCanceled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	a := NewDaemonAdapter(daemonTestConfig(server.URL), 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := a.Generate(ctx, Request{Prompt: "hi"})
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Generate = %v, want context.Canceled in chain", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
}

func TestFoldPrompt_Empty(t *testing.T) {
	h := NewHistory(10)
	if got, want := foldPrompt(h, "hello"), "Human: hello\nAssistant:"; got != want {
		t.Errorf("foldPrompt = %q, want %q", got, want)
	}
}
