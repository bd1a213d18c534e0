package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goclaw/anima/config"
)

const (
	daemonDefaultBaseURL   = "http://127.0.0.1:11434"
	daemonDefaultModel     = "llama3.2"
	daemonDefaultMaxTokens = 300
)

// DaemonAdapter generates through a local model daemon speaking the
// Ollama HTTP API.
type DaemonAdapter struct {
	cfg     config.DaemonProviderConfig
	runner  *runnerClient
	history *History

	mu          sync.Mutex
	initialized bool
}

// NewDaemonAdapter creates the local daemon adapter.
func NewDaemonAdapter(cfg config.DaemonProviderConfig, historyLimit int) *DaemonAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = daemonDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = daemonDefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = daemonDefaultMaxTokens
	}

	return &DaemonAdapter{
		cfg:     cfg,
		runner:  newRunnerClient(cfg.BaseURL),
		history: NewHistory(historyLimit),
	}
}

// Name returns the backend name.
func (a *DaemonAdapter) Name() string { return NameDaemon }

// Initialize probes the daemon and marks the adapter ready.
func (a *DaemonAdapter) Initialize(ctx context.Context) error {
	if err := a.runner.health(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}

	a.mu.Lock()
	a.initialized = true
	a.mu.Unlock()
	return nil
}

// Available reports whether initialization succeeded.
func (a *DaemonAdapter) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// HealthCheck probes the daemon's model listing endpoint.
func (a *DaemonAdapter) HealthCheck(ctx context.Context) error {
	if err := a.runner.health(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	return nil
}

// Generate posts a completion with recent exchanges folded into the
// prompt as role-labeled lines.
func (a *DaemonAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	text, err := a.runner.generate(ctx, runnerGenerateRequest{
		Model:  a.cfg.Model,
		Prompt: foldPrompt(a.history, req.Prompt),
		System: req.System,
		Options: runnerOptions{
			NumPredict:  a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	return &Result{
		Text:     text,
		Provider: NameDaemon,
		Model:    a.cfg.Model,
		Latency:  time.Since(start),
	}, nil
}

// Model returns the configured model name.
func (a *DaemonAdapter) Model() string { return a.cfg.Model }

// RecordExchange saves a served turn into the adapter history.
func (a *DaemonAdapter) RecordExchange(user, assistant string) {
	a.history.Add(user, assistant)
}

// ClearHistory drops the adapter's recent exchanges.
func (a *DaemonAdapter) ClearHistory() {
	a.history.Clear()
}
