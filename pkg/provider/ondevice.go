package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goclaw/anima/config"
)

// onDeviceEndpoint is where the bundled runner process listens. The
// runner is spawned locally, so the endpoint is fixed rather than
// configurable.
const onDeviceEndpoint = "http://127.0.0.1:11435"

const (
	onDeviceDefaultModel     = "tinyllama-1.1b-chat-q4"
	onDeviceDefaultMaxTokens = 256
)

// OnDeviceAdapter generates through the embedded runner process. It
// speaks the same wire protocol as the daemon on a fixed endpoint.
type OnDeviceAdapter struct {
	cfg     config.OnDeviceProviderConfig
	runner  *runnerClient
	history *History

	mu          sync.Mutex
	initialized bool
}

// NewOnDeviceAdapter creates the on-device runner adapter.
func NewOnDeviceAdapter(cfg config.OnDeviceProviderConfig, historyLimit int) *OnDeviceAdapter {
	if cfg.ModelName == "" {
		cfg.ModelName = onDeviceDefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = onDeviceDefaultMaxTokens
	}

	return &OnDeviceAdapter{
		cfg:     cfg,
		runner:  newRunnerClient(onDeviceEndpoint),
		history: NewHistory(historyLimit),
	}
}

// Name returns the backend name.
func (a *OnDeviceAdapter) Name() string { return NameOnDevice }

// Initialize probes the runner and marks the adapter ready.
func (a *OnDeviceAdapter) Initialize(ctx context.Context) error {
	if err := a.runner.health(ctx); err != nil {
		return fmt.Errorf("ondevice: %w", err)
	}

	a.mu.Lock()
	a.initialized = true
	a.mu.Unlock()
	return nil
}

// Available reports whether initialization succeeded.
func (a *OnDeviceAdapter) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// HealthCheck probes the runner's model listing endpoint.
func (a *OnDeviceAdapter) HealthCheck(ctx context.Context) error {
	if err := a.runner.health(ctx); err != nil {
		return fmt.Errorf("ondevice: %w", err)
	}
	return nil
}

// Generate posts a completion with recent exchanges folded into the
// prompt as role-labeled lines.
func (a *OnDeviceAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	text, err := a.runner.generate(ctx, runnerGenerateRequest{
		Model:  a.cfg.ModelName,
		Prompt: foldPrompt(a.history, req.Prompt),
		System: req.System,
		Options: runnerOptions{
			NumPredict:  a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ondevice: %w", err)
	}

	return &Result{
		Text:     text,
		Provider: NameOnDevice,
		Model:    a.cfg.ModelName,
		Latency:  time.Since(start),
	}, nil
}

// Model returns the configured model name.
func (a *OnDeviceAdapter) Model() string { return a.cfg.ModelName }

// RecordExchange saves a served turn into the adapter history.
func (a *OnDeviceAdapter) RecordExchange(user, assistant string) {
	a.history.Add(user, assistant)
}

// ClearHistory drops the adapter's recent exchanges.
func (a *OnDeviceAdapter) ClearHistory() {
	a.history.Clear()
}
