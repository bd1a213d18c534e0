package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/goclaw/anima/config"
)

const (
	hostedDefaultModel     = "claude-3-5-haiku-latest"
	hostedDefaultMaxTokens = 300
)

// HostedAdapter generates through the Anthropic Messages API.
type HostedAdapter struct {
	cfg     config.HostedProviderConfig
	history *History
	limiter *rate.Limiter

	mu          sync.Mutex
	client      *anthropic.Client
	initialized bool
}

// NewHostedAdapter creates the hosted API adapter.
func NewHostedAdapter(cfg config.HostedProviderConfig, historyLimit int) *HostedAdapter {
	if cfg.Model == "" {
		cfg.Model = hostedDefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = hostedDefaultMaxTokens
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &HostedAdapter{
		cfg:     cfg,
		history: NewHistory(historyLimit),
		limiter: limiter,
	}
}

// Name returns the backend name.
func (a *HostedAdapter) Name() string { return NameHosted }

// Initialize validates credentials and builds the API client. No probe
// call is made; a bad key surfaces on the first generation.
func (a *HostedAdapter) Initialize(ctx context.Context) error {
	if strings.TrimSpace(a.cfg.APIKey) == "" {
		return fmt.Errorf("hosted: api_key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(a.cfg.APIKey))

	a.mu.Lock()
	a.client = &client
	a.initialized = true
	a.mu.Unlock()
	return nil
}

// Available reports whether initialization succeeded.
func (a *HostedAdapter) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// HealthCheck verifies the client is ready. The Messages API has no
// free probe endpoint, so health mirrors initialization state.
func (a *HostedAdapter) HealthCheck(ctx context.Context) error {
	if !a.Available() {
		return &UnavailableError{Provider: NameHosted}
	}
	return nil
}

// Generate calls the Messages API with the recent exchanges replayed
// as alternating user/assistant turns.
func (a *HostedAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()
	if client == nil {
		return nil, &UnavailableError{Provider: NameHosted}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("hosted: rate limit wait: %w", err)
		}
	}

	recent := a.history.Recent(contextExchanges)
	messages := make([]anthropic.MessageParam, 0, 2*len(recent)+1)
	for _, exchange := range recent {
		messages = append(messages,
			anthropic.NewUserMessage(anthropic.NewTextBlock(exchange.User)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(exchange.Assistant)),
		)
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   int64(a.cfg.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(a.cfg.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("hosted: messages call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Result{
		Text:     text,
		Provider: NameHosted,
		Model:    a.cfg.Model,
		Latency:  time.Since(start),
	}, nil
}

// Model returns the configured model identifier.
func (a *HostedAdapter) Model() string { return a.cfg.Model }

// RecordExchange saves a served turn into the adapter history.
func (a *HostedAdapter) RecordExchange(user, assistant string) {
	a.history.Add(user, assistant)
}

// ClearHistory drops the adapter's recent exchanges.
func (a *HostedAdapter) ClearHistory() {
	a.history.Clear()
}
