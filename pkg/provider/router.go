package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goclaw/anima/config"
)

// testPrompt is the canned probe sent by TestAll.
const testPrompt = "Hello, this is a test message."

// testPreviewLen bounds the response preview in test reports.
const testPreviewLen = 100

// routerLogger is the minimal logger interface used by Router.
type routerLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopRouterLogger struct{}

func (nopRouterLogger) Debug(msg string, args ...any) {}
func (nopRouterLogger) Info(msg string, args ...any)  {}
func (nopRouterLogger) Warn(msg string, args ...any)  {}
func (nopRouterLogger) Error(msg string, args ...any) {}

// Telemetry records routing activity.
type Telemetry interface {
	RecordProviderRequest(provider, status string)
	RecordProviderLatency(provider string, duration time.Duration)
	RecordFailover(from, to string)
	SetProviderAvailable(provider string, available bool)
	SetProviderActive(provider string, active bool)
}

type nopTelemetry struct{}

func (nopTelemetry) RecordProviderRequest(provider, status string)                 {}
func (nopTelemetry) RecordProviderLatency(provider string, duration time.Duration) {}
func (nopTelemetry) RecordFailover(from, to string)                                {}
func (nopTelemetry) SetProviderAvailable(provider string, available bool)          {}
func (nopTelemetry) SetProviderActive(provider string, active bool)                {}

// Events observes routing transitions for the event bus.
type Events interface {
	ProviderFailover(from, to, reason string)
	ProviderSwitched(from, to, reason string)
	ProviderHealthChanged(provider string, available bool)
}

type nopEvents struct{}

func (nopEvents) ProviderFailover(from, to, reason string)              {}
func (nopEvents) ProviderSwitched(from, to, reason string)              {}
func (nopEvents) ProviderHealthChanged(provider string, available bool) {}

// HealthSink receives the aggregate serving state after sweeps.
type HealthSink interface {
	SetProvidersServing(serving bool)
}

// Status describes one adapter for admin surfaces.
type Status struct {
	Name          string    `json:"name"`
	Available     bool      `json:"available"`
	Active        bool      `json:"active"`
	Model         string    `json:"model"`
	LastChecked   time.Time `json:"last_checked"`
	LastLatencyMS int64     `json:"last_latency_ms"`
	LastError     string    `json:"last_error,omitempty"`
}

// TestReport is one adapter's outcome from a probe sweep.
type TestReport struct {
	Provider  string `json:"provider"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Preview   string `json:"preview,omitempty"`
	Error     string `json:"error,omitempty"`
}

// entry pairs an adapter with the router's view of it.
type entry struct {
	adapter     Adapter
	available   bool
	lastChecked time.Time
	lastLatency time.Duration
	lastErr     error
}

// Router fans generation calls across the adapter set with automatic
// failover. The offline responder is registered unconditionally, so a
// conversation turn can always be answered.
type Router struct {
	logger    routerLogger
	telemetry Telemetry
	events    Events
	health    HealthSink

	offline   *entry
	preferred []*entry
	// entries lists preferred adapters in declared order with offline
	// last; it is the iteration order for status, sweeps, and matching.
	entries []*entry

	// callTimeout bounds a single adapter call; zero means unbounded.
	callTimeout time.Duration

	mu     sync.Mutex
	active *entry
}

// Option configures the router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l routerLogger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTelemetry sets the telemetry recorder.
func WithTelemetry(t Telemetry) Option {
	return func(r *Router) {
		if t != nil {
			r.telemetry = t
		}
	}
}

// WithEvents sets the routing event observer.
func WithEvents(e Events) Option {
	return func(r *Router) {
		if e != nil {
			r.events = e
		}
	}
}

// WithHealthSink sets the aggregate health receiver.
func WithHealthSink(sink HealthSink) Option {
	return func(r *Router) {
		r.health = sink
	}
}

// NewRouter builds the adapter set from configuration. The offline
// responder is always registered; preferred backends are constructed in
// declared order. Unknown backend kinds fail construction.
func NewRouter(cfg *config.ProvidersConfig, offline *OfflineAdapter, opts ...Option) (*Router, error) {
	if cfg == nil {
		return nil, errors.New("provider: config is required")
	}
	if offline == nil {
		return nil, errors.New("provider: offline adapter is required")
	}

	var preferred []Adapter
	seen := make(map[string]bool)
	for _, kind := range cfg.Preferred {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind == "" || kind == NameOffline || seen[kind] {
			continue
		}
		adapter, err := newBackendAdapter(kind, cfg)
		if err != nil {
			return nil, err
		}
		preferred = append(preferred, adapter)
		seen[kind] = true
	}

	r := newRouter(offline, preferred, opts...)
	r.callTimeout = cfg.Timeout
	return r, nil
}

func newRouter(offline Adapter, preferred []Adapter, opts ...Option) *Router {
	r := &Router{
		logger:    nopRouterLogger{},
		telemetry: nopTelemetry{},
		events:    nopEvents{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.offline = &entry{adapter: offline, available: true}
	for _, adapter := range preferred {
		r.preferred = append(r.preferred, &entry{adapter: adapter})
	}
	r.entries = append(append([]*entry{}, r.preferred...), r.offline)
	r.active = r.offline
	return r
}

// Initialize brings up every backend. Preferred adapters initialize in
// declared order and the first success becomes active; failures only
// remove an adapter from rotation. With no survivors the offline
// responder stays active.
func (r *Router) Initialize(ctx context.Context) {
	_ = r.offline.adapter.Initialize(ctx)

	r.mu.Lock()
	r.offline.available = true
	r.offline.lastChecked = time.Now().UTC()
	r.active = r.offline
	r.mu.Unlock()
	r.telemetry.SetProviderAvailable(r.offline.adapter.Name(), true)

	for _, e := range r.preferred {
		name := e.adapter.Name()
		err := e.adapter.Initialize(ctx)

		r.mu.Lock()
		e.lastChecked = time.Now().UTC()
		e.lastErr = err
		e.available = err == nil
		if err == nil && r.active == r.offline {
			r.active = e
		}
		r.mu.Unlock()

		r.telemetry.SetProviderAvailable(name, err == nil)
		if err != nil {
			r.logger.Warn("provider initialization failed", "provider", name, "error", err)
			continue
		}
		r.logger.Info("provider initialized", "provider", name)
	}

	r.syncActiveGauges()
	r.syncHealthSink()
	r.logger.Info("provider router ready", "active", r.ActiveName())
}

// ActiveName returns the name of the active adapter.
func (r *Router) ActiveName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active.adapter.Name()
}

// Generate answers through the active adapter, failing over to the
// remaining available backends and finally the offline responder. The
// adapter that produced the response becomes active. A canceled caller
// context aborts the sweep instead of falling back.
func (r *Router) Generate(ctx context.Context, req Request) (*Result, error) {
	order := r.generationOrder()

	var lastErr error
	for i, e := range order {
		name := e.adapter.Name()

		result, err := r.callAdapter(ctx, e, req)
		if err == nil {
			r.recordSuccess(e, result)
			if keeper, ok := e.adapter.(historyKeeper); ok {
				keeper.RecordExchange(req.Prompt, result.Text)
			}
			return result, nil
		}

		lastErr = &GenerationError{Provider: name, Err: err}
		r.telemetry.RecordProviderRequest(name, "error")

		// The caller gave up; trying anyone else would be wasted work.
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, lastErr
		}

		r.markFailed(e, err)
		if i+1 < len(order) {
			next := order[i+1].adapter.Name()
			r.telemetry.RecordFailover(name, next)
			r.events.ProviderFailover(name, next, err.Error())
			r.logger.Warn("provider failover", "from", name, "to", next, "error", err)
		}
	}

	if lastErr == nil {
		return nil, &UnavailableError{Provider: NameOffline}
	}
	return nil, lastErr
}

// callAdapter runs one generation under the per-call budget so a hung
// backend cannot starve the fallbacks behind it.
func (r *Router) callAdapter(ctx context.Context, e *entry, req Request) (*Result, error) {
	if r.callTimeout <= 0 {
		return e.adapter.Generate(ctx, req)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return e.adapter.Generate(callCtx, req)
}

// generationOrder snapshots the try order: active first, then untried
// available backends in preference order, offline always last.
func (r *Router) generationOrder() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := make([]*entry, 0, len(r.entries))
	if r.active.available {
		order = append(order, r.active)
	}
	for _, e := range r.preferred {
		if e == r.active || !e.available {
			continue
		}
		order = append(order, e)
	}
	if r.active != r.offline {
		order = append(order, r.offline)
	}
	return order
}

func (r *Router) recordSuccess(e *entry, result *Result) {
	name := e.adapter.Name()
	r.telemetry.RecordProviderRequest(name, "ok")
	r.telemetry.RecordProviderLatency(name, result.Latency)

	r.mu.Lock()
	e.lastLatency = result.Latency
	e.lastErr = nil
	previous := r.active
	r.active = e
	r.mu.Unlock()

	if previous != e {
		r.telemetry.SetProviderActive(previous.adapter.Name(), false)
		r.telemetry.SetProviderActive(name, true)
	}
}

func (r *Router) markFailed(e *entry, err error) {
	r.mu.Lock()
	e.lastErr = err
	// The offline responder only fails on an expired context; it never
	// leaves rotation.
	if e != r.offline {
		e.available = false
	}
	r.mu.Unlock()

	if e != r.offline {
		r.telemetry.SetProviderAvailable(e.adapter.Name(), false)
	}
}

// Switch activates the first adapter whose name carries the given
// case-insensitive prefix. Preferred backends match before offline.
// The switch succeeds only when the target reports available.
func (r *Router) Switch(name string) (string, error) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return "", errors.New("provider: switch target is required")
	}

	r.mu.Lock()
	var match *entry
	for _, e := range r.entries {
		if strings.HasPrefix(strings.ToLower(e.adapter.Name()), target) {
			match = e
			break
		}
	}
	if match == nil {
		r.mu.Unlock()
		return "", fmt.Errorf("provider: no adapter matches %q", name)
	}

	resolved := match.adapter.Name()
	if !match.available || !match.adapter.Available() {
		r.mu.Unlock()
		return "", &UnavailableError{Provider: resolved}
	}

	previous := r.active
	r.active = match
	r.mu.Unlock()

	if previous != match {
		r.telemetry.SetProviderActive(previous.adapter.Name(), false)
		r.telemetry.SetProviderActive(resolved, true)
		r.events.ProviderSwitched(previous.adapter.Name(), resolved, "manual")
		r.logger.Info("provider switched", "from", previous.adapter.Name(), "to", resolved)
	}
	return resolved, nil
}

// Status reports every adapter for admin surfaces, offline last.
func (r *Router) Status() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		status := Status{
			Name:          e.adapter.Name(),
			Available:     e.available && e.adapter.Available(),
			Active:        e == r.active,
			Model:         adapterModel(e.adapter),
			LastChecked:   e.lastChecked,
			LastLatencyMS: e.lastLatency.Milliseconds(),
		}
		if e.lastErr != nil {
			status.LastError = e.lastErr.Error()
		}
		out = append(out, status)
	}
	return out
}

// HealthSweep probes every adapter, refreshes availability, and
// re-activates the highest-preference backend when the active one went
// down. Returns the refreshed statuses.
func (r *Router) HealthSweep(ctx context.Context) []Status {
	type change struct {
		name      string
		available bool
	}
	var changes []change

	for _, e := range r.entries {
		err := e.adapter.HealthCheck(ctx)
		healthy := err == nil
		name := e.adapter.Name()

		r.mu.Lock()
		e.lastChecked = time.Now().UTC()
		e.lastErr = err
		was := e.available
		e.available = healthy
		r.mu.Unlock()

		r.telemetry.SetProviderAvailable(name, healthy)
		if was != healthy {
			changes = append(changes, change{name: name, available: healthy})
			r.logger.Info("provider availability changed", "provider", name, "available", healthy)
		}
	}

	r.mu.Lock()
	previous := r.active
	if !r.active.available {
		r.active = r.offline
		for _, e := range r.preferred {
			if e.available {
				r.active = e
				break
			}
		}
	}
	next := r.active
	r.mu.Unlock()

	if previous != next {
		r.telemetry.SetProviderActive(previous.adapter.Name(), false)
		r.telemetry.SetProviderActive(next.adapter.Name(), true)
		r.events.ProviderSwitched(previous.adapter.Name(), next.adapter.Name(), "health_sweep")
		r.logger.Info("provider re-activated", "from", previous.adapter.Name(), "to", next.adapter.Name())
	}

	for _, c := range changes {
		r.events.ProviderHealthChanged(c.name, c.available)
	}

	r.syncHealthSink()
	return r.Status()
}

// TestAll probes every adapter with a canned prompt. It never touches
// the active selection or adapter histories.
func (r *Router) TestAll(ctx context.Context) []TestReport {
	reports := make([]TestReport, 0, len(r.entries))
	for _, e := range r.entries {
		name := e.adapter.Name()
		if !e.adapter.Available() {
			reports = append(reports, TestReport{Provider: name, Error: "unavailable"})
			continue
		}

		start := time.Now()
		result, err := r.callAdapter(ctx, e, Request{Prompt: testPrompt})
		elapsed := time.Since(start)

		report := TestReport{Provider: name, LatencyMS: elapsed.Milliseconds()}
		if err != nil {
			report.Error = err.Error()
		} else {
			report.OK = true
			report.Preview = preview(result.Text, testPreviewLen)
		}
		reports = append(reports, report)
	}
	return reports
}

// ClearHistories drops every adapter's recent exchanges.
func (r *Router) ClearHistories() {
	for _, e := range r.entries {
		if keeper, ok := e.adapter.(historyKeeper); ok {
			keeper.ClearHistory()
		}
	}
}

func (r *Router) syncActiveGauges() {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()

	for _, e := range r.entries {
		r.telemetry.SetProviderActive(e.adapter.Name(), e == active)
	}
}

// syncHealthSink publishes the aggregate state: serving while any
// configured backend is available, or when running offline by choice.
func (r *Router) syncHealthSink() {
	if r.health == nil {
		return
	}

	r.mu.Lock()
	serving := len(r.preferred) == 0
	for _, e := range r.preferred {
		if e.available {
			serving = true
			break
		}
	}
	r.mu.Unlock()
	r.health.SetProvidersServing(serving)
}

func adapterModel(a Adapter) string {
	if reporter, ok := a.(modelReporter); ok {
		return reporter.Model()
	}
	return ""
}

// preview truncates text for status payloads.
func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
