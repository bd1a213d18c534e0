package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goclaw/anima/config"
)

// stubAdapter is a scriptable backend for router tests.
type stubAdapter struct {
	name  string
	model string

	mu        sync.Mutex
	available bool
	initErr   error
	healthErr error
	genText   string
	genErr    error
	genCalls  int
	prompts   []string
	exchanges [][2]string
	cleared   int
}

func newStubAdapter(name string) *stubAdapter {
	return &stubAdapter{
		name:    name,
		model:   name + "-model",
		genText: name + " reporting in",
	}
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Model() string { return s.model }

func (s *stubAdapter) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initErr != nil {
		return s.initErr
	}
	s.available = true
	return nil
}

func (s *stubAdapter) HealthCheck(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthErr
}

func (s *stubAdapter) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *stubAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genCalls++
	s.prompts = append(s.prompts, req.Prompt)
	if s.genErr != nil {
		return nil, s.genErr
	}
	return &Result{
		Text:     s.genText,
		Provider: s.name,
		Model:    s.model,
		Latency:  5 * time.Millisecond,
	}, nil
}

func (s *stubAdapter) RecordExchange(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, [2]string{user, assistant})
}

func (s *stubAdapter) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *stubAdapter) setGenErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genErr = err
}

func (s *stubAdapter) setHealthErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthErr = err
}

func (s *stubAdapter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genCalls
}

func (s *stubAdapter) recorded() [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]string, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// routerProbe records telemetry, events, and health sink calls.
type routerProbe struct {
	mu        sync.Mutex
	requests  []string
	failovers []string
	switches  []string
	health    []string
	servings  []bool
}

func (p *routerProbe) RecordProviderRequest(provider, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, provider+"/"+status)
}

func (p *routerProbe) RecordProviderLatency(provider string, duration time.Duration) {}

func (p *routerProbe) RecordFailover(from, to string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failovers = append(p.failovers, from+">"+to)
}

func (p *routerProbe) SetProviderAvailable(provider string, available bool) {}
func (p *routerProbe) SetProviderActive(provider string, active bool)      {}

func (p *routerProbe) ProviderFailover(from, to, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failovers = append(p.failovers, "event:"+from+">"+to)
}

func (p *routerProbe) ProviderSwitched(from, to, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switches = append(p.switches, fmt.Sprintf("%s>%s/%s", from, to, reason))
}

func (p *routerProbe) ProviderHealthChanged(provider string, available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health = append(p.health, fmt.Sprintf("%s=%t", provider, available))
}

func (p *routerProbe) SetProvidersServing(serving bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.servings = append(p.servings, serving)
}

func (p *routerProbe) lastServing(t *testing.T) bool {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.servings) == 0 {
		t.Fatal("health sink never called")
	}
	return p.servings[len(p.servings)-1]
}

func statusByName(t *testing.T, statuses []Status, name string) Status {
	t.Helper()
	for _, s := range statuses {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no status for %q in %+v", name, statuses)
	return Status{}
}

func TestNewRouter_FromConfig(t *testing.T) {
	cfg := &config.ProvidersConfig{
		Preferred:    []string{"hosted", "daemon", "ondevice", "offline", "hosted", ""},
		HistoryLimit: 10,
	}

	r, err := NewRouter(cfg, NewOfflineAdapter("Anima", nil))
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	statuses := r.Status()
	var names []string
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	want := []string{"hosted", "daemon", "ondevice", "offline"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("adapter order = %v, want %v (duplicates and offline entries dropped)", names, want)
	}
}

func TestNewRouter_UnknownKind(t *testing.T) {
	cfg := &config.ProvidersConfig{Preferred: []string{"cloud"}}

	if _, err := NewRouter(cfg, NewOfflineAdapter("Anima", nil)); err == nil {
		t.Fatal("NewRouter accepted an unknown backend kind")
	}
}

func TestNewRouter_Validation(t *testing.T) {
	if _, err := NewRouter(nil, NewOfflineAdapter("Anima", nil)); err == nil {
		t.Error("NewRouter accepted a nil config")
	}
	if _, err := NewRouter(&config.ProvidersConfig{}, nil); err == nil {
		t.Error("NewRouter accepted a nil offline adapter")
	}
}

func TestRouter_InitializeFirstSuccessActive(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})

	r.Initialize(context.Background())

	if got := r.ActiveName(); got != "hosted" {
		t.Errorf("active = %q, want hosted", got)
	}
	statuses := r.Status()
	if !statusByName(t, statuses, "hosted").Active {
		t.Error("hosted not flagged active in status")
	}
	if !statusByName(t, statuses, "daemon").Available {
		t.Error("daemon should be available after initialization")
	}
}

func TestRouter_InitializeFailureFallsThrough(t *testing.T) {
	a := newStubAdapter("hosted")
	a.initErr = errors.New("bad key")
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})

	r.Initialize(context.Background())

	if got := r.ActiveName(); got != "daemon" {
		t.Errorf("active = %q, want daemon", got)
	}
	hosted := statusByName(t, r.Status(), "hosted")
	if hosted.Available {
		t.Error("hosted flagged available despite failed initialization")
	}
	if !strings.Contains(hosted.LastError, "bad key") {
		t.Errorf("hosted last error = %q, want the init failure", hosted.LastError)
	}
}

func TestRouter_InitializeAllFailKeepsOffline(t *testing.T) {
	a := newStubAdapter("hosted")
	a.initErr = errors.New("down")
	b := newStubAdapter("daemon")
	b.initErr = errors.New("down")
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b}, WithHealthSink(probe))

	r.Initialize(context.Background())

	if got := r.ActiveName(); got != NameOffline {
		t.Errorf("active = %q, want offline", got)
	}
	if probe.lastServing(t) {
		t.Error("health sink reports serving with every configured backend down")
	}
}

func TestRouter_GenerateUsesActive(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	result, err := r.Generate(context.Background(), Request{Prompt: "hi there"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != "hosted" {
		t.Errorf("served by %q, want hosted", result.Provider)
	}
	if got := b.calls(); got != 0 {
		t.Errorf("daemon called %d times, want 0", got)
	}

	recorded := a.recorded()
	if len(recorded) != 1 || recorded[0] != [2]string{"hi there", "hosted reporting in"} {
		t.Errorf("history recorded = %v, want the served exchange", recorded)
	}

	if got := statusByName(t, r.Status(), "hosted").LastLatencyMS; got != 5 {
		t.Errorf("last latency = %dms, want 5", got)
	}
}

func TestRouter_GenerateFailover(t *testing.T) {
	a := newStubAdapter("hosted")
	a.genErr = errors.New("api exploded")
	b := newStubAdapter("daemon")
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b},
		WithTelemetry(probe), WithEvents(probe))
	r.Initialize(context.Background())

	result, err := r.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != "daemon" {
		t.Errorf("served by %q, want daemon", result.Provider)
	}
	if got := r.ActiveName(); got != "daemon" {
		t.Errorf("active = %q, want daemon after failover", got)
	}

	hosted := statusByName(t, r.Status(), "hosted")
	if hosted.Available {
		t.Error("hosted still available after a failed generation")
	}
	if !strings.Contains(hosted.LastError, "api exploded") {
		t.Errorf("hosted last error = %q", hosted.LastError)
	}

	probe.mu.Lock()
	failovers := strings.Join(probe.failovers, " ")
	requests := strings.Join(probe.requests, " ")
	probe.mu.Unlock()
	if !strings.Contains(failovers, "hosted>daemon") || !strings.Contains(failovers, "event:hosted>daemon") {
		t.Errorf("failovers = %q, want metric and event hosted>daemon", failovers)
	}
	if !strings.Contains(requests, "hosted/error") || !strings.Contains(requests, "daemon/ok") {
		t.Errorf("request metrics = %q, want hosted/error and daemon/ok", requests)
	}

	if got := a.recorded(); len(got) != 0 {
		t.Errorf("failed adapter recorded history %v", got)
	}
	if got := b.recorded(); len(got) != 1 {
		t.Errorf("serving adapter recorded %d exchanges, want 1", len(got))
	}
}

func TestRouter_GenerateFallsToOffline(t *testing.T) {
	a := newStubAdapter("hosted")
	a.genErr = errors.New("down")
	b := newStubAdapter("daemon")
	b.genErr = errors.New("also down")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	result, err := r.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != NameOffline {
		t.Errorf("served by %q, want offline", result.Provider)
	}
	if result.Text == "" {
		t.Error("offline returned empty text")
	}
	if got := r.ActiveName(); got != NameOffline {
		t.Errorf("active = %q, want offline", got)
	}
}

func TestRouter_GenerateCanceledAborts(t *testing.T) {
	a := newStubAdapter("hosted")
	a.genErr = fmt.Errorf("call: %w", context.Canceled)
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	_, err := r.Generate(context.Background(), Request{Prompt: "hello"})
	if err == nil {
		t.Fatal("Generate succeeded, want abort")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %T, want *GenerationError", err)
	}
	if genErr.Provider != "hosted" {
		t.Errorf("failing provider = %q, want hosted", genErr.Provider)
	}

	if got := b.calls(); got != 0 {
		t.Errorf("fallback tried %d times after cancellation, want 0", got)
	}
	// Cancellation is the caller's doing; the adapter stays in rotation.
	if !statusByName(t, r.Status(), "hosted").Available {
		t.Error("hosted marked unavailable by a caller cancellation")
	}
}

func TestRouter_GenerateDeadlineFailsOver(t *testing.T) {
	a := newStubAdapter("hosted")
	a.genErr = fmt.Errorf("call: %w", context.DeadlineExceeded)
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	result, err := r.Generate(context.Background(), Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != "daemon" {
		t.Errorf("served by %q, want daemon after deadline failover", result.Provider)
	}
	if statusByName(t, r.Status(), "hosted").Available {
		t.Error("hosted still available after timing out")
	}
}

// blockingAdapter hangs until its context expires.
type blockingAdapter struct {
	stubAdapter
}

func (b *blockingAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	b.mu.Lock()
	b.genCalls++
	b.mu.Unlock()
	<-ctx.Done()
	return nil, fmt.Errorf("call: %w", ctx.Err())
}

func TestRouter_CallTimeoutBoundsOneAdapter(t *testing.T) {
	a := &blockingAdapter{stubAdapter: stubAdapter{name: "hosted", model: "hosted-model"}}
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.callTimeout = 25 * time.Millisecond
	r.Initialize(context.Background())

	done := make(chan struct{})
	var result *Result
	var err error
	go func() {
		defer close(done)
		result, err = r.Generate(context.Background(), Request{Prompt: "hello"})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Generate never escaped the hung adapter")
	}
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Provider != "daemon" {
		t.Errorf("served by %q, want daemon after the hung adapter timed out", result.Provider)
	}
	if statusByName(t, r.Status(), "hosted").Available {
		t.Error("hung adapter still available")
	}
}

func TestRouter_GenerateSurfacesLastErrorWhenOfflineFails(t *testing.T) {
	offline := newStubAdapter(NameOffline)
	offline.genErr = fmt.Errorf("responder: %w", context.DeadlineExceeded)
	r := newRouter(offline, nil)
	r.Initialize(context.Background())

	_, err := r.Generate(context.Background(), Request{Prompt: "hello"})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
	if genErr.Provider != NameOffline {
		t.Errorf("failing provider = %q, want offline", genErr.Provider)
	}
	// The offline responder never leaves rotation.
	if !statusByName(t, r.Status(), NameOffline).Available {
		t.Error("offline marked unavailable")
	}
}

func TestRouter_Switch(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b}, WithEvents(probe))
	r.Initialize(context.Background())

	resolved, err := r.Switch("DAE")
	if err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if resolved != "daemon" {
		t.Errorf("resolved = %q, want daemon", resolved)
	}
	if got := r.ActiveName(); got != "daemon" {
		t.Errorf("active = %q, want daemon", got)
	}

	probe.mu.Lock()
	switches := strings.Join(probe.switches, " ")
	probe.mu.Unlock()
	if !strings.Contains(switches, "hosted>daemon/manual") {
		t.Errorf("switch events = %q, want hosted>daemon/manual", switches)
	}
}

func TestRouter_SwitchPrefersConfiguredBackends(t *testing.T) {
	a := newStubAdapter("ondevice")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a})
	r.Initialize(context.Background())

	// Both "ondevice" and "offline" start with "o"; configured
	// backends match first.
	resolved, err := r.Switch("o")
	if err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if resolved != "ondevice" {
		t.Errorf("resolved = %q, want ondevice", resolved)
	}
}

func TestRouter_SwitchErrors(t *testing.T) {
	a := newStubAdapter("hosted")
	a.initErr = errors.New("down")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a})
	r.Initialize(context.Background())

	if _, err := r.Switch(""); err == nil {
		t.Error("Switch accepted an empty target")
	}
	if _, err := r.Switch("nonesuch"); err == nil {
		t.Error("Switch matched a nonexistent adapter")
	}

	_, err := r.Switch("hosted")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Switch to down adapter = %v, want *UnavailableError", err)
	}
	if got := r.ActiveName(); got != NameOffline {
		t.Errorf("active changed to %q on a failed switch", got)
	}
}

func TestRouter_HealthSweepReactivates(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b},
		WithEvents(probe), WithHealthSink(probe))
	r.Initialize(context.Background())

	a.setHealthErr(errors.New("connection refused"))
	statuses := r.HealthSweep(context.Background())

	if statusByName(t, statuses, "hosted").Available {
		t.Error("hosted available after failing its health check")
	}
	if got := r.ActiveName(); got != "daemon" {
		t.Errorf("active = %q, want daemon after sweep", got)
	}
	if !probe.lastServing(t) {
		t.Error("health sink reports not serving while daemon is up")
	}

	probe.mu.Lock()
	health := strings.Join(probe.health, " ")
	switches := strings.Join(probe.switches, " ")
	probe.mu.Unlock()
	if !strings.Contains(health, "hosted=false") {
		t.Errorf("health events = %q, want hosted=false", health)
	}
	if !strings.Contains(switches, "hosted>daemon/health_sweep") {
		t.Errorf("switch events = %q, want hosted>daemon/health_sweep", switches)
	}

	// Recovery flips availability back but does not steal the active
	// slot; promotion stays a manual decision.
	a.setHealthErr(nil)
	statuses = r.HealthSweep(context.Background())
	if !statusByName(t, statuses, "hosted").Available {
		t.Error("hosted unavailable after recovering")
	}
	if got := r.ActiveName(); got != "daemon" {
		t.Errorf("active = %q, want daemon to keep serving", got)
	}
}

func TestRouter_HealthSweepAllDown(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b}, WithHealthSink(probe))
	r.Initialize(context.Background())

	a.setHealthErr(errors.New("down"))
	b.setHealthErr(errors.New("down"))
	r.HealthSweep(context.Background())

	if got := r.ActiveName(); got != NameOffline {
		t.Errorf("active = %q, want offline with every backend down", got)
	}
	if probe.lastServing(t) {
		t.Error("health sink reports serving with every backend down")
	}
}

func TestRouter_HealthSweepPureOffline(t *testing.T) {
	probe := &routerProbe{}
	r := newRouter(NewOfflineAdapter("Anima", nil), nil, WithHealthSink(probe))
	r.Initialize(context.Background())

	r.HealthSweep(context.Background())
	if !probe.lastServing(t) {
		t.Error("offline-only deployment should report serving")
	}
}

func TestRouter_TestAll(t *testing.T) {
	a := newStubAdapter("hosted")
	a.genText = strings.Repeat("x", 150)
	b := newStubAdapter("daemon")
	b.initErr = errors.New("never came up")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	reports := r.TestAll(context.Background())
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}

	byProvider := make(map[string]TestReport, len(reports))
	for _, report := range reports {
		byProvider[report.Provider] = report
	}

	hosted := byProvider["hosted"]
	if !hosted.OK {
		t.Errorf("hosted report not ok: %+v", hosted)
	}
	if want := strings.Repeat("x", 100) + "..."; hosted.Preview != want {
		t.Errorf("preview = %q (len %d), want 100 chars plus ellipsis", hosted.Preview, len(hosted.Preview))
	}

	daemon := byProvider["daemon"]
	if daemon.OK || daemon.Error != "unavailable" {
		t.Errorf("daemon report = %+v, want unavailable", daemon)
	}
	if got := b.calls(); got != 0 {
		t.Errorf("unavailable adapter probed %d times", got)
	}

	offline := byProvider[NameOffline]
	if !offline.OK || offline.Preview == "" {
		t.Errorf("offline report = %+v, want ok with preview", offline)
	}

	// Probes never pollute conversation history or steal the active slot.
	if got := a.recorded(); len(got) != 0 {
		t.Errorf("test sweep recorded history %v", got)
	}
	if got := a.prompts[0]; got != testPrompt {
		t.Errorf("probe prompt = %q, want %q", got, testPrompt)
	}
	if got := r.ActiveName(); got != "hosted" {
		t.Errorf("active = %q changed by test sweep", got)
	}
}

func TestRouter_ClearHistories(t *testing.T) {
	a := newStubAdapter("hosted")
	b := newStubAdapter("daemon")
	r := newRouter(NewOfflineAdapter("Anima", nil), []Adapter{a, b})
	r.Initialize(context.Background())

	r.ClearHistories()
	if a.cleared != 1 || b.cleared != 1 {
		t.Errorf("cleared counts = %d/%d, want 1/1", a.cleared, b.cleared)
	}
}
