// Package agent runs the conversational turn pipeline: emotional
// processing, memory recall, prompt assembly, routed generation, and
// the write-back of the finished exchange.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/goclaw/anima/config"
	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
	"github.com/goclaw/anima/pkg/eventbus"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/personality"
	"github.com/goclaw/anima/pkg/provider"
)

const tracerName = "anima.agent"

// apologyResponse is the canned reply committed when every backend,
// including offline, failed to produce a response.
const apologyResponse = "I'm sorry, I'm having trouble gathering my thoughts right now. Could you say that again in a moment?"

// Memory importance scoring for conversation turns.
const (
	baseTurnImportance    = 0.5
	triggeredTurnBonus    = 0.2
	maxTurnImportance     = 0.9
	responseImportance    = 0.5
	reflectionImportance  = 0.8
	defaultRecalledMemory = 5
)

// ErrEmptyText is returned when a turn carries no usable text.
var ErrEmptyText = errors.New("agent: turn text cannot be empty")

// TurnRequest is one inbound utterance.
type TurnRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// TurnResult is the outcome of a processed turn.
type TurnResult struct {
	Response      string           `json:"response"`
	Provider      string           `json:"provider"`
	Emotions      emotion.Snapshot `json:"emotions"`
	MemoryUpdated bool             `json:"memory_updated"`
	SessionID     string           `json:"session_id"`
	Timestamp     time.Time        `json:"timestamp"`
}

// generator is the slice of the provider router the pipeline needs.
type generator interface {
	Generate(ctx context.Context, req provider.Request) (*provider.Result, error)
	ClearHistories()
}

// agentLogger is the minimal logger interface used by Agent.
type agentLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopAgentLogger struct{}

func (nopAgentLogger) Debug(msg string, args ...any) {}
func (nopAgentLogger) Info(msg string, args ...any)  {}
func (nopAgentLogger) Warn(msg string, args ...any)  {}
func (nopAgentLogger) Error(msg string, args ...any) {}

// Telemetry records turn pipeline activity.
type Telemetry interface {
	RecordTurn(status string)
	RecordTurnDuration(provider string, duration time.Duration)
	RecordReflection()
}

type nopTelemetry struct{}

func (nopTelemetry) RecordTurn(status string)                                {}
func (nopTelemetry) RecordTurnDuration(provider string, d time.Duration)     {}
func (nopTelemetry) RecordReflection()                                       {}

// Deps are the collaborators the agent is constructed with. Nothing is
// global: every dependency is built in main and handed in.
type Deps struct {
	Router      generator
	Window      *conversation.Window
	Memory      *memory.Store
	Emotions    *emotion.Engine
	Personality *personality.State
	Publisher   *eventbus.Publisher
	Logger      agentLogger
	Telemetry   Telemetry
}

// Agent owns one conversation pipeline. Turns are strictly sequential:
// a single mutex serializes ProcessTurn so window and memory writes
// land in arrival order.
type Agent struct {
	router      generator
	window      *conversation.Window
	store       *memory.Store
	emotions    *emotion.Engine
	persona     *personality.State
	publisher   *eventbus.Publisher
	logger      agentLogger
	telemetry   Telemetry
	tracer      trace.Tracer
	prompts     *PromptBuilder
	reflector   *Reflector
	recallLimit int

	turnMu       sync.Mutex
	interactions int
	started      time.Time
}

// New creates an agent over the given collaborators.
func New(cfg *config.Config, deps Deps) (*Agent, error) {
	if cfg == nil {
		return nil, errors.New("agent: config is required")
	}
	if deps.Router == nil {
		return nil, errors.New("agent: router is required")
	}
	if deps.Window == nil || deps.Memory == nil || deps.Emotions == nil || deps.Personality == nil {
		return nil, errors.New("agent: window, memory, emotions, and personality are required")
	}
	if deps.Logger == nil {
		deps.Logger = nopAgentLogger{}
	}
	if deps.Telemetry == nil {
		deps.Telemetry = nopTelemetry{}
	}

	recall := cfg.Memory.RecallLimit
	if recall <= 0 {
		recall = defaultRecalledMemory
	}

	a := &Agent{
		router:      deps.Router,
		window:      deps.Window,
		store:       deps.Memory,
		emotions:    deps.Emotions,
		persona:     deps.Personality,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
		telemetry:   deps.Telemetry,
		tracer:      otel.Tracer(tracerName),
		prompts:     NewPromptBuilder(deps.Personality, deps.Emotions),
		recallLimit: recall,
		started:     time.Now().UTC(),
	}
	if cfg.Reflection.Enabled {
		a.reflector = NewReflector(cfg.Reflection.EveryN, cfg.Reflection.MaxIdle)
	}
	return a, nil
}

// ProcessTurn runs one utterance through the full pipeline and returns
// the agent's reply. A canceled context aborts before any window or
// memory mutation; an exhausted provider chain commits a canned apology
// as the completed turn.
func (a *Agent) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	ctx, span := a.tracer.Start(ctx, "agent.process_turn", trace.WithAttributes(
		attribute.String("session.id", req.SessionID),
	))
	defer span.End()

	start := time.Now()

	// Emotional read of the user's words, with idle decay folded in.
	processed := a.emotions.Process(text)
	if processed.ToneChanged() {
		a.publishToneChanged(ctx, processed)
	}

	memories := a.recallMemories(ctx, text)
	genReq := a.prompts.Build(PromptInput{
		UserText: text,
		Memories: memories,
		Recent:   a.window.Recent(promptWindowTurns),
	})

	result, err := a.generate(ctx, genReq)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// The caller gave up; discard the turn without mutating state.
			a.telemetry.RecordTurn("canceled")
			span.RecordError(err)
			return nil, err
		}

		// Even the offline responder failed. Commit an apology so the
		// conversation survives the turn.
		a.logger.Error("turn exhausted all providers", "session_id", req.SessionID, "error", err)
		a.telemetry.RecordTurn("failed")
		span.RecordError(err)
		a.commitExchange(text, apologyResponse)
		a.publishTurnFailed(ctx, req.SessionID, err)
		return &TurnResult{
			Response:  apologyResponse,
			Emotions:  a.emotions.Snapshot(),
			SessionID: req.SessionID,
			Timestamp: time.Now().UTC(),
		}, nil
	}

	a.commitExchange(text, result.Text)
	memoryUpdated := a.rememberTurn(ctx, req, text, result.Text, processed)

	// The agent's own words feed back into its emotional state.
	a.emotions.Process(result.Text)

	a.interactions++
	a.maybeReflect(ctx)

	a.telemetry.RecordTurn("ok")
	a.telemetry.RecordTurnDuration(result.Provider, time.Since(start))
	span.SetAttributes(
		attribute.String("provider.name", result.Provider),
		attribute.Bool("memory.updated", memoryUpdated),
	)

	res := &TurnResult{
		Response:      result.Text,
		Provider:      result.Provider,
		Emotions:      a.emotions.Snapshot(),
		MemoryUpdated: memoryUpdated,
		SessionID:     req.SessionID,
		Timestamp:     time.Now().UTC(),
	}
	a.publishTurnCompleted(ctx, res, time.Since(start))
	return res, nil
}

func (a *Agent) generate(ctx context.Context, req provider.Request) (*provider.Result, error) {
	ctx, span := a.tracer.Start(ctx, "agent.generate")
	defer span.End()
	return a.router.Generate(ctx, req)
}

func (a *Agent) recallMemories(ctx context.Context, text string) []*memory.Entry {
	ctx, span := a.tracer.Start(ctx, "agent.recall")
	defer span.End()

	memories, err := a.store.Recall(ctx, text, a.recallLimit)
	if err != nil {
		a.logger.Warn("memory recall failed", "error", err)
		return nil
	}
	span.SetAttributes(attribute.Int("memory.recalled", len(memories)))
	return memories
}

// commitExchange appends the user turn and the reply as one unit.
func (a *Agent) commitExchange(userText, responseText string) {
	a.window.AppendExchange(
		conversation.Turn{Role: conversation.RoleUser, Content: userText},
		conversation.Turn{Role: conversation.RoleAssistant, Content: responseText},
	)
}

// rememberTurn stores both halves of the exchange. The user's words
// score higher when they moved the emotional state.
func (a *Agent) rememberTurn(ctx context.Context, req TurnRequest, userText, responseText string, processed emotion.ProcessResult) bool {
	importance := baseTurnImportance
	if processed.Triggered() {
		importance += triggeredTurnBonus
	}
	if importance > maxTurnImportance {
		importance = maxTurnImportance
	}

	var tags []string
	if req.SessionID != "" {
		tags = append(tags, "session:"+req.SessionID)
	}

	updated := false
	if _, err := a.store.Remember(ctx, "User: "+userText, memory.TypeConversation, importance, tags); err != nil {
		a.logger.Warn("failed to remember user turn", "error", err)
	} else {
		updated = true
	}
	content := fmt.Sprintf("%s: %s", a.persona.Name(), responseText)
	if _, err := a.store.Remember(ctx, content, memory.TypeConversation, responseImportance, tags); err != nil {
		a.logger.Warn("failed to remember response", "error", err)
	} else {
		updated = true
	}
	return updated
}

// maybeReflect runs the reflection engine on cadence and stores the
// outcome as a high-importance reflection memory.
func (a *Agent) maybeReflect(ctx context.Context) {
	if a.reflector == nil || !a.reflector.Due(a.interactions, time.Now()) {
		return
	}

	ctx, span := a.tracer.Start(ctx, "agent.reflect")
	defer span.End()

	reflection := a.reflector.Reflect(a.window.Snapshot(), a.emotions.Snapshot())
	if _, err := a.store.Remember(ctx, reflection.Content, memory.TypeReflection, reflectionImportance, []string{"reflection", reflection.Topic}); err != nil {
		a.logger.Warn("failed to store reflection", "error", err)
		return
	}
	a.telemetry.RecordReflection()
	a.logger.Info("reflection stored", "topic", reflection.Topic, "prompt", reflection.Prompt)
}

// ClearConversation empties the window and every adapter history. The
// memory store is untouched; long-term continuity is its job.
func (a *Agent) ClearConversation() {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()
	a.window.Clear()
	a.router.ClearHistories()
	a.logger.Info("conversation cleared")
}

// Interactions returns how many turns completed since startup.
func (a *Agent) Interactions() int {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()
	return a.interactions
}

// Uptime reports how long the agent has been running.
func (a *Agent) Uptime() time.Duration {
	return time.Since(a.started)
}

func (a *Agent) publishTurnCompleted(ctx context.Context, res *TurnResult, elapsed time.Duration) {
	if a.publisher == nil {
		return
	}
	_, err := a.publisher.Publish(ctx, eventbus.Event{
		Domain:    eventbus.DomainTurn,
		EventType: eventbus.EventTurnCompleted,
		SessionID: res.SessionID,
		Schema:    eventbus.SchemaVersionV1,
		Payload: eventbus.TurnCompletedPayload{
			SessionID:     res.SessionID,
			Provider:      res.Provider,
			LatencyMS:     elapsed.Milliseconds(),
			MemoryUpdated: res.MemoryUpdated,
			Tone:          string(res.Emotions.Tone),
		},
	})
	if err != nil {
		a.logger.Warn("failed to publish turn event", "error", err)
	}
}

func (a *Agent) publishTurnFailed(ctx context.Context, sessionID string, cause error) {
	if a.publisher == nil {
		return
	}
	_, err := a.publisher.Publish(ctx, eventbus.Event{
		Domain:    eventbus.DomainTurn,
		EventType: eventbus.EventTurnFailed,
		SessionID: sessionID,
		Schema:    eventbus.SchemaVersionV1,
		Payload: eventbus.TurnFailedPayload{
			SessionID: sessionID,
			Reason:    cause.Error(),
		},
	})
	if err != nil {
		a.logger.Warn("failed to publish turn event", "error", err)
	}
}

func (a *Agent) publishToneChanged(ctx context.Context, processed emotion.ProcessResult) {
	if a.publisher == nil {
		return
	}
	_, err := a.publisher.Publish(ctx, eventbus.Event{
		Domain:      eventbus.DomainEmotion,
		EventType:   eventbus.EventToneChanged,
		Schema:      eventbus.SchemaVersionV1,
		OrderingKey: "emotions",
		Payload: eventbus.ToneChangedPayload{
			From: string(processed.PreviousTone),
			To:   string(processed.Tone),
		},
	})
	if err != nil {
		a.logger.Warn("failed to publish tone event", "error", err)
	}
}
