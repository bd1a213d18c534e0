// Package events fans agent events out to in-process subscribers, the
// WebSocket layer among them.
package events

import (
	"sync"
	"time"
)

// Event is the canonical event payload broadcast to subscribers.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster broadcasts events to in-process subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a broadcaster instance.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe subscribes to events with a buffered channel.
func (b *Broadcaster) Subscribe(buffer int) chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Broadcast broadcasts a generic event to all subscribers.
func (b *Broadcaster) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]chan Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Drop on overflow to keep broadcasters non-blocking.
		}
	}
}

// BroadcastTurnCompleted emits a finished conversation turn.
func (b *Broadcaster) BroadcastTurnCompleted(sessionID, provider, tone string, latency time.Duration, memoryUpdated bool) {
	b.Broadcast(Event{
		Type:      "turn.completed",
		SessionID: sessionID,
		Payload: map[string]any{
			"session_id":     sessionID,
			"provider":       provider,
			"tone":           tone,
			"latency_ms":     latency.Milliseconds(),
			"memory_updated": memoryUpdated,
		},
	})
}

// BroadcastTurnFailed emits a turn that exhausted all providers.
func (b *Broadcaster) BroadcastTurnFailed(sessionID, reason string) {
	b.Broadcast(Event{
		Type:      "turn.failed",
		SessionID: sessionID,
		Payload: map[string]any{
			"session_id": sessionID,
			"reason":     reason,
		},
	})
}

// BroadcastToneChanged emits an emotional tone transition. Tone events
// carry no session and reach every subscriber.
func (b *Broadcaster) BroadcastToneChanged(from, to string) {
	b.Broadcast(Event{
		Type: "emotion.tone_changed",
		Payload: map[string]any{
			"from": from,
			"to":   to,
		},
	})
}

// BroadcastProviderSwitched emits an active-provider change.
func (b *Broadcaster) BroadcastProviderSwitched(from, to, reason string) {
	b.Broadcast(Event{
		Type: "provider.switched",
		Payload: map[string]any{
			"from":   from,
			"to":     to,
			"reason": reason,
		},
	})
}

// BroadcastProviderFailover emits a failover hop.
func (b *Broadcaster) BroadcastProviderFailover(from, to, reason string) {
	b.Broadcast(Event{
		Type: "provider.failover",
		Payload: map[string]any{
			"from":   from,
			"to":     to,
			"reason": reason,
		},
	})
}

// BroadcastProviderHealth emits an availability flip.
func (b *Broadcaster) BroadcastProviderHealth(provider string, available bool) {
	b.Broadcast(Event{
		Type: "provider.health_changed",
		Payload: map[string]any{
			"provider":  provider,
			"available": available,
		},
	})
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}
