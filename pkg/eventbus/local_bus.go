package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Message is a delivered event-bus message.
type Message struct {
	Subject   string
	Payload   []byte
	Timestamp time.Time
}

// Subscription represents a stream subscription.
type Subscription struct {
	pattern string
	ch      chan Message
	bus     *LocalBus
	once    sync.Once
}

// C returns read-only message channel.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Close removes the subscription and closes its channel.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.bus.unsubscribe(s.pattern, s.ch)
		close(s.ch)
	})
	return nil
}

// LocalBus is an in-process pub/sub transport. It is the default transport
// for a single-node agent and is also used by tests.
type LocalBus struct {
	mu          sync.RWMutex
	subscribers map[string][]*Subscription
	closed      bool
}

// NewLocalBus creates an in-process event bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{
		subscribers: make(map[string][]*Subscription),
	}
}

// Publish publishes to all matching subscriptions.
func (b *LocalBus) Publish(ctx context.Context, subject string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if subject == "" {
		return fmt.Errorf("eventbus: subject cannot be empty")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("eventbus: bus is closed")
	}
	targets := make([]*Subscription, 0)
	for pattern, subs := range b.subscribers {
		if !subjectMatches(pattern, subject) {
			continue
		}
		targets = append(targets, subs...)
	}
	b.mu.RUnlock()

	msg := Message{
		Subject:   subject,
		Payload:   append([]byte(nil), payload...),
		Timestamp: time.Now().UTC(),
	}
	for _, sub := range targets {
		select {
		case sub.ch <- msg:
		default:
			// non-blocking drop for slow subscribers
		}
	}
	return nil
}

// Subscribe subscribes by subject pattern.
func (b *LocalBus) Subscribe(pattern string, buffer int) (*Subscription, error) {
	if pattern == "" {
		return nil, fmt.Errorf("eventbus: subscription pattern cannot be empty")
	}
	if buffer <= 0 {
		buffer = 32
	}

	sub := &Subscription{
		pattern: pattern,
		ch:      make(chan Message, buffer),
		bus:     b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("eventbus: bus is closed")
	}
	b.subscribers[pattern] = append(b.subscribers[pattern], sub)

	return sub, nil
}

// Close closes the bus and all remaining subscriptions.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	remaining := make([]*Subscription, 0)
	for _, subs := range b.subscribers {
		remaining = append(remaining, subs...)
	}
	b.subscribers = make(map[string][]*Subscription)
	b.mu.Unlock()

	for _, sub := range remaining {
		sub.once.Do(func() {
			close(sub.ch)
		})
	}
	return nil
}

func (b *LocalBus) unsubscribe(pattern string, target chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[pattern]
	filtered := subs[:0]
	for _, sub := range subs {
		if sub.ch == target {
			continue
		}
		filtered = append(filtered, sub)
	}
	if len(filtered) == 0 {
		delete(b.subscribers, pattern)
		return
	}
	b.subscribers[pattern] = filtered
}

// subjectMatches supports exact, "*" segment, and ">" suffix wildcards.
func subjectMatches(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	if strings.HasSuffix(pattern, ".>") {
		prefix := strings.TrimSuffix(pattern, ".>")
		if prefix == "" {
			return true
		}
		return subject == prefix || strings.HasPrefix(subject, prefix+".")
	}

	patternParts := strings.Split(pattern, ".")
	subjectParts := strings.Split(subject, ".")
	if len(patternParts) != len(subjectParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] == "*" {
			continue
		}
		if patternParts[i] != subjectParts[i] {
			return false
		}
	}
	return true
}
