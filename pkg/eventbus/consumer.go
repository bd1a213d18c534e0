package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"
)

// defaultDedupeWindow bounds how many event IDs the consumer remembers.
// A long-running agent would otherwise grow the seen set forever.
const defaultDedupeWindow = 4096

// EnvelopeConsumer validates and routes envelopes and suppresses duplicate
// deliveries within a bounded window.
type EnvelopeConsumer struct {
	router *SchemaRouter
	window int

	mu         sync.Mutex
	seenEvents map[string]struct{}
	seenOrder  []string
}

// NewEnvelopeConsumer creates a schema-aware consumer.
func NewEnvelopeConsumer(router *SchemaRouter) *EnvelopeConsumer {
	return &EnvelopeConsumer{
		router:     router,
		window:     defaultDedupeWindow,
		seenEvents: make(map[string]struct{}),
	}
}

// DecodeAndValidate decodes raw event bytes, validates schema routing, and
// suppresses duplicates.
func (c *EnvelopeConsumer) DecodeAndValidate(raw []byte) (Envelope, any, bool, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, nil, false, fmt.Errorf("eventbus: invalid envelope json: %w", err)
	}

	if c.router != nil {
		if err := c.router.ValidateIncoming(envelope); err != nil {
			return Envelope{}, nil, false, err
		}
	}

	if c.markSeen(envelope.EventID) {
		return envelope, nil, true, nil
	}

	var decoded any = envelope
	var err error
	if c.router != nil {
		decoded, err = c.router.Decode(envelope)
		if err != nil {
			return Envelope{}, nil, false, err
		}
	}
	return envelope, decoded, false, nil
}

// markSeen records the event ID and reports whether it was already seen.
// The memory of seen IDs is capped: the oldest ID is forgotten once the
// window fills.
func (c *EnvelopeConsumer) markSeen(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.seenEvents[eventID]; exists {
		return true
	}
	c.seenEvents[eventID] = struct{}{}
	c.seenOrder = append(c.seenOrder, eventID)
	if len(c.seenOrder) > c.window {
		oldest := c.seenOrder[0]
		c.seenOrder = c.seenOrder[1:]
		delete(c.seenEvents, oldest)
	}
	return false
}
