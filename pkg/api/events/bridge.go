package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/goclaw/anima/pkg/eventbus"
)

// bridgeLogger is the minimal logger interface used by the bridge.
type bridgeLogger interface {
	Warn(msg string, args ...any)
}

// Bridge forwards event-bus envelopes to broadcaster subscribers. It
// translates subjects like anima.v1.turn.completed into the flat
// "turn.completed" event types the WebSocket protocol uses.
type Bridge struct {
	broadcaster *Broadcaster
	sub         *eventbus.Subscription
	logger      bridgeLogger
	done        chan struct{}
}

// NewBridge subscribes the broadcaster to every agent event on the bus.
func NewBridge(bus *eventbus.LocalBus, broadcaster *Broadcaster, log bridgeLogger) (*Bridge, error) {
	sub, err := bus.Subscribe(eventbus.SubjectPrefix+".>", 64)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		broadcaster: broadcaster,
		sub:         sub,
		logger:      log,
		done:        make(chan struct{}),
	}, nil
}

// Run pumps bus messages into the broadcaster until the context ends or
// the subscription closes.
func (b *Bridge) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-b.sub.C():
			if !ok {
				return
			}
			b.forward(msg)
		}
	}
}

// Close tears down the subscription and waits for Run to drain.
func (b *Bridge) Close() {
	_ = b.sub.Close()
	<-b.done
}

func (b *Bridge) forward(msg eventbus.Message) {
	var envelope eventbus.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		if b.logger != nil {
			b.logger.Warn("dropping malformed bus message", "subject", msg.Subject, "error", err)
		}
		return
	}

	var payload any
	if len(envelope.Payload) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(envelope.Payload, &decoded); err == nil {
			payload = decoded
		}
	}

	b.broadcaster.Broadcast(Event{
		Type:      eventTypeFromSubject(msg.Subject),
		SessionID: envelope.SessionID,
		Timestamp: envelope.Timestamp,
		Payload:   payload,
	})
}

// eventTypeFromSubject strips the subject prefix: anima.v1.turn.completed
// becomes turn.completed.
func eventTypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, eventbus.SubjectPrefix+".")
}
