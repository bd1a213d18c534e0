package agent

import (
	"context"
	"time"

	"github.com/goclaw/anima/pkg/eventbus"
)

// publishTimeout bounds event publishing from observer callbacks so a
// stalled bus cannot block the pipeline.
const publishTimeout = 2 * time.Second

// BusEvents bridges router and memory observers onto the event bus.
// It satisfies provider.Events and the memory store's hook signatures.
type BusEvents struct {
	publisher *eventbus.Publisher
	logger    agentLogger
	backend   string
}

// NewBusEvents creates the observer bridge. The backend name labels
// memory persistence events.
func NewBusEvents(publisher *eventbus.Publisher, backend string, log agentLogger) *BusEvents {
	if log == nil {
		log = nopAgentLogger{}
	}
	return &BusEvents{publisher: publisher, logger: log, backend: backend}
}

// ProviderFailover publishes a failover hop.
func (b *BusEvents) ProviderFailover(from, to, reason string) {
	b.publish(eventbus.DomainProvider, eventbus.EventProviderFailover, from,
		eventbus.ProviderSwitchedPayload{From: from, To: to, Reason: reason})
}

// ProviderSwitched publishes an active-provider change.
func (b *BusEvents) ProviderSwitched(from, to, reason string) {
	b.publish(eventbus.DomainProvider, eventbus.EventProviderSwitched, to,
		eventbus.ProviderSwitchedPayload{From: from, To: to, Reason: reason})
}

// ProviderHealthChanged publishes an availability flip.
func (b *BusEvents) ProviderHealthChanged(provider string, available bool) {
	b.publish(eventbus.DomainProvider, eventbus.EventProviderHealth, provider,
		eventbus.ProviderHealthPayload{Provider: provider, Available: available})
}

// MemoryEvicted publishes an eviction batch. Wire it as the store's
// eviction hook.
func (b *BusEvents) MemoryEvicted(tier string, count, remaining int) {
	b.publish(eventbus.DomainMemory, eventbus.EventMemoryEvicted, b.backend,
		eventbus.MemoryEvictedPayload{Tier: tier, Count: count, Remaining: remaining})
}

// MemoryPersistFailed publishes a failed store save. Wire it as the
// store's persist-failure hook.
func (b *BusEvents) MemoryPersistFailed(err error) {
	b.publish(eventbus.DomainMemory, eventbus.EventMemoryPersistFailed, b.backend,
		eventbus.MemoryPersistFailedPayload{Backend: b.backend, Error: err.Error()})
}

func (b *BusEvents) publish(domain eventbus.Domain, eventType, orderingKey string, payload any) {
	if b.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, err := b.publisher.Publish(ctx, eventbus.Event{
		Domain:      domain,
		EventType:   eventType,
		Schema:      eventbus.SchemaVersionV1,
		OrderingKey: orderingKey,
		Payload:     payload,
	})
	if err != nil {
		b.logger.Warn("failed to publish event", "domain", domain, "type", eventType, "error", err)
	}
}
