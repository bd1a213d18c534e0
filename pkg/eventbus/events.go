package eventbus

// Canonical event types. Each is unique across domains so one schema
// router can validate any envelope on the bus.
const (
	EventTurnCompleted       = "completed"
	EventTurnFailed          = "failed"
	EventProviderSwitched    = "switched"
	EventProviderFailover    = "failover"
	EventProviderHealth      = "health_changed"
	EventMemoryEvicted       = "evicted"
	EventMemoryPersistFailed = "persist_failed"
	EventToneChanged         = "tone_changed"
)

// TurnCompletedPayload announces a finished conversation turn.
type TurnCompletedPayload struct {
	SessionID     string  `json:"session_id"`
	Provider      string  `json:"provider"`
	LatencyMS     int64   `json:"latency_ms"`
	MemoryUpdated bool    `json:"memory_updated"`
	Tone          string  `json:"tone"`
	Importance    float64 `json:"importance,omitempty"`
}

// TurnFailedPayload announces a turn that exhausted all providers.
type TurnFailedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// ProviderSwitchedPayload announces a manual or automatic provider change.
type ProviderSwitchedPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// ProviderHealthPayload announces a provider availability change.
type ProviderHealthPayload struct {
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}

// MemoryEvictedPayload announces entries dropped by the eviction pass.
type MemoryEvictedPayload struct {
	Tier      string `json:"tier"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
}

// MemoryPersistFailedPayload announces a failed store save.
type MemoryPersistFailedPayload struct {
	Backend string `json:"backend"`
	Error   string `json:"error"`
}

// ToneChangedPayload announces an emotional tone transition.
type ToneChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DefaultSchemaRouter returns a router preloaded with the v1 payload
// contracts for every canonical event type.
func DefaultSchemaRouter() *SchemaRouter {
	router := NewSchemaRouter()

	schemas := []PayloadSchema{
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventTurnCompleted,
			Required:      []string{"session_id", "provider", "latency_ms", "memory_updated", "tone"},
			Optional:      []string{"importance"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventTurnFailed,
			Required:      []string{"session_id", "reason"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventProviderSwitched,
			Required:      []string{"from", "to", "reason"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventProviderFailover,
			Required:      []string{"from", "to", "reason"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventProviderHealth,
			Required:      []string{"provider", "available"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventMemoryEvicted,
			Required:      []string{"tier", "count", "remaining"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventMemoryPersistFailed,
			Required:      []string{"backend", "error"},
		},
		{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventToneChanged,
			Required:      []string{"from", "to"},
		},
	}
	for _, schema := range schemas {
		_ = router.RegisterPayloadSchema(schema)
	}
	return router
}
