// Package memory provides the agent's persistent long-term memory: a
// bounded, relevance-scored entry list persisted as a single JSON
// document through pluggable backends.
package memory

import (
	"time"
)

// Entry types. Free-form strings are allowed; these are the ones the
// agent writes itself.
const (
	TypeConversation = "conversation"
	TypeReflection   = "reflection"
	TypeFact         = "fact"
)

// Entry is a single remembered item. The JSON field names are the
// on-disk document format and must stay stable across releases.
type Entry struct {
	// ID is the unique identifier for this entry.
	ID string `json:"id"`

	// Content is the remembered text.
	Content string `json:"content"`

	// Type categorizes the entry (conversation, reflection, fact).
	Type string `json:"memory_type"`

	// Importance weighs the entry in recall scoring and eviction
	// (0.0 to 1.0).
	Importance float64 `json:"importance"`

	// Tags hold free-form labels.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"timestamp"`

	// AccessCount is how many times recall returned this entry.
	AccessCount int `json:"access_count"`

	// LastAccessed is when recall last returned this entry.
	LastAccessed time.Time `json:"last_accessed"`
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Tags != nil {
		out.Tags = make([]string, len(e.Tags))
		copy(out.Tags, e.Tags)
	}
	return &out
}

// Age returns how old the entry is at the given time.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Stats summarizes the store.
type Stats struct {
	// TotalEntries is the number of stored entries.
	TotalEntries int `json:"total_entries"`

	// ByType counts entries per memory type.
	ByType map[string]int `json:"by_type"`

	// AverageImportance is the mean importance across all entries.
	AverageImportance float64 `json:"average_importance"`

	// Degraded reports whether the last persistence attempt failed.
	Degraded bool `json:"degraded"`
}
