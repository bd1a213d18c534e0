package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentVersion is the current on-disk document version.
const DocumentVersion = 1

// Document is the persisted form of the whole store.
type Document struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Entries []*Entry  `json:"entries"`
}

// DocumentStore persists the memory document as one unit.
type DocumentStore interface {
	// Load reads the document. A missing document returns an empty
	// document, not an error.
	Load(ctx context.Context) (*Document, error)

	// Save writes the document atomically.
	Save(ctx context.Context, doc *Document) error

	Close() error
}

// decodeDocument parses stored bytes into a document. It tolerates
// three historical shapes: the versioned document, a bare entry
// array, and the legacy bare string array.
func decodeDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Document{Version: DocumentVersion}, nil
	}

	switch trimmed[0] {
	case '{':
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("memory: decode document: %w", err)
		}
		if doc.Version == 0 {
			doc.Version = DocumentVersion
		}
		normalizeEntries(doc.Entries)
		return &doc, nil
	case '[':
		entries, err := decodeEntryArray(trimmed)
		if err != nil {
			return nil, err
		}
		return &Document{Version: DocumentVersion, Entries: entries}, nil
	default:
		return nil, fmt.Errorf("memory: unrecognized document shape")
	}
}

func decodeEntryArray(data []byte) ([]*Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("memory: decode entry array: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	first := bytes.TrimSpace(raw[0])
	if len(first) > 0 && first[0] == '"' {
		// Legacy format: a plain array of remembered strings.
		var contents []string
		if err := json.Unmarshal(data, &contents); err != nil {
			return nil, fmt.Errorf("memory: decode legacy array: %w", err)
		}
		now := time.Now().UTC()
		entries := make([]*Entry, 0, len(contents))
		for _, content := range contents {
			entries = append(entries, &Entry{
				ID:         uuid.New().String(),
				Content:    content,
				Type:       TypeConversation,
				Importance: 0.5,
				CreatedAt:  now,
			})
		}
		return entries, nil
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("memory: decode entry array: %w", err)
	}
	normalizeEntries(entries)
	return entries, nil
}

// normalizeEntries backfills fields older documents may lack.
func normalizeEntries(entries []*Entry) {
	now := time.Now().UTC()
	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.Type == "" {
			e.Type = TypeConversation
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.Importance < 0 {
			e.Importance = 0
		} else if e.Importance > 1 {
			e.Importance = 1
		}
	}
}

func encodeDocument(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("memory: encode document: %w", err)
	}
	return data, nil
}
