package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MemoryItem represents a retrievable unit of stored content.
// Items are immutable once created: search never mutates the stored
// content, only copies carried inside a SearchHit.
type MemoryItem struct {
	// Identification
	ID string // UUID, stable for the item's lifetime

	// Content
	Content string // UTF-8 text body; the unit dedup and truncation operate on

	// Descriptive fields, not used by the retrieval algorithm
	Title     string
	SourceURL string
	Metadata  map[string]string

	CreatedAt time.Time
}

// NewMemoryItem creates a memory item with a fresh UUID.
func NewMemoryItem(content string) *MemoryItem {
	return &MemoryItem{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the item is storable.
func (m *MemoryItem) Validate() error {
	if m.ID == "" {
		return errors.New("memory item ID is required")
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return ErrInvalidIdentifier
	}
	if m.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// Clone returns a deep copy. Search hits hold clones so that packing
// truncation never touches the stored item.
func (m *MemoryItem) Clone() MemoryItem {
	out := *m
	if m.Metadata != nil {
		out.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
