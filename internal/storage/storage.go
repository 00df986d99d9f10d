package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mnemos-dev/mnemos/pkg/types"
)

// Storage defines the interface for persisting and querying memory items
type Storage interface {
	// Memory operations
	UpsertMemory(ctx context.Context, memory *Memory) error
	GetMemory(ctx context.Context, uid string) (*Memory, error)
	DeleteMemory(ctx context.Context, uid string) error
	CountMemories(ctx context.Context) (int, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, memoryUID string) (*Embedding, error)
	DeleteEmbedding(ctx context.Context, memoryUID string) error

	// Search operations, best match first
	FullTextSearch(ctx context.Context, query string, limit int) ([]types.SearchHit, error)
	VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]types.SearchHit, error)

	// Recency, most recent first
	GetRecentMemories(ctx context.Context, limit int) ([]types.MemoryItem, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction covering the ingest path
// (memory + embedding stored atomically)
type Tx interface {
	Commit() error
	Rollback() error

	UpsertMemory(ctx context.Context, memory *Memory) error
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
}

// Memory is the stored representation of a memory item
type Memory struct {
	RowID     int64  // SQLite rowid, internal
	UID       string // UUID, the public identifier
	Title     string
	Content   string
	SourceURL string
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Embedding represents a vector embedding for a memory
type Embedding struct {
	ID        int64
	MemoryUID string
	Vector    []byte // Serialized float32 array, little-endian
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// Status contains statistics about the memory store
type Status struct {
	MemoriesCount   int
	EmbeddingsCount int
	DBSizeMB        float64
	Health          HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexBuilt       bool
}

// ToItem converts a stored Memory to the shared MemoryItem type
func (m *Memory) ToItem() types.MemoryItem {
	item := types.MemoryItem{
		ID:        m.UID,
		Title:     m.Title,
		Content:   m.Content,
		SourceURL: m.SourceURL,
		CreatedAt: m.CreatedAt,
	}
	if m.Metadata != nil {
		item.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			item.Metadata[k] = v
		}
	}
	return item
}

// FromItem converts a MemoryItem to its stored representation
func FromItem(item types.MemoryItem) *Memory {
	m := &Memory{
		UID:       item.ID,
		Title:     item.Title,
		Content:   item.Content,
		SourceURL: item.SourceURL,
		CreatedAt: item.CreatedAt,
	}
	if item.Metadata != nil {
		m.Metadata = make(map[string]string, len(item.Metadata))
		for k, v := range item.Metadata {
			m.Metadata[k] = v
		}
	}
	return m
}

// marshalMetadata serializes metadata to JSON, empty string for nil
func marshalMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// unmarshalMetadata deserializes metadata JSON, nil for empty input
func unmarshalMetadata(data string) map[string]string {
	if data == "" {
		return nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil
	}
	return metadata
}
