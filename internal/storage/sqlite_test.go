package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testMemory(content string) *Memory {
	return &Memory{
		UID:     uuid.NewString(),
		Content: content,
	}
}

func TestUpsertMemory_InsertAndFetch(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	memory := &Memory{
		UID:       uuid.NewString(),
		Title:     "dentist",
		Content:   "dentist appointment at 15:30 on thursday",
		SourceURL: "https://calendar.example.org/evt/42",
		Metadata:  map[string]string{"category": "health"},
	}
	require.NoError(t, store.UpsertMemory(ctx, memory))
	assert.NotZero(t, memory.RowID)
	assert.False(t, memory.CreatedAt.IsZero())

	fetched, err := store.GetMemory(ctx, memory.UID)
	require.NoError(t, err)
	assert.Equal(t, memory.UID, fetched.UID)
	assert.Equal(t, "dentist", fetched.Title)
	assert.Equal(t, memory.Content, fetched.Content)
	assert.Equal(t, memory.SourceURL, fetched.SourceURL)
	assert.Equal(t, map[string]string{"category": "health"}, fetched.Metadata)
}

func TestUpsertMemory_UpdateKeepsIdentity(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	memory := testMemory("original content")
	require.NoError(t, store.UpsertMemory(ctx, memory))
	originalRowID := memory.RowID
	originalCreated := memory.CreatedAt

	updated := &Memory{
		UID:     memory.UID,
		Title:   "revised",
		Content: "revised content",
	}
	require.NoError(t, store.UpsertMemory(ctx, updated))

	assert.Equal(t, originalRowID, updated.RowID)
	assert.Equal(t, originalCreated.Unix(), updated.CreatedAt.Unix())

	fetched, err := store.GetMemory(ctx, memory.UID)
	require.NoError(t, err)
	assert.Equal(t, "revised content", fetched.Content)
	assert.Equal(t, "revised", fetched.Title)

	count, err := store.CountMemories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertMemory_Validation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	assert.Error(t, store.UpsertMemory(ctx, &Memory{Content: "no uid"}))
	assert.Error(t, store.UpsertMemory(ctx, &Memory{UID: uuid.NewString()}))
}

func TestGetMemory_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetMemory(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMemory(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	memory := testMemory("to be removed")
	require.NoError(t, store.UpsertMemory(ctx, memory))
	require.NoError(t, store.DeleteMemory(ctx, memory.UID))

	_, err := store.GetMemory(ctx, memory.UID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteMemory(ctx, memory.UID), ErrNotFound)
}

func TestEmbeddingLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	memory := testMemory("content with an embedding")
	require.NoError(t, store.UpsertMemory(ctx, memory))

	vector := []float32{0.1, 0.2, 0.3, 0.4}
	embedding := &Embedding{
		MemoryUID: memory.UID,
		Vector:    SerializeVector(vector),
		Dimension: len(vector),
		Provider:  "local",
		Model:     "local-hash-embeddings",
	}
	require.NoError(t, store.UpsertEmbedding(ctx, embedding))

	fetched, err := store.GetEmbedding(ctx, memory.UID)
	require.NoError(t, err)
	assert.Equal(t, memory.UID, fetched.MemoryUID)
	assert.Equal(t, 4, fetched.Dimension)
	assert.Equal(t, "local", fetched.Provider)
	assert.Equal(t, vector, DeserializeVector(fetched.Vector))

	// Replacing the vector keeps one row per memory
	embedding.Vector = SerializeVector([]float32{0.9, 0.8, 0.7, 0.6})
	require.NoError(t, store.UpsertEmbedding(ctx, embedding))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.EmbeddingsCount)

	require.NoError(t, store.DeleteEmbedding(ctx, memory.UID))
	_, err = store.GetEmbedding(ctx, memory.UID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertEmbedding_OrphanRejected(t *testing.T) {
	store := newTestStorage(t)

	err := store.UpsertEmbedding(context.Background(), &Embedding{
		MemoryUID: uuid.NewString(),
		Vector:    SerializeVector([]float32{1}),
		Dimension: 1,
		Provider:  "local",
		Model:     "m",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMemory_CascadesEmbedding(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	memory := testMemory("cascade target")
	require.NoError(t, store.UpsertMemory(ctx, memory))
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		MemoryUID: memory.UID,
		Vector:    SerializeVector([]float32{1, 2}),
		Dimension: 2,
		Provider:  "local",
		Model:     "m",
	}))

	require.NoError(t, store.DeleteMemory(ctx, memory.UID))

	_, err := store.GetEmbedding(ctx, memory.UID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	committed := testMemory("committed memory")
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertMemory(ctx, committed))
	require.NoError(t, tx.UpsertEmbedding(ctx, &Embedding{
		MemoryUID: committed.UID,
		Vector:    SerializeVector([]float32{1}),
		Dimension: 1,
		Provider:  "local",
		Model:     "m",
	}))
	require.NoError(t, tx.Commit())

	_, err = store.GetMemory(ctx, committed.UID)
	require.NoError(t, err)

	abandoned := testMemory("rolled back memory")
	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertMemory(ctx, abandoned))
	require.NoError(t, tx.Rollback())

	_, err = store.GetMemory(ctx, abandoned.UID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecentMemories_Ordering(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var uids []string
	for i := 0; i < 3; i++ {
		memory := testMemory("memory number " + string(rune('a'+i)))
		memory.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.UpsertMemory(ctx, memory))
		uids = append(uids, memory.UID)
	}

	items, err := store.GetRecentMemories(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first
	assert.Equal(t, uids[2], items[0].ID)
	assert.Equal(t, uids[1], items[1].ID)
}

func TestGetRecentMemories_ZeroLimit(t *testing.T) {
	store := newTestStorage(t)

	items, err := store.GetRecentMemories(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetStatus(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.MemoriesCount)
	assert.False(t, status.Health.EmbeddingsAvailable)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.True(t, status.Health.FTSIndexBuilt)

	memory := testMemory("counted")
	require.NoError(t, store.UpsertMemory(ctx, memory))
	require.NoError(t, store.UpsertEmbedding(ctx, &Embedding{
		MemoryUID: memory.UID,
		Vector:    SerializeVector([]float32{1}),
		Dimension: 1,
		Provider:  "local",
		Model:     "m",
	}))

	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.MemoriesCount)
	assert.Equal(t, 1, status.EmbeddingsCount)
	assert.True(t, status.Health.EmbeddingsAvailable)
	assert.Greater(t, status.DBSizeMB, 0.0)
}
