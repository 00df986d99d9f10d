package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mnemos-dev/mnemos/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) UpsertMemory(ctx context.Context, memory *Memory) error {
	return t.storage.upsertMemoryWithQuerier(ctx, t.tx, memory)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return t.storage.upsertEmbeddingWithQuerier(ctx, t.tx, embedding)
}

// Memory operations

// upsertMemoryWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertMemoryWithQuerier(ctx context.Context, q querier, memory *Memory) error {
	if memory.UID == "" {
		return types.ErrInvalidIdentifier
	}
	if memory.Content == "" {
		return types.ErrEmptyContent
	}

	var metadataArg interface{}
	if meta := marshalMetadata(memory.Metadata); meta != "" {
		metadataArg = meta
	}

	query := `
		INSERT INTO memories (uid, title, content, source_url, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source_url = excluded.source_url,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	now := time.Now().UTC()
	createdAt := memory.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	err := q.QueryRowContext(ctx, query,
		memory.UID, memory.Title, memory.Content, memory.SourceURL,
		metadataArg, createdAt, now,
	).Scan(&memory.RowID, &memory.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert memory: %w", err)
	}

	memory.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertMemory(ctx context.Context, memory *Memory) error {
	return s.upsertMemoryWithQuerier(ctx, s.db, memory)
}

func (s *SQLiteStorage) GetMemory(ctx context.Context, uid string) (*Memory, error) {
	query := `
		SELECT id, uid, title, content, source_url, metadata, created_at, updated_at
		FROM memories
		WHERE uid = ?
	`
	memory, err := scanMemory(s.db.QueryRowContext(ctx, query, uid))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return memory, nil
}

func (s *SQLiteStorage) DeleteMemory(ctx context.Context, uid string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE uid = ?`, uid)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) CountMemories(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&count)
	return count, err
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner) (*Memory, error) {
	var memory Memory
	var title, sourceURL, metadata sql.NullString

	err := row.Scan(
		&memory.RowID, &memory.UID, &title, &memory.Content,
		&sourceURL, &metadata, &memory.CreatedAt, &memory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	memory.Title = title.String
	memory.SourceURL = sourceURL.String
	memory.Metadata = unmarshalMetadata(metadata.String)
	return &memory, nil
}

// Embedding operations

// upsertEmbeddingWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertEmbeddingWithQuerier(ctx context.Context, q querier, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (memory_id, vector, dimension, provider, model, created_at)
		SELECT id, ?, ?, ?, ?, ? FROM memories WHERE uid = ?
		ON CONFLICT(memory_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	now := time.Now().UTC()
	result, err := q.ExecContext(ctx, query,
		embedding.Vector, embedding.Dimension,
		embedding.Provider, embedding.Model, now, embedding.MemoryUID)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: no memory with uid %s", ErrNotFound, embedding.MemoryUID)
	}

	if embedding.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			embedding.ID = id
		}
	}
	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	return s.upsertEmbeddingWithQuerier(ctx, s.db, embedding)
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, memoryUID string) (*Embedding, error) {
	query := `
		SELECT e.id, m.uid, e.vector, e.dimension, e.provider, e.model, e.created_at
		FROM embeddings e
		JOIN memories m ON e.memory_id = m.id
		WHERE m.uid = ?
	`
	var embedding Embedding
	err := s.db.QueryRowContext(ctx, query, memoryUID).Scan(
		&embedding.ID, &embedding.MemoryUID, &embedding.Vector,
		&embedding.Dimension, &embedding.Provider, &embedding.Model,
		&embedding.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

func (s *SQLiteStorage) DeleteEmbedding(ctx context.Context, memoryUID string) error {
	query := `DELETE FROM embeddings WHERE memory_id IN (SELECT id FROM memories WHERE uid = ?)`
	_, err := s.db.ExecContext(ctx, query, memoryUID)
	return err
}

// Search operations

func (s *SQLiteStorage) FullTextSearch(ctx context.Context, query string, limit int) ([]types.SearchHit, error) {
	// Implementation in vector_ops.go alongside the vector path
	return searchText(ctx, s.db, query, limit)
}

func (s *SQLiteStorage) VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]types.SearchHit, error) {
	return searchVector(ctx, s.db, queryVector, limit)
}

// Recency operations

func (s *SQLiteStorage) GetRecentMemories(ctx context.Context, limit int) ([]types.MemoryItem, error) {
	if limit <= 0 {
		return []types.MemoryItem{}, nil
	}
	query := `
		SELECT id, uid, title, content, source_url, metadata, created_at, updated_at
		FROM memories
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]types.MemoryItem, 0, limit)
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, memory.ToItem())
	}
	return items, rows.Err()
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{}

	var memoryCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&memoryCount); err != nil {
		return nil, err
	}
	status.MemoriesCount = memoryCount

	var embeddingCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&embeddingCount); err != nil {
		return nil, err
	}
	status.EmbeddingsCount = embeddingCount

	var pageCount, pageSize int
	err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DBSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: embeddingCount > 0,
		FTSIndexBuilt:       true, // created with migrations
	}

	return status, nil
}
