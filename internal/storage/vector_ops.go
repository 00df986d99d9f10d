package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mnemos-dev/mnemos/pkg/types"
)

// searchVector performs vector similarity search using cosine similarity
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchHit, error) {
	if limit <= 0 {
		return []types.SearchHit{}, nil
	}
	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchVectorFallback(ctx, db, queryVector, limit)
}

const memoryColumns = `m.id, m.uid, m.title, m.content, m.source_url, m.metadata, m.created_at, m.updated_at`

// searchVectorOptimized uses sqlite-vec to compute distance at the database layer
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchHit, error) {
	queryVectorBlob := serializeVector(queryVector)

	// vec_distance_cosine returns distance (lower is better); convert to
	// similarity so higher is better throughout the engine
	query := `
		SELECT ` + memoryColumns + `,
			1.0 - vec_distance_cosine(e.vector, ?) AS similarity
		FROM memories m
		INNER JOIN embeddings e ON e.memory_id = m.id
		ORDER BY similarity DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, queryVectorBlob, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]types.SearchHit, 0, limit)
	for rows.Next() {
		var memory Memory
		var title, sourceURL, metadata sql.NullString
		var similarity float64
		err := rows.Scan(
			&memory.RowID, &memory.UID, &title, &memory.Content,
			&sourceURL, &metadata, &memory.CreatedAt, &memory.UpdatedAt,
			&similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		memory.Title = title.String
		memory.SourceURL = sourceURL.String
		memory.Metadata = unmarshalMetadata(metadata.String)
		hits = append(hits, vectorHit(&memory, similarity, len(hits)+1))
	}

	return hits, rows.Err()
}

// searchVectorFallback computes cosine similarity in Go when the
// sqlite-vec extension is not available (purego builds)
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]types.SearchHit, error) {
	query := `
		SELECT ` + memoryColumns + `, e.vector
		FROM memories m
		INNER JOIN embeddings e ON e.memory_id = m.id
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type candidate struct {
		memory Memory
		score  float64
	}
	candidates := make([]candidate, 0, 256)

	for rows.Next() {
		var memory Memory
		var title, sourceURL, metadata sql.NullString
		var vectorBlob []byte
		err := rows.Scan(
			&memory.RowID, &memory.UID, &title, &memory.Content,
			&sourceURL, &metadata, &memory.CreatedAt, &memory.UpdatedAt,
			&vectorBlob,
		)
		if err != nil {
			return nil, err
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		memory.Title = title.String
		memory.SourceURL = sourceURL.String
		memory.Metadata = unmarshalMetadata(metadata.String)
		candidates = append(candidates, candidate{
			memory: memory,
			score:  cosineSimilarity(queryVector, vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	hits := make([]types.SearchHit, 0, limit)
	for i := 0; i < limit; i++ {
		hits = append(hits, vectorHit(&candidates[i].memory, candidates[i].score, i+1))
	}
	return hits, nil
}

func vectorHit(memory *Memory, similarity float64, rank int) types.SearchHit {
	if similarity < 0 {
		similarity = 0
	}
	return types.SearchHit{
		Item:        memory.ToItem(),
		Score:       similarity,
		Provenance:  types.ProvenanceVector,
		VectorScore: similarity,
		VectorRank:  rank,
	}
}

// searchText performs BM25 full-text search using FTS5
func searchText(ctx context.Context, db *sql.DB, query string, limit int) ([]types.SearchHit, error) {
	if limit <= 0 {
		return []types.SearchHit{}, nil
	}
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}

	sqlQuery := `
		SELECT ` + memoryColumns + `,
			bm25(memories_fts) AS score,
			snippet(memories_fts, 1, '', '', '...', 12) AS snip
		FROM memories_fts
		INNER JOIN memories m ON memories_fts.rowid = m.id
		WHERE memories_fts MATCH ?
		ORDER BY score
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, sqlQuery, sanitized, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]types.SearchHit, 0, limit)
	for rows.Next() {
		var memory Memory
		var title, sourceURL, metadata sql.NullString
		var rawScore float64
		var snippet string
		err := rows.Scan(
			&memory.RowID, &memory.UID, &title, &memory.Content,
			&sourceURL, &metadata, &memory.CreatedAt, &memory.UpdatedAt,
			&rawScore, &snippet,
		)
		if err != nil {
			return nil, err
		}
		memory.Title = title.String
		memory.SourceURL = sourceURL.String
		memory.Metadata = unmarshalMetadata(metadata.String)

		// Convert BM25 score (negative, lower is better) to a positive
		// normalized score. FTS5 bm25 values are typically in [-50, 0].
		score := 1.0 / (1.0 + math.Abs(rawScore)/50.0)

		hits = append(hits, types.SearchHit{
			Item:       memory.ToItem(),
			Score:      score,
			Provenance: types.ProvenanceFullText,
			FTSScore:   score,
			FTSRank:    len(hits) + 1,
			Snippet:    snippet,
		})
	}

	return hits, rows.Err()
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// FTS5 operator pattern for escaping Boolean operators
var ftsOperatorPattern = regexp.MustCompile(`\b(AND|OR|NOT|NEAR)\b`)

// sanitizeFTSQuery sanitizes a search query for FTS5 to prevent injection.
// Escapes special FTS5 operators and characters.
func sanitizeFTSQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		`"`, `\"`,
		`*`, `\*`,
		`(`, `\(`,
		`)`, `\)`,
	)
	escaped := replacer.Replace(query)

	escaped = ftsOperatorPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		return `\` + match
	})

	return escaped
}

// SerializeVector is an exported helper for callers storing embeddings
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
