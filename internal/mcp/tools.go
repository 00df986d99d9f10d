package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mnemos-dev/mnemos/internal/embedder"
	"github.com/mnemos-dev/mnemos/internal/storage"
	"github.com/mnemos-dev/mnemos/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeMemoryNotFound  = -32001 // No memory with the given identifier
	ErrorCodeEmptyQuery      = -32002 // Query parameter is empty
	ErrorCodeEmbeddingFailed = -32003 // Embedding provider failure
)

// handleSearchMemory handles the search_memory tool invocation
func (s *Server) handleSearchMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	mode := getStringDefault(args, "mode", "hybrid")

	var hits []types.SearchHit
	var err error
	switch mode {
	case "hybrid":
		hits, err = s.searcher.Search(ctx, query, limit)
	case "fts":
		hits, err = s.searcher.SearchFTS(ctx, query, limit)
	case "vector":
		hits, err = s.searcher.SearchVector(ctx, query, limit)
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   mode,
			"allowed": []string{"hybrid", "fts", "vector"},
		})
	}
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"query":   query,
		"mode":    mode,
		"results": formatHits(hits),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetRecentMemories handles the get_recent_memories tool invocation
func (s *Server) handleGetRecentMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	hits, err := s.searcher.GetRecent(ctx, limit)
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"results": formatHits(hits),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAddMemory handles the add_memory tool invocation. The memory and
// its embedding are stored in one transaction so the vector index never
// lags the text index.
func (s *Server) handleAddMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	item := types.NewMemoryItem(content)
	item.Title = getStringDefault(args, "title", "")
	item.SourceURL = getStringDefault(args, "source_url", "")
	if meta, ok := args["metadata"].(map[string]interface{}); ok {
		item.Metadata = make(map[string]string, len(meta))
		for k, v := range meta {
			str, ok := v.(string)
			if !ok {
				return nil, newMCPError(ErrorCodeInvalidParams, "metadata values must be strings", map[string]interface{}{
					"param": "metadata",
					"key":   k,
				})
			}
			item.Metadata[k] = str
		}
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: content})
	if err != nil {
		return nil, newMCPError(ErrorCodeEmbeddingFailed, "embedding generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "begin transaction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertMemory(ctx, storage.FromItem(*item)); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "store memory failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := tx.UpsertEmbedding(ctx, &storage.Embedding{
		MemoryUID: item.ID,
		Vector:    storage.SerializeVector(emb.Vector),
		Dimension: emb.Dimension,
		Provider:  emb.Provider,
		Model:     emb.Model,
	}); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "store embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := tx.Commit(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "commit failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"stored":     true,
		"id":         item.ID,
		"created_at": item.CreatedAt.Format(time.RFC3339),
		"embedding": map[string]interface{}{
			"provider":  emb.Provider,
			"model":     emb.Model,
			"dimension": emb.Dimension,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetMemory handles the get_memory tool invocation
func (s *Server) handleGetMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "id is not a valid identifier", map[string]interface{}{
			"param": "id",
			"value": id,
		})
	}

	memory, err := s.storage.GetMemory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeMemoryNotFound, "memory not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	item := memory.ToItem()
	response := map[string]interface{}{
		"id":         item.ID,
		"title":      item.Title,
		"content":    item.Content,
		"source_url": item.SourceURL,
		"metadata":   item.Metadata,
		"created_at": item.CreatedAt.Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"memories_count":   status.MemoriesCount,
			"embeddings_count": status.EmbeddingsCount,
			"db_size_mb":       fmt.Sprintf("%.2f", status.DBSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  status.Health.DatabaseAccessible,
			"embeddings_available": status.Health.EmbeddingsAvailable,
			"fts_index_built":      status.Health.FTSIndexBuilt,
		},
		"embedding": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// searchError maps engine failures onto MCP error codes
func searchError(err error) error {
	if errors.Is(err, types.ErrEmbeddingFailure) {
		return newMCPError(ErrorCodeEmbeddingFailed, "embedding generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// formatHits renders hits for a tool response
func formatHits(hits []types.SearchHit) []map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		entry := map[string]interface{}{
			"id":         hit.Item.ID,
			"content":    hit.Item.Content,
			"score":      hit.Score,
			"provenance": string(hit.Provenance),
			"created_at": hit.Item.CreatedAt.Format(time.RFC3339),
		}
		if hit.Item.Title != "" {
			entry["title"] = hit.Item.Title
		}
		if hit.Item.SourceURL != "" {
			entry["source_url"] = hit.Item.SourceURL
		}
		if len(hit.Item.Metadata) > 0 {
			entry["metadata"] = hit.Item.Metadata
		}
		if hit.Snippet != "" {
			entry["snippet"] = hit.Snippet
		}
		if hit.FTSRank > 0 {
			entry["fts_rank"] = hit.FTSRank
		}
		if hit.VectorRank > 0 {
			entry["vector_rank"] = hit.VectorRank
		}
		results = append(results, entry)
	}
	return results
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
