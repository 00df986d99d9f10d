package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchMemoryTool returns the tool definition for search_memory
func searchMemoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_memory",
		Description: "Search stored memories with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (keyword + semantic), fts (keyword only), or vector (semantic only)",
					"enum":        []string{"hybrid", "fts", "vector"},
					"default":     "hybrid",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getRecentMemoriesTool returns the tool definition for get_recent_memories
func getRecentMemoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_recent_memories",
		Description: "List the most recently stored memories, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of memories to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// addMemoryTool returns the tool definition for add_memory
func addMemoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_memory",
		Description: "Store a new memory with its embedding",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The memory text to store",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Optional short title",
				},
				"source_url": map[string]interface{}{
					"type":        "string",
					"description": "Optional URL the memory came from",
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Optional string key/value tags",
					"additionalProperties": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"content"},
		},
	}
}

// getMemoryTool returns the tool definition for get_memory
func getMemoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_memory",
		Description: "Fetch a single memory by its identifier",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Memory identifier (UUID)",
				},
			},
			Required: []string{"id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report store statistics and health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
