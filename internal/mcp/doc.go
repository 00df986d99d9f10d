// Package mcp exposes the memory store over the Model Context Protocol
// on stdio.
//
// # Tools
//
//   - search_memory: query stored memories. Modes: hybrid (rank-fused
//     keyword + semantic), fts (keyword only), vector (semantic only).
//   - get_recent_memories: newest memories first, with synthetic
//     recency scores.
//   - add_memory: store content with optional title, source URL and
//     string metadata. The memory and its embedding commit in a single
//     transaction.
//   - get_memory: fetch one memory by UUID.
//   - get_status: store statistics, health and embedding provider info.
//
// # Errors
//
// Handlers return *MCPError with JSON-RPC style codes: -32602 for
// invalid parameters, -32603 for internal failures, and server-specific
// codes for missing memories, empty queries and embedding failures.
// Tool responses are indented JSON in a single text content block.
package mcp
