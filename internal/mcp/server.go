package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/mnemos-dev/mnemos/internal/config"
	"github.com/mnemos-dev/mnemos/internal/embedder"
	"github.com/mnemos-dev/mnemos/internal/searcher"
	"github.com/mnemos-dev/mnemos/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "mnemos"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	embedder embedder.Embedder
	searcher *searcher.Searcher
	log      zerolog.Logger
}

// NewServer wires storage, embedder and the search engine from a loaded
// configuration and registers the tool set.
func NewServer(cfg config.Config, log zerolog.Logger) (*Server, error) {
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		APIKey:    cfg.Embedding.APIKey,
		Host:      cfg.Embedding.Host,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	srch := searcher.NewSearcher(store, emb, searcher.Config{
		FTSWeight:       cfg.Search.FTSWeight,
		VectorWeight:    cfg.Search.VectorWeight,
		RRFK:            cfg.Search.RRFK,
		DedupEnabled:    cfg.Search.DedupEnabled,
		DedupThreshold:  cfg.Search.DedupThreshold,
		MaxContextChars: cfg.Search.MaxContextChars,
		CacheEnabled:    cfg.Search.CacheEnabled,
		CacheTTL:        cfg.Search.CacheTTL,
	}, log)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		embedder: emb,
		searcher: srch,
		log:      log,
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.storage.Close()
	}()
	s.log.Info().
		Str("server", ServerName).
		Str("version", ServerVersion).
		Msg("serving on stdio")
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchMemoryTool(), s.handleSearchMemory)
	s.mcp.AddTool(getRecentMemoriesTool(), s.handleGetRecentMemories)
	s.mcp.AddTool(addMemoryTool(), s.handleAddMemory)
	s.mcp.AddTool(getMemoryTool(), s.handleGetMemory)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
