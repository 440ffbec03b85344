package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nodeeeeee/idea-producer/internal/chunker"
	"github.com/nodeeeeee/idea-producer/internal/config"
	"github.com/nodeeeeee/idea-producer/internal/embedder"
	"github.com/nodeeeeee/idea-producer/internal/index"
)

const (
	// ServerName is the MCP server name.
	ServerName = "idea-producer-index"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server exposes the indexing and retrieval contract as MCP tools over
// stdio. It is a thin adapter: every tool bottoms out in Scan, Update,
// Persist, Prune, or Retrieve.
type Server struct {
	mcp      *server.MCPServer
	cfg      config.Config
	store    *index.Store
	embedder embedder.Embedder
	logger   *slog.Logger
}

// NewServer creates the MCP server with its indexing dependencies built
// from the explicit configuration.
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	emb, err := embedder.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	tok, err := chunker.NewTokenizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize tokenizer: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		cfg:      cfg,
		store:    index.New(cfg, chunker.New(cfg, tok), emb, logger),
		embedder: emb,
		logger:   logger,
	}
	s.registerTools()
	return s, nil
}

// Serve runs the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.embedder.Close() }()
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(scanRepoTool(), s.handleScanRepo)
	s.mcp.AddTool(updateIndexTool(), s.handleUpdateIndex)
	s.mcp.AddTool(searchIndexTool(), s.handleSearchIndex)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
