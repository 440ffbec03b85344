package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nodeeeeee/idea-producer/internal/retriever"
	"github.com/nodeeeeee/idea-producer/internal/scanner"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
	ErrorCodeUpdateInFlight = -32001 // another process holds the index lock
	ErrorCodeEmptyQuery     = -32004
)

// handleScanRepo runs a scan and reports the manifest summary.
func (s *Server) handleScanRepo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	sc, err := scanner.New(path, s.cfg.IgnoreFile, s.logger)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scanner init failed", map[string]interface{}{"error": err.Error()})
	}
	manifest, diags, err := sc.Scan()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scan failed", map[string]interface{}{"error": err.Error()})
	}

	response := map[string]interface{}{
		"path":   path,
		"files":  len(manifest.Files),
		"digest": manifest.Digest(),
	}
	if len(diags) > 0 {
		response["diagnostics"] = diagStrings(diags)
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateIndex scans, updates the snapshot, optionally prunes, and
// persists — the whole pass under an exclusive file lock.
func (s *Server) handleUpdateIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}
	args, _ := request.Params.Arguments.(map[string]interface{})
	prune := getBoolDefault(args, "prune", false)

	indexDir := filepath.Join(path, s.cfg.IndexDir)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "create index dir failed", map[string]interface{}{"error": err.Error()})
	}

	lock := flock.New(filepath.Join(indexDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lock index dir failed", map[string]interface{}{"error": err.Error()})
	}
	if !locked {
		return nil, newMCPError(ErrorCodeUpdateInFlight, "another update holds the index lock", nil)
	}
	defer func() { _ = lock.Unlock() }()

	sc, err := scanner.New(path, s.cfg.IgnoreFile, s.logger)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scanner init failed", map[string]interface{}{"error": err.Error()})
	}
	manifest, diags, err := sc.Scan()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scan failed", map[string]interface{}{"error": err.Error()})
	}

	snap, err := s.store.LoadOrCreate(indexDir)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "load snapshot failed", map[string]interface{}{"error": err.Error()})
	}

	stats, err := s.store.Update(ctx, snap, manifest, sc.Root())
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "update failed", map[string]interface{}{"error": err.Error()})
	}

	var pruned []string
	if prune {
		pruned = s.store.Prune(snap, manifest)
	}

	if err := s.store.Persist(snap, indexDir); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "persist failed", map[string]interface{}{"error": err.Error()})
	}

	response := map[string]interface{}{
		"digest":          manifest.Digest(),
		"docs_indexed":    stats.DocsIndexed,
		"docs_skipped":    stats.DocsSkipped,
		"docs_failed":     stats.DocsFailed,
		"chunks_created":  stats.ChunksCreated,
		"embedding_calls": stats.EmbeddingCalls,
		"duration_ms":     stats.Duration.Milliseconds(),
	}
	if prune {
		response["pruned"] = pruned
	}
	if len(stats.Errors) > 0 {
		if len(stats.Errors) > 5 {
			response["errors"] = stats.Errors[:5]
			response["error_count"] = len(stats.Errors)
		} else {
			response["errors"] = stats.Errors
		}
	}
	if len(diags) > 0 {
		response["diagnostics"] = diagStrings(diags)
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchIndex answers a hybrid query against the persisted snapshot.
func (s *Server) handleSearchIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}
	args, _ := request.Params.Arguments.(map[string]interface{})

	query, _ := args["query"].(string)
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param": "query",
		})
	}
	limit := getIntDefault(args, "limit", s.cfg.TopK)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	snap, err := s.store.LoadOrCreate(filepath.Join(path, s.cfg.IndexDir))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "load snapshot failed", map[string]interface{}{"error": err.Error()})
	}

	ret := retriever.New(snap, s.embedder, s.cfg, s.logger)
	results, err := ret.Retrieve(ctx, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "retrieve failed", map[string]interface{}{"error": err.Error()})
	}

	formatted := make([]map[string]interface{}, len(results))
	for i, res := range results {
		formatted[i] = map[string]interface{}{
			"chunk_id": res.Chunk.ID,
			"path":     res.Chunk.DocPath,
			"rank":     res.Rank,
			"score":    res.Score,
			"origin":   string(res.Origin),
			"text":     res.Chunk.Text,
		}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"results": formatted,
	})), nil
}

// handleIndexStatus reports snapshot counts without mutating anything.
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	snap, err := s.store.LoadOrCreate(filepath.Join(path, s.cfg.IndexDir))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "load snapshot failed", map[string]interface{}{"error": err.Error()})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"path":          path,
		"documents":     snap.DocumentCount(),
		"chunks":        snap.ChunkCount(),
		"embedding_dim": snap.Dim,
	})), nil
}

// Helper functions

// requirePath extracts and validates the mandatory path argument.
func requirePath(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return path, nil
}

// newMCPError creates a properly formatted MCP error.
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// MCPError represents an MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that a path exists and is a readable directory.
func validatePath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

func diagStrings(diags []scanner.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value.
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
