package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// scanRepoTool returns the tool definition for scan_repo.
func scanRepoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_repo",
		Description: "Scan a repository tree and report its manifest digest and file count",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
			},
			Required: []string{"path"},
		},
	}
}

// updateIndexTool returns the tool definition for update_index.
func updateIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_index",
		Description: "Incrementally re-index changed files and persist the snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"prune": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, remove documents for files no longer present in the tree",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchIndexTool returns the tool definition for search_index.
func searchIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_index",
		Description: "Hybrid (vector + lexical) search over the persisted index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the indexed repository",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Top-k per signal; the fused result holds at most twice this many",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// indexStatusTool returns the tool definition for index_status.
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Report document and chunk counts for a repository's index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
			},
			Required: []string{"path"},
		},
	}
}
