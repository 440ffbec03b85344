// Package mcp exposes the repository index over the Model Context Protocol
// so AI coding agents can keep a searchable view of a codebase.
//
// Four tools are registered:
//   - scan_repo: walk a repository and report its manifest digest
//   - update_index: incrementally re-index changed files and persist
//   - search_index: hybrid vector + lexical search over the persisted index
//   - index_status: document and chunk counts for the persisted index
//
// The server speaks JSON-RPC 2.0 over stdio, started via the serve command:
//
//	repoindex serve
//
// update_index takes an exclusive file lock on the index directory for the
// duration of the scan-update-persist pass; a concurrent caller receives an
// UpdateInFlight error rather than blocking. search_index and index_status
// load the persisted snapshot read-only and never contend for the lock.
//
// Every tool takes an absolute repository path and resolves the index
// location relative to it, so one server instance can serve any number of
// repositories.
package mcp
