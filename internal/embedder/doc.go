// Package embedder provides the "text -> fixed-length vector" capability
// used by the index store and the retriever.
//
// # Providers
//
// Three variants implement the Embedder interface:
//
//   - openai: the OpenAI embeddings API (text-embedding-3-small by default)
//   - ollama: a local Ollama server's /api/embeddings endpoint
//   - offline: deterministic hash-derived vectors with no network dependency
//
// The variant is selected via explicit configuration in New, never by
// runtime type inspection. The offline provider doubles as the test stub:
// identical text always produces the identical unit-length vector.
//
// # Failure model
//
// HTTP providers retry with exponential backoff and honor context
// cancellation. A provider error is returned to the caller, who treats it
// as per-document and non-fatal: one failing document never aborts an
// update batch.
//
// # Caching
//
// HTTP providers share an LRU cache keyed by a hash of the input text, so
// re-embedding unchanged chunk text costs nothing.
package embedder
