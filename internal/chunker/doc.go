// Package chunker divides document text into bounded, overlapping spans for
// embedding and lexical indexing.
//
// The splitter windows over token units: each span holds at most ChunkSize
// units and consecutive spans share ChunkOverlap units, so information near
// a boundary appears in both neighbors. Both values are configuration
// constants, never reconstructed from content.
//
//	tok, _ := chunker.NewTokenizer(cfg)
//	split := chunker.New(cfg, tok)
//	spans := split.Split(text)
//
// Two tokenizers are available, selected explicitly via configuration:
// tiktoken (cl100k_base BPE, the unit embedding models bill by) and a
// whitespace-based word tokenizer that needs no encoding data and is the
// deterministic offline choice for tests.
//
// Determinism is part of the contract: Split called twice on the same text
// with the same configuration yields identical span boundaries, which is
// what makes position-derived chunk IDs stable across runs.
package chunker
