// Package types provides shared type definitions for the repository index.
//
// This package defines the domain types used across components: file records
// and manifests produced by scanning, documents and chunks held by the index
// store, and search results returned by retrieval.
//
// # Core Types
//
// FileRecord describes one indexable file captured at scan time:
//
//	rec := types.FileRecord{
//	    Path:     "internal/server/server.go",
//	    Size:     4096,
//	    Hash:     "9c56cc51b3745ad2",
//	    Language: "go",
//	}
//
// Manifest is an immutable point-in-time inventory of a tree's indexable
// content. Its Digest is a pure, order-independent function of the
// (path, hash) pairs, so two scans of an unchanged tree always produce the
// same fingerprint regardless of traversal order:
//
//	if old.Digest() == new.Digest() {
//	    // nothing changed, skip the update pass
//	}
//
// DiffManifests compares two manifests and reports which paths were added,
// modified, or removed.
//
// Document is one indexed source file together with the content hash it was
// indexed under and the ordered chunk IDs it was split into. Chunk is the
// unit of embedding and lexical indexing: a bounded overlapping span of a
// document's text with a stable position-derived ID.
//
// SearchResult pairs a retrieved chunk with its fused relevance score. The
// score is the arithmetic mean of the vector and lexical scores when a chunk
// appears in both result sets; the two scales are not normalized against
// each other (see the retriever package).
package types
