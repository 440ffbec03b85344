package types

import (
	"errors"
	"fmt"
)

// Chunk is a bounded, overlapping span of a document's text: the unit of
// embedding and lexical indexing. A chunk is owned exclusively by its
// document and is recreated wholesale whenever the document is reprocessed.
type Chunk struct {
	// ID is derived from the document path and span position, so identical
	// input text and configuration always reproduce the same IDs.
	ID      string
	DocPath string
	Seq     int // 0-based position within the document

	Text       string
	TokenCount int

	// DocHash is a denormalized copy of the parent document's content hash,
	// kept for cheap staleness checks without a document lookup.
	DocHash string

	Vector []float32
}

// ChunkID derives the stable chunk identifier for a span of a document.
func ChunkID(docPath string, seq int) string {
	return fmt.Sprintf("%s#%04d", docPath, seq)
}

// Validate checks structural integrity of the chunk.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return errors.New("chunk ID is required")
	}
	if c.DocPath == "" {
		return errors.New("chunk document path is required")
	}
	if c.Seq < 0 {
		return errors.New("chunk sequence must not be negative")
	}
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.ID != ChunkID(c.DocPath, c.Seq) {
		return errors.New("chunk ID does not match path and sequence")
	}
	return nil
}

// Document is one indexed source file, identified by its repo-relative path.
// It carries the content hash it was indexed under and the ordered IDs of
// the chunks it was split into.
type Document struct {
	Path        string
	ContentHash string
	Language    string
	ChunkIDs    []string
}
