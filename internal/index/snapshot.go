package index

import (
	"sort"

	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// Snapshot is the in-memory state of the index: every current document and
// chunk, plus the embedding dimensionality the vectors were produced at.
// A snapshot is mutated only by the Store's Update and Prune operations and
// is read-only for retrieval.
type Snapshot struct {
	Dim       int
	Documents map[string]*types.Document
	Chunks    map[string]*types.Chunk // keyed by chunk ID
}

// NewSnapshot creates an empty snapshot with a fixed embedding dimension.
func NewSnapshot(dim int) *Snapshot {
	return &Snapshot{
		Dim:       dim,
		Documents: make(map[string]*types.Document),
		Chunks:    make(map[string]*types.Chunk),
	}
}

// DocumentHash returns the content hash a path was last indexed under.
func (s *Snapshot) DocumentHash(path string) (string, bool) {
	doc, ok := s.Documents[path]
	if !ok {
		return "", false
	}
	return doc.ContentHash, true
}

// ReplaceDocument swaps in a document and its full chunk set. The old
// chunks are removed before the new ones are inserted, so a document's old
// and new chunks are never mixed.
func (s *Snapshot) ReplaceDocument(doc *types.Document, chunks []*types.Chunk) {
	if old, ok := s.Documents[doc.Path]; ok {
		for _, id := range old.ChunkIDs {
			delete(s.Chunks, id)
		}
	}
	s.Documents[doc.Path] = doc
	for _, c := range chunks {
		s.Chunks[c.ID] = c
	}
}

// RemoveDocument deletes a document and all of its chunks.
func (s *Snapshot) RemoveDocument(path string) {
	doc, ok := s.Documents[path]
	if !ok {
		return
	}
	for _, id := range doc.ChunkIDs {
		delete(s.Chunks, id)
	}
	delete(s.Documents, path)
}

// DocumentCount returns the number of indexed documents.
func (s *Snapshot) DocumentCount() int {
	return len(s.Documents)
}

// ChunkCount returns the number of stored chunks.
func (s *Snapshot) ChunkCount() int {
	return len(s.Chunks)
}

// SortedChunkIDs returns every chunk ID in lexicographic order. Retrieval
// iterates in this order so scoring ties resolve deterministically.
func (s *Snapshot) SortedChunkIDs() []string {
	ids := make([]string, 0, len(s.Chunks))
	for id := range s.Chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
