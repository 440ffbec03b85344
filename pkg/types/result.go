package types

// ScoreOrigin records which retrieval signals contributed to a result.
type ScoreOrigin string

const (
	OriginVector  ScoreOrigin = "vector"
	OriginLexical ScoreOrigin = "lexical"
	OriginFused   ScoreOrigin = "fused"
)

// SearchResult is a single retrieved chunk with relevance information.
type SearchResult struct {
	Chunk *Chunk
	Rank  int // position in the result set, 1-based

	// Score is the chunk's raw score when only one signal matched, or the
	// arithmetic mean of the vector and lexical scores when both did. The
	// two input scales (cosine similarity vs. BM25) are not normalized
	// against each other; see the retriever package for the contract.
	Score  float64
	Origin ScoreOrigin
}
