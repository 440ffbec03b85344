package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/nodeeeeee/idea-producer/internal/config"
	"github.com/nodeeeeee/idea-producer/internal/embedder"
	"github.com/nodeeeeee/idea-producer/internal/index"
	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// Common errors
var (
	ErrNotLoaded  = errors.New("retriever: no snapshot loaded")
	ErrEmptyQuery = errors.New("retriever: query cannot be empty")
)

// Retriever answers hybrid queries against one snapshot. It is bound to the
// snapshot at construction time and never observes later store updates:
// queries always run against a stable point-in-time view.
type Retriever struct {
	snap     *index.Snapshot
	embedder embedder.Embedder
	topK     int
	logger   *slog.Logger

	lexOnce sync.Once
	lex     *lexicalIndex
}

// New creates a Retriever over snap. The default result count comes from
// the explicit config value.
func New(snap *index.Snapshot, emb embedder.Embedder, cfg config.Config, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		snap:     snap,
		embedder: emb,
		topK:     cfg.TopK,
		logger:   logger,
	}
}

// Retrieve returns up to 2k chunks ranked by fused relevance: the top-k
// vector-similarity matches and the top-k lexical matches are unioned by
// chunk identity. A chunk found by one signal keeps its raw score; a chunk
// found by both gets the arithmetic mean of the two raw scores. The two
// scales (cosine similarity vs. BM25) are deliberately not normalized
// against each other; this mirrors the established fusion behavior and is
// part of the documented contract. Equal fused scores break ascending by
// chunk ID.
//
// An empty snapshot yields an empty result and no error; only a retriever
// constructed without a snapshot is an error state.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	if r.snap == nil {
		return nil, ErrNotLoaded
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = r.topK
	}

	if r.snap.ChunkCount() == 0 {
		return []types.SearchResult{}, nil
	}

	vecMatches, err := r.vectorTopK(ctx, query, k)
	if err != nil {
		return nil, err
	}

	r.lexOnce.Do(func() { r.lex = buildLexical(r.snap) })
	lexMatches := r.lex.topK(query, k)

	results := fuse(vecMatches, lexMatches)
	for i := range results {
		results[i].Chunk = r.snap.Chunks[results[i].Chunk.ID]
		results[i].Rank = i + 1
	}

	r.logger.Debug("retrieve",
		"query", query,
		"vector_matches", len(vecMatches),
		"lexical_matches", len(lexMatches),
		"results", len(results))
	return results, nil
}

// vectorTopK embeds the query and ranks every chunk by cosine similarity.
func (r *Retriever) vectorTopK(ctx context.Context, query string, k int) ([]scoredChunk, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches := make([]scoredChunk, 0, r.snap.ChunkCount())
	for _, id := range r.snap.SortedChunkIDs() {
		chunk := r.snap.Chunks[id]
		if len(chunk.Vector) != len(queryVec) {
			continue
		}
		matches = append(matches, scoredChunk{id: id, score: cosine(queryVec, chunk.Vector)})
	}

	sortScored(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// fuse unions the two result sets by chunk identity and orders them by
// fused score.
func fuse(vecMatches, lexMatches []scoredChunk) []types.SearchResult {
	type fusedScore struct {
		vec, lex float64
		hasVec   bool
		hasLex   bool
	}

	scores := make(map[string]*fusedScore, len(vecMatches)+len(lexMatches))
	for _, m := range vecMatches {
		scores[m.id] = &fusedScore{vec: m.score, hasVec: true}
	}
	for _, m := range lexMatches {
		if f, ok := scores[m.id]; ok {
			f.lex = m.score
			f.hasLex = true
		} else {
			scores[m.id] = &fusedScore{lex: m.score, hasLex: true}
		}
	}

	results := make([]types.SearchResult, 0, len(scores))
	for id, f := range scores {
		res := types.SearchResult{Chunk: &types.Chunk{ID: id}}
		switch {
		case f.hasVec && f.hasLex:
			res.Score = (f.vec + f.lex) / 2
			res.Origin = types.OriginFused
		case f.hasVec:
			res.Score = f.vec
			res.Origin = types.OriginVector
		default:
			res.Score = f.lex
			res.Origin = types.OriginLexical
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	return results
}

// cosine computes cosine similarity between two vectors of equal length.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0
	}
	return dot / den
}
