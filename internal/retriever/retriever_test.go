package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeeeeee/idea-producer/internal/config"
	"github.com/nodeeeeee/idea-producer/internal/embedder"
	"github.com/nodeeeeee/idea-producer/internal/index"
	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// fixedEmbedder returns the same vector for every input, so tests control
// the vector signal exactly.
type fixedEmbedder struct {
	vec []float32
}

func (f fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}

func (f fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f fixedEmbedder) Dimension() int   { return len(f.vec) }
func (f fixedEmbedder) Provider() string { return "fixed" }
func (f fixedEmbedder) Close() error     { return nil }

func testSnapshot(chunks ...*types.Chunk) *index.Snapshot {
	snap := index.NewSnapshot(2)
	byDoc := make(map[string][]*types.Chunk)
	for _, c := range chunks {
		byDoc[c.DocPath] = append(byDoc[c.DocPath], c)
	}
	for path, cs := range byDoc {
		doc := &types.Document{Path: path, ContentHash: "h"}
		for _, c := range cs {
			doc.ChunkIDs = append(doc.ChunkIDs, c.ID)
		}
		snap.ReplaceDocument(doc, cs)
	}
	return snap
}

func chunkOf(path string, seq int, text string, vec []float32) *types.Chunk {
	return &types.Chunk{
		ID:      types.ChunkID(path, seq),
		DocPath: path,
		Seq:     seq,
		Text:    text,
		Vector:  vec,
	}
}

func newRetriever(snap *index.Snapshot, emb embedder.Embedder) *Retriever {
	cfg := config.Default()
	cfg.TopK = 5
	return New(snap, emb, cfg, nil)
}

func TestRetrieveNilSnapshot(t *testing.T) {
	r := newRetriever(nil, fixedEmbedder{vec: []float32{1, 0}})
	_, err := r.Retrieve(context.Background(), "query", 5)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r := newRetriever(testSnapshot(), fixedEmbedder{vec: []float32{1, 0}})
	_, err := r.Retrieve(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveEmptySnapshot(t *testing.T) {
	r := newRetriever(testSnapshot(), fixedEmbedder{vec: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetrieveVectorRanking(t *testing.T) {
	snap := testSnapshot(
		chunkOf("a.go", 0, "zzz", []float32{1, 0}),  // cosine 1.0 with query
		chunkOf("b.go", 0, "yyy", []float32{0, 1}),  // cosine 0.0
		chunkOf("c.go", 0, "xxx", []float32{1, 1}),  // cosine ~0.707
	)
	r := newRetriever(snap, fixedEmbedder{vec: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "unmatched terms", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a.go#0000", results[0].Chunk.ID)
	assert.Equal(t, "c.go#0000", results[1].Chunk.ID)
	assert.Equal(t, "b.go#0000", results[2].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, types.OriginVector, results[0].Origin)

	for i, res := range results {
		assert.Equal(t, i+1, res.Rank)
		assert.NotEmpty(t, res.Chunk.Text, "results must carry the full chunk")
	}
}

func TestRetrieveLexicalSignal(t *testing.T) {
	snap := testSnapshot(
		chunkOf("a.go", 0, "handles websocket upgrade requests", []float32{1, 0}),
		chunkOf("b.go", 0, "parses configuration files", []float32{1, 0}),
	)
	// Orthogonal query vector: the vector signal scores everything zero,
	// so ordering is driven by the lexical match.
	r := newRetriever(snap, fixedEmbedder{vec: []float32{0, 1}})

	results, err := r.Retrieve(context.Background(), "websocket upgrade", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "a.go#0000", results[0].Chunk.ID)
}

func TestRetrieveBoundedByTwoK(t *testing.T) {
	var chunks []*types.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunkOf("a.go", i, "shared term text", []float32{1, 0}))
	}
	r := newRetriever(testSnapshot(chunks...), fixedEmbedder{vec: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "shared", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 4, "union of two top-k lists is at most 2k")
}

func TestRetrieveDefaultK(t *testing.T) {
	snap := testSnapshot(chunkOf("a.go", 0, "text", []float32{1, 0}))
	r := newRetriever(snap, fixedEmbedder{vec: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFuseMeanOfBothSignals(t *testing.T) {
	results := fuse(
		[]scoredChunk{{id: "a.go#0000", score: 0.8}},
		[]scoredChunk{{id: "a.go#0000", score: 0.4}, {id: "b.go#0000", score: 0.3}},
	)

	require.Len(t, results, 2)

	assert.Equal(t, "a.go#0000", results[0].Chunk.ID)
	assert.InDelta(t, 0.6, results[0].Score, 1e-12, "fused score is the plain mean, applied once")
	assert.Equal(t, types.OriginFused, results[0].Origin)

	assert.Equal(t, "b.go#0000", results[1].Chunk.ID)
	assert.InDelta(t, 0.3, results[1].Score, 1e-12)
	assert.Equal(t, types.OriginLexical, results[1].Origin)
}

func TestFuseSingleSignalKeepsRawScore(t *testing.T) {
	results := fuse(
		[]scoredChunk{{id: "v.go#0000", score: 0.9}},
		nil,
	)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].Score, 1e-12)
	assert.Equal(t, types.OriginVector, results[0].Origin)
}

func TestFuseTieBreaksByChunkID(t *testing.T) {
	results := fuse(
		[]scoredChunk{
			{id: "z.go#0000", score: 0.5},
			{id: "a.go#0001", score: 0.5},
			{id: "a.go#0000", score: 0.5},
		},
		nil,
	)

	require.Len(t, results, 3)
	assert.Equal(t, "a.go#0000", results[0].Chunk.ID)
	assert.Equal(t, "a.go#0001", results[1].Chunk.ID)
	assert.Equal(t, "z.go#0000", results[2].Chunk.ID)
}

func TestRetrieverIgnoresLaterSnapshotState(t *testing.T) {
	snap := testSnapshot(chunkOf("a.go", 0, "original text", []float32{1, 0}))
	other := testSnapshot(
		chunkOf("a.go", 0, "original text", []float32{1, 0}),
		chunkOf("b.go", 0, "other text", []float32{1, 0}),
	)

	r := newRetriever(snap, fixedEmbedder{vec: []float32{1, 0}})
	results, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	rOther := newRetriever(other, fixedEmbedder{vec: []float32{1, 0}})
	resultsOther, err := rOther.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Len(t, resultsOther, 2)
}

func TestTokenizeQuery(t *testing.T) {
	assert.Equal(t,
		[]string{"fetch_user", "by", "id"},
		tokenizeQuery("Fetch_User(by: ID!)"))
	assert.Empty(t, tokenizeQuery("... !!! ---"))
}
