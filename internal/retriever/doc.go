// Package retriever fuses vector-similarity and lexical results into one
// ranked sequence over a point-in-time index snapshot.
//
// # Signals
//
// The vector signal embeds the query and ranks chunks by cosine similarity
// computed in Go over the snapshot's in-memory vectors. The lexical signal
// is an in-memory BM25 index (k1=1.2, b=0.75) built lazily from the
// snapshot's chunks on the first query.
//
// # Fusion
//
// The top-k sets from both signals are unioned by chunk identity. A chunk
// present in one set keeps its raw score; a chunk present in both gets the
// arithmetic mean of its two raw scores. Cosine similarity and BM25 live on
// different, non-comparable scales and the mean is taken anyway — this is a
// known weakness preserved on purpose, not an oversight to fix silently.
// The ordering contract: descending by fused score, ties ascending by
// chunk ID; at most 2k results.
//
// # Snapshot binding
//
// A Retriever is bound to one snapshot at construction and never sees later
// updates. Retrieving from an empty snapshot returns an empty result;
// constructing without a snapshot fails the call with ErrNotLoaded.
package retriever
