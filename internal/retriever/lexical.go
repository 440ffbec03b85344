package retriever

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/nodeeeeee/idea-producer/internal/index"
)

// BM25 parameters, standard values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// scoredChunk pairs a chunk ID with a raw signal score.
type scoredChunk struct {
	id    string
	score float64
}

// lexicalIndex is an in-memory BM25 index over every chunk in a snapshot.
// It is built lazily the first time a retriever needs it and is immutable
// afterwards.
type lexicalIndex struct {
	ids      []string         // chunk IDs in lexicographic order
	termFreq []map[string]int // per chunk, term -> occurrences
	docLen   []int
	docFreq  map[string]int // term -> number of chunks containing it
	avgLen   float64
}

// buildLexical indexes the snapshot's chunks. Zero chunks yields a valid
// empty index that scores nothing.
func buildLexical(snap *index.Snapshot) *lexicalIndex {
	ids := snap.SortedChunkIDs()

	ix := &lexicalIndex{
		ids:      ids,
		termFreq: make([]map[string]int, len(ids)),
		docLen:   make([]int, len(ids)),
		docFreq:  make(map[string]int),
	}

	total := 0
	for i, id := range ids {
		terms := tokenizeQuery(snap.Chunks[id].Text)
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		ix.termFreq[i] = tf
		ix.docLen[i] = len(terms)
		total += len(terms)
		for t := range tf {
			ix.docFreq[t]++
		}
	}
	if len(ids) > 0 {
		ix.avgLen = float64(total) / float64(len(ids))
	}
	return ix
}

// topK returns the k best chunks for the query by BM25 relevance. Chunks
// that match no query term are omitted; an empty index returns an empty
// slice. Ties break ascending by chunk ID.
func (ix *lexicalIndex) topK(query string, k int) []scoredChunk {
	terms := tokenizeQuery(query)
	if len(terms) == 0 || len(ix.ids) == 0 {
		return nil
	}

	n := float64(len(ix.ids))
	var matches []scoredChunk
	for i, id := range ix.ids {
		var score float64
		for _, t := range terms {
			tf := ix.termFreq[i][t]
			if tf == 0 {
				continue
			}
			df := float64(ix.docFreq[t])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - bm25B + bm25B*float64(ix.docLen[i])/ix.avgLen
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
		if score > 0 {
			matches = append(matches, scoredChunk{id: id, score: score})
		}
	}

	sortScored(matches)
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// sortScored orders by score descending, then chunk ID ascending so equal
// scores resolve deterministically.
func sortScored(s []scoredChunk) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].score != s[j].score {
			return s[i].score > s[j].score
		}
		return s[i].id < s[j].id
	})
}

// tokenizeQuery lowercases and splits on anything that is not a letter,
// digit, or underscore. The same tokenization is applied to chunk text and
// queries.
func tokenizeQuery(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
