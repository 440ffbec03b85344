package chunker

import (
	"strings"

	"github.com/nodeeeeee/idea-producer/internal/config"
)

// Span is one bounded slice of a document's text.
type Span struct {
	Text       string
	TokenCount int
}

// Splitter divides text into spans of at most chunkSize token units, with
// chunkOverlap units shared between consecutive spans. Splitting is
// deterministic: identical input and configuration always yield identical
// span boundaries, which keeps chunk IDs reproducible across runs.
type Splitter struct {
	size    int
	overlap int
	tok     Tokenizer
}

// New creates a Splitter from the configured chunk geometry and tokenizer.
func New(cfg config.Config, tok Tokenizer) *Splitter {
	return &Splitter{
		size:    cfg.ChunkSize,
		overlap: cfg.ChunkOverlap,
		tok:     tok,
	}
}

// Split returns the ordered spans of text. Empty input yields no spans.
func (s *Splitter) Split(text string) []Span {
	units := s.tok.Split(text)
	if len(units) == 0 {
		return nil
	}

	step := s.size - s.overlap
	spans := make([]Span, 0, len(units)/step+1)

	for pos := 0; ; pos += step {
		end := pos + s.size
		if end > len(units) {
			end = len(units)
		}
		spans = append(spans, Span{
			Text:       strings.Join(units[pos:end], ""),
			TokenCount: end - pos,
		})
		if end >= len(units) {
			break
		}
	}

	return spans
}
