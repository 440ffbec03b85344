package chunker

import (
	"fmt"
	"unicode"

	"github.com/pkoukk/tiktoken-go"

	"github.com/nodeeeeee/idea-producer/internal/config"
)

// Tokenizer splits text into token units. The split must be lossless:
// concatenating the units in order reproduces the input exactly, so spans
// windowed over units are contiguous slices of the original text.
type Tokenizer interface {
	Split(text string) []string
	Name() string
}

// NewTokenizer constructs the tokenizer named in the configuration. The
// variant is selected explicitly here, never by runtime type inspection.
func NewTokenizer(cfg config.Config) (Tokenizer, error) {
	switch cfg.Tokenizer {
	case config.TokenizerTiktoken:
		return newTiktokenTokenizer()
	case config.TokenizerWords:
		return wordTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", cfg.Tokenizer)
	}
}

// tiktokenTokenizer uses the cl100k_base BPE encoding. One unit per BPE
// token, matching how embedding models count input length.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func newTiktokenTokenizer() (*tiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Split(text string) []string {
	ids := t.enc.Encode(text, nil, nil)
	units := make([]string, len(ids))
	for i, id := range ids {
		units[i] = t.enc.Decode([]int{id})
	}
	return units
}

func (t *tiktokenTokenizer) Name() string { return config.TokenizerTiktoken }

// wordTokenizer is the deterministic offline fallback. A unit is a maximal
// run of non-space characters together with the whitespace that follows it;
// leading whitespace forms a unit of its own.
type wordTokenizer struct{}

func (wordTokenizer) Split(text string) []string {
	if text == "" {
		return nil
	}

	var units []string
	runes := []rune(text)
	i := 0

	if unicode.IsSpace(runes[0]) {
		j := 0
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		units = append(units, string(runes[:j]))
		i = j
	}

	for i < len(runes) {
		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		units = append(units, string(runes[i:j]))
		i = j
	}

	return units
}

func (wordTokenizer) Name() string { return config.TokenizerWords }
