package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mediarag/types"
)

// Boundary preference order: paragraph, line, sentence, word. Anything still
// too long after the last separator gets a hard rune cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter re-splits long-form text into bounded passages with overlap
// between consecutive passages.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: passage size must be positive, got %d", ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative and smaller than passage size %d", ErrConfiguration, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// SplitDocuments splits every document and carries its metadata onto each
// resulting passage. Passage indices are global across the input sequence.
func (s *Splitter) SplitDocuments(docs []types.Document) []types.Passage {
	var passages []types.Passage
	index := 0
	for _, doc := range docs {
		for _, piece := range s.SplitText(doc.Content) {
			passages = append(passages, types.Passage{
				Index:    index,
				Content:  piece,
				Metadata: copyMetadata(doc.Metadata),
			})
			index++
		}
	}
	fmt.Printf("[SPLIT] split %d documents into %d passages\n", len(docs), len(passages))
	return passages
}

// SplitText cuts text into passages of at most s.size runes each.
func (s *Splitter) SplitText(text string) []string {
	return s.merge(s.pieces(text, 0))
}

// pieces recursively breaks text at the most natural boundary available
// until every piece fits the passage size. Separators stay attached to the
// preceding piece so merged passages read as the original text.
func (s *Splitter) pieces(text string, level int) []string {
	if utf8.RuneCountInString(text) <= s.size {
		return []string{text}
	}
	if level >= len(separators) {
		return s.hardCut(text)
	}

	parts := strings.SplitAfter(text, separators[level])
	if len(parts) == 1 {
		return s.pieces(text, level+1)
	}

	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.size {
			out = append(out, s.pieces(part, level+1)...)
			continue
		}
		out = append(out, part)
	}
	return out
}

// merge packs pieces into passages as close to the size limit as the
// boundaries allow, retaining a tail of up to overlap runes as the head of
// the next passage.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var window []string
	total := 0

	emit := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			out = append(out, chunk)
		}
	}

	for _, piece := range pieces {
		length := utf8.RuneCountInString(piece)
		if total+length > s.size && total > 0 {
			emit()
			for len(window) > 0 && (total > s.overlap || total+length > s.size) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += length
	}
	emit()
	return out
}

// hardCut is the last resort for text with no usable boundaries: fixed-size
// rune windows advancing by size-overlap.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.size - s.overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+s.size, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
