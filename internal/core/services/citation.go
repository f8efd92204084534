package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// CitationComposer turns ranked chunks into presentable citations.
type CitationComposer struct {
	maxExcerptLength int
}

// NewCitationComposer creates a composer that bounds excerpts to
// maxExcerptLength characters.
func NewCitationComposer(maxExcerptLength int) (*CitationComposer, error) {
	if maxExcerptLength <= 0 {
		return nil, fmt.Errorf("%w: max excerpt length %d must be positive",
			domain.ErrInvalidSettings, maxExcerptLength)
	}
	return &CitationComposer{maxExcerptLength: maxExcerptLength}, nil
}

// Compose returns one citation per result, in result order. Ranks start at 1.
func (c *CitationComposer) Compose(results domain.RetrievalResult) []domain.Citation {
	citations := make([]domain.Citation, len(results))
	for i, r := range results {
		excerpt, truncated := Excerpt(r.Chunk.Content, c.maxExcerptLength)

		name := r.DocumentName
		if name == "" {
			name = r.Chunk.DocumentID
		}

		citations[i] = domain.Citation{
			Rank:         i + 1,
			DocumentID:   r.Chunk.DocumentID,
			DocumentName: name,
			Locator:      r.Chunk.Locator,
			Excerpt:      excerpt,
			Truncated:    truncated,
			Score:        r.Score,
			ChunkID:      r.Chunk.ID,
			Sequence:     r.Chunk.Sequence,
			Start:        r.Chunk.Start,
			End:          r.Chunk.End,
		}
	}
	return citations
}

// Excerpt trims text and bounds it to maxLen characters, cutting at the last
// whitespace inside the limit. A first word longer than maxLen is cut at
// maxLen. The boolean reports whether text was cut.
func Excerpt(text string, maxLen int) (string, bool) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLen {
		return string(runes), false
	}

	cut := maxLen
	if !unicode.IsSpace(runes[maxLen]) {
		for i := maxLen - 1; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}

	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace), true
}
