// Package plaintext provides the fallback Extractor for plain text documents.
package plaintext

import (
	"context"
	"fmt"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/extractors/textutil"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-log",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract returns the document text as a single unit.
// The text must be valid UTF-8; a byte order mark is dropped and line
// endings are normalised.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (*driven.Extraction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, ok := textutil.DecodeText(doc.Raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrCorruptInput, doc.DisplayName())
	}

	result := &driven.Extraction{
		Metadata: map[string]any{
			"title":  textutil.TitleFromName(doc.DisplayName()),
			"format": "text",
		},
	}
	if text != "" {
		result.Units = []domain.ExtractedUnit{{
			Text:    text,
			Locator: domain.Locator{Kind: domain.LocatorDocument},
		}}
	}

	return result, nil
}
