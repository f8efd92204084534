// Package annotator stamps chunks with document attributes used for display
// and filtering.
package annotator

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// Metadata keys written by the annotator.
const (
	KeyDocumentName = "document_name"
	KeyTicker       = "ticker"
	KeyMIMEType     = "mime_type"
	KeyLocator      = "locator"
)

// Processor copies document attributes onto each chunk's metadata.
type Processor struct{}

// New creates a new annotator.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "annotator"
}

// Process annotates chunks in place and returns them.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.ExtractedUnit,
	chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[KeyDocumentName] = doc.DisplayName()
		chunks[i].Metadata[KeyMIMEType] = doc.MIMEType
		chunks[i].Metadata[KeyLocator] = chunks[i].Locator.String()
		if doc.Ticker != "" {
			chunks[i].Metadata[KeyTicker] = doc.Ticker
		}
	}
	return chunks, nil
}
