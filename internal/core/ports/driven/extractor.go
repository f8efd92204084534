package driven

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// Extractor converts document bytes into an ordered sequence of text units.
// Extraction is deterministic for identical bytes and has no side effects.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher wins).
	// Used when multiple extractors support the same MIME type.
	Priority() int

	// Extract returns the document's units in document order.
	// Returns domain.ErrCorruptInput if the bytes cannot be parsed.
	Extract(ctx context.Context, doc *domain.Document) (*Extraction, error)
}

// Extraction is the result of extracting a document.
type Extraction struct {
	// Units are the document's text spans in document order.
	Units []domain.ExtractedUnit

	// Metadata holds format attributes discovered during extraction
	// (title, page count, sheet names).
	Metadata map[string]any
}

// Text returns the concatenated text of all units.
func (e *Extraction) Text() string {
	var n int
	for _, u := range e.Units {
		n += len(u.Text)
	}
	buf := make([]byte, 0, n)
	for _, u := range e.Units {
		buf = append(buf, u.Text...)
	}
	return string(buf)
}

// ExtractorRegistry selects the appropriate extractor for a document.
type ExtractorRegistry interface {
	// Extract dispatches to the highest-priority extractor for the
	// document's MIME type. Returns domain.ErrUnsupportedFormat if none
	// matches.
	Extract(ctx context.Context, doc *domain.Document) (*Extraction, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string

	// ResolveMIME normalises a declared MIME type, detecting it from the
	// name and content when empty. Returns "" if nothing is recognised.
	ResolveMIME(name, mimeType string, content []byte) string
}
