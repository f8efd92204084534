package driving

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// IngestService runs documents through the extract, chunk and index pipeline.
type IngestService interface {
	// Ingest extracts, chunks and indexes one document, superseding any
	// prior generation with the same ID. Returns the document ID.
	// Ingest is all-or-nothing: on error the index is unchanged.
	Ingest(ctx context.Context, req IngestRequest) (string, error)

	// IngestBatch ingests independent documents in parallel. One outcome is
	// returned per request, in request order.
	IngestBatch(ctx context.Context, reqs []IngestRequest) []IngestOutcome

	// Remove drops a document from the index and the store.
	// Returns domain.ErrNotFound if the document does not exist.
	Remove(ctx context.Context, documentID string) error

	// Status returns the pipeline state of a document.
	Status(documentID string) (domain.DocumentStatus, bool)
}

// IngestRequest carries a document into the pipeline.
type IngestRequest struct {
	// ID is the stable document ID. Empty generates one.
	ID string

	// Name is the display name, usually the file name.
	Name string

	// MIMEType is the declared type. Empty detects it from Name and Content.
	MIMEType string

	// Ticker optionally associates the document with a JSE ticker.
	Ticker string

	// Content is the raw document bytes.
	Content []byte

	// Metadata is copied onto the document.
	Metadata map[string]any
}

// IngestOutcome reports the result of one request in a batch.
type IngestOutcome struct {
	Name       string
	DocumentID string
	Err        error
}
