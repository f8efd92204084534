package driving

import (
	"context"
	"time"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// DocumentService lists and inspects ingested documents.
type DocumentService interface {
	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the extracted text of a document.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// Name is the display name.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Ticker is the associated JSE ticker, if any.
	Ticker string

	// Generation is the current ingest generation.
	Generation int64

	// State is the pipeline state.
	State domain.PipelineState

	// ChunkCount is the number of chunks.
	ChunkCount int

	// Length is the extracted text length in characters.
	Length int

	// IngestedAt is when the current generation was ingested.
	IngestedAt time.Time

	// Metadata contains flattened key-value pairs for display.
	Metadata map[string]string
}
