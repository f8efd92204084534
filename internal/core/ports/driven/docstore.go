package driven

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by memory, SQLite or bbolt.
type DocumentStore interface {
	// ReplaceDocument stores a document and its chunks, replacing any prior
	// generation with the same ID and all of its chunks in one atomic step.
	ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by sequence.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by ID.
	// Raw bytes are not loaded.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListByTicker returns documents associated with a ticker.
	ListByTicker(ctx context.Context, ticker string) ([]domain.Document, error)
}
