package driven

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// PostProcessor turns extracted units into chunks or refines existing chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, annotation).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document with its units and returns chunks.
	// A processor that creates chunks (e.g., chunker) receives nil chunks.
	// A processor that refines chunks receives and returns them.
	Process(ctx context.Context, doc *domain.Document, units []domain.ExtractedUnit,
		chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document, units []domain.ExtractedUnit) ([]domain.Chunk, error)
}
