package driving

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// AnalystService answers research questions grounded on retrieved sources.
type AnalystService interface {
	// Ask retrieves sources for the question and asks the LLM to answer
	// citing them as [Source N].
	Ask(ctx context.Context, question string, opts domain.QueryOptions,
		analysisType domain.AnalysisType) (*domain.Answer, error)

	// Summarise produces a summary of one document.
	Summarise(ctx context.Context, documentID string) (string, error)

	// ExtractEntities lists the financial entities named in one document.
	ExtractEntities(ctx context.Context, documentID string) (*domain.Entities, error)
}
