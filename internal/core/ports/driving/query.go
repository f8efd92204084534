package driving

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// QueryService retrieves cited passages for a query.
type QueryService interface {
	// Query returns citations ordered by descending relevance.
	// Returns an empty slice when nothing clears the relevance threshold,
	// and domain.ErrIndexUnavailable when the scope has not been indexed.
	Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.Citation, error)
}
