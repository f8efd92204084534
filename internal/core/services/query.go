package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService retrieves ranked chunks from the index and composes citations.
type QueryService struct {
	index    driven.Index
	docStore driven.DocumentStore
	composer *CitationComposer
	settings domain.QuerySettings
	metrics  driven.PipelineMetrics
}

// QueryOption configures a QueryService.
type QueryOption func(*QueryService)

// WithQueryMetrics records query instrumentation.
func WithQueryMetrics(m driven.PipelineMetrics) QueryOption {
	return func(s *QueryService) {
		s.metrics = m
	}
}

// NewQueryService creates a query service.
// The document store is only used to resolve ticker scopes.
func NewQueryService(
	index driven.Index,
	docStore driven.DocumentStore,
	settings domain.QuerySettings,
	opts ...QueryOption,
) (*QueryService, error) {
	if settings.RelevanceThreshold < 0 || settings.RelevanceThreshold > 1 {
		return nil, fmt.Errorf("%w: relevance threshold %v must be in [0, 1]",
			domain.ErrInvalidSettings, settings.RelevanceThreshold)
	}
	if settings.DefaultK <= 0 {
		return nil, fmt.Errorf("%w: default k %d must be positive", domain.ErrInvalidSettings, settings.DefaultK)
	}

	composer, err := NewCitationComposer(settings.MaxExcerptLength)
	if err != nil {
		return nil, err
	}

	s := &QueryService{
		index:    index,
		docStore: docStore,
		composer: composer,
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Query returns citations for text ordered by descending relevance.
func (s *QueryService) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.Citation, error) {
	start := time.Now()
	citations, err := s.query(ctx, text, opts)
	if s.metrics != nil {
		s.metrics.ObserveQuery(time.Since(start), len(citations), err)
	}
	return citations, err
}

func (s *QueryService) query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.Citation, error) {
	logger.Section("Query")
	logger.Debug("Text: %q, scope: %v, ticker: %q, k: %d", text, opts.Scope, opts.Ticker, opts.K)

	if err := ctx.Err(); err != nil {
		return nil, cancelled("query", err)
	}

	k := opts.K
	if k <= 0 {
		k = s.settings.DefaultK
	}

	scope, err := s.resolveScope(ctx, opts)
	if err != nil {
		return nil, err
	}

	done := logger.Stage("search")
	results, err := s.index.Search(ctx, text, driven.IndexSearchOptions{
		Scope:     scope,
		K:         k,
		Threshold: s.settings.RelevanceThreshold,
	})
	done()
	if err != nil {
		logger.Debug("Query failed: %v", err)
		return nil, fmt.Errorf("query: %w", err)
	}

	logger.Debug("Results: %d above threshold %.3f", len(results), s.settings.RelevanceThreshold)
	return s.composer.Compose(results), nil
}

// resolveScope combines explicit document IDs with the documents of a ticker.
// When both are given only documents in both are searched.
func (s *QueryService) resolveScope(ctx context.Context, opts domain.QueryOptions) ([]string, error) {
	ticker, err := NormaliseTicker(opts.Ticker)
	if err != nil {
		return nil, err
	}
	if ticker == "" {
		return opts.Scope, nil
	}

	docs, err := s.docStore.ListByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("resolve ticker %s: %w", ticker, err)
	}

	ids := make([]string, 0, len(docs))
	if len(opts.Scope) == 0 {
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
	} else {
		inTicker := make(map[string]bool, len(docs))
		for _, d := range docs {
			inTicker[d.ID] = true
		}
		for _, id := range opts.Scope {
			if inTicker[id] {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no indexed documents for ticker %s", domain.ErrIndexUnavailable, ticker)
	}
	return ids, nil
}

// cancelled wraps a context failure as domain.ErrCancelled, keeping the
// context error visible to errors.Is.
func cancelled(op string, err error) error {
	if errors.Is(err, domain.ErrCancelled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrCancelled, err)
}
