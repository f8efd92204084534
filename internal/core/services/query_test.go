package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/index/bm25"
	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/storage/memory"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func TestNewQueryService_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.QuerySettings
	}{
		{"threshold below zero", domain.QuerySettings{RelevanceThreshold: -0.1, MaxExcerptLength: 10, DefaultK: 1}},
		{"threshold above one", domain.QuerySettings{RelevanceThreshold: 1.5, MaxExcerptLength: 10, DefaultK: 1}},
		{"zero excerpt", domain.QuerySettings{MaxExcerptLength: 0, DefaultK: 1}},
		{"zero k", domain.QuerySettings{MaxExcerptLength: 10, DefaultK: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueryService(bm25.New(), memory.NewDocumentStore(), tt.settings)
			assert.ErrorIs(t, err, domain.ErrInvalidSettings)
		})
	}
}

func TestQuery_EmptyIndexIsUnavailable(t *testing.T) {
	h := newHarness(t, 100, 10)

	_, err := h.query.Query(context.Background(), "earnings", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQuery_OrderedByRelevance(t *testing.T) {
	h := newHarness(t, 1000, 0)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("weak", "The board met. Dividend policy was unchanged. Capital expenditure rose."))
	require.NoError(t, err)
	_, err = h.ingest.Ingest(ctx, textRequest("strong", "Dividend declared. Dividend per share up. Dividend cover steady."))
	require.NoError(t, err)
	_, err = h.ingest.Ingest(ctx, textRequest("none", "Mining production volumes were flat."))
	require.NoError(t, err)

	citations, err := h.query.Query(ctx, "dividend", domain.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, citations, 2)

	assert.Equal(t, "strong", citations[0].DocumentID)
	assert.Equal(t, 1, citations[0].Rank)
	assert.Equal(t, "weak", citations[1].DocumentID)
	assert.Equal(t, 2, citations[1].Rank)
	assert.Greater(t, citations[0].Score, citations[1].Score)
	for _, c := range citations {
		assert.Greater(t, c.Score, 0.0)
		assert.Less(t, c.Score, 1.0)
	}
	assert.Equal(t, "strong.txt", citations[0].DocumentName)
}

func TestQuery_DefaultAndExplicitK(t *testing.T) {
	h := newHarness(t, 20, 0)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("gold", strings.Repeat("gold price ", 20)))
	require.NoError(t, err)

	citations, err := h.query.Query(ctx, "gold", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, citations, domain.DefaultAppSettings().Query.DefaultK)

	citations, err = h.query.Query(ctx, "gold", domain.QueryOptions{K: 2})
	require.NoError(t, err)
	assert.Len(t, citations, 2)
}

func TestQuery_ThresholdExcludesWeakMatches(t *testing.T) {
	index := bm25.New()
	settings := domain.DefaultAppSettings().Query
	settings.RelevanceThreshold = 0.99

	h := newHarnessWithIndex(t, index, 200, 0)
	strict, err := NewQueryService(index, h.store, settings)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = h.ingest.Ingest(ctx, textRequest("mnp", "Mondi paper and packaging volumes."))
	require.NoError(t, err)

	loose, err := h.query.Query(ctx, "packaging", domain.QueryOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, loose)

	citations, err := strict.Query(ctx, "packaging", domain.QueryOptions{})
	require.NoError(t, err)
	assert.NotNil(t, citations)
	assert.Empty(t, citations)
}

func TestQuery_NoMatchesReturnsEmpty(t *testing.T) {
	h := newHarness(t, 100, 10)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("bvt", "Bidvest services update."))
	require.NoError(t, err)

	citations, err := h.query.Query(ctx, "platinum", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, citations)
}

func TestQuery_TickerScope(t *testing.T) {
	h := newHarness(t, 200, 0)
	ctx := context.Background()

	for _, r := range []struct{ id, ticker, text string }{
		{"npn-1", "NPN", "Naspers interim results: revenue grew."},
		{"npn-2", "npn", "Naspers trading statement: revenue guidance."},
		{"pro-1", "PRX", "Prosus annual results: revenue grew."},
	} {
		req := textRequest(r.id, r.text)
		req.Ticker = r.ticker
		_, err := h.ingest.Ingest(ctx, req)
		require.NoError(t, err)
	}

	citations, err := h.query.Query(ctx, "revenue", domain.QueryOptions{Ticker: "npn"})
	require.NoError(t, err)
	require.Len(t, citations, 2)
	for _, c := range citations {
		assert.Contains(t, []string{"npn-1", "npn-2"}, c.DocumentID)
	}

	citations, err = h.query.Query(ctx, "revenue", domain.QueryOptions{Ticker: "NPN", Scope: []string{"npn-2", "pro-1"}})
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, "npn-2", citations[0].DocumentID)

	_, err = h.query.Query(ctx, "revenue", domain.QueryOptions{Ticker: "XYZ"})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	_, err = h.query.Query(ctx, "revenue", domain.QueryOptions{Ticker: "NPN", Scope: []string{"pro-1"}})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQuery_InvalidTicker(t *testing.T) {
	h := newHarness(t, 100, 10)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("a", "Some filing."))
	require.NoError(t, err)

	_, err = h.query.Query(ctx, "filing", domain.QueryOptions{Ticker: "naspers"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQuery_UnknownScopeIsUnavailable(t *testing.T) {
	h := newHarness(t, 100, 10)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("a", "Some filing."))
	require.NoError(t, err)

	_, err = h.query.Query(ctx, "filing", domain.QueryOptions{Scope: []string{"a", "b"}})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQuery_Cancelled(t *testing.T) {
	h := newHarness(t, 100, 10)
	ctx := context.Background()
	_, err := h.ingest.Ingest(ctx, textRequest("a", "Some filing."))
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = h.query.Query(cctx, "filing", domain.QueryOptions{})
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuery_RecordsMetrics(t *testing.T) {
	m := &recordingMetrics{}
	index := bm25.New()
	store := memory.NewDocumentStore()
	svc, err := NewQueryService(index, store, domain.DefaultAppSettings().Query, WithQueryMetrics(m))
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), "anything", domain.QueryOptions{})
	require.Error(t, err)

	require.Len(t, m.queries, 1)
	assert.ErrorIs(t, m.queries[0], domain.ErrIndexUnavailable)
}
