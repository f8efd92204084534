package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

func TestDocumentService(t *testing.T) {
	h := newHarness(t, 10, 2)
	svc := NewDocumentService(h.store, h.ingest)
	ctx := context.Background()

	req := textRequest("fsr", "FirstRand normalised earnings.")
	req.Ticker = "FSR"
	req.Metadata = map[string]any{"period": "FY2024", "tags": []string{"bank", "results"}}
	_, err := h.ingest.Ingest(ctx, req)
	require.NoError(t, err)
	_, err = h.ingest.Ingest(ctx, textRequest("agl", "Anglo."))
	require.NoError(t, err)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "agl", docs[0].ID)
	assert.Equal(t, "fsr", docs[1].ID)

	doc, err := svc.Get(ctx, "fsr")
	require.NoError(t, err)
	assert.Equal(t, "FSR", doc.Ticker)

	content, err := svc.GetContent(ctx, "fsr")
	require.NoError(t, err)
	assert.Equal(t, "FirstRand normalised earnings.", content)

	details, err := svc.GetDetails(ctx, "fsr")
	require.NoError(t, err)
	assert.Equal(t, "fsr.txt", details.Name)
	assert.Equal(t, domain.StateQueryable, details.State)
	assert.Equal(t, int64(1), details.Generation)
	assert.Equal(t, 30, details.Length)
	assert.Equal(t, 4, details.ChunkCount)
	assert.Equal(t, "FY2024", details.Metadata["period"])
	assert.Equal(t, "bank, results", details.Metadata["tags"])

	_, err = svc.GetDetails(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_ReportsFailedStage(t *testing.T) {
	h := newHarness(t, 100, 10)
	svc := NewDocumentService(h.store, h.ingest)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("cls", "Clicks retail sales."))
	require.NoError(t, err)

	// A failed re-ingest leaves the stored generation queryable.
	_, err = h.ingest.Ingest(ctx, driving.IngestRequest{ID: "cls", MIMEType: "image/png", Content: []byte("x")})
	require.Error(t, err)

	details, err := svc.GetDetails(ctx, "cls")
	require.NoError(t, err)
	assert.Equal(t, domain.StateQueryable, details.State)
}

func TestDocumentService_WithoutStatuses(t *testing.T) {
	h := newHarness(t, 100, 10)
	svc := NewDocumentService(h.store, nil)
	ctx := context.Background()

	_, err := h.ingest.Ingest(ctx, textRequest("x", "text"))
	require.NoError(t, err)

	details, err := svc.GetDetails(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, domain.StateQueryable, details.State)
}

func TestMetadataKeys(t *testing.T) {
	keys := MetadataKeys(map[string]string{"title": "x", "author": "y", "pages": "3"})
	assert.Equal(t, []string{"author", "pages", "title"}, keys)
}

func TestFlattenMetadata(t *testing.T) {
	got := flattenMetadata(map[string]any{
		"s":    "text",
		"list": []any{"a", 2},
		"n":    int64(7),
	})
	assert.Equal(t, map[string]string{"s": "text", "list": "a, 2", "n": "7"}, got)
}
