package annotator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "annotator", New().Name())
}

func TestProcessor_Process(t *testing.T) {
	doc := &domain.Document{ID: "d1", Name: "results.xlsx", MIMEType: "application/xlsx", Ticker: "SBK"}
	chunks := []domain.Chunk{
		{ID: "c1", Locator: domain.Locator{Kind: domain.LocatorSheet, Sheet: "Income", RowStart: 1, RowEnd: 3}},
		{ID: "c2", Metadata: map[string]any{"existing": true}},
	}

	out, err := New().Process(context.Background(), doc, nil, chunks)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "results.xlsx", out[0].Metadata[KeyDocumentName])
	assert.Equal(t, "SBK", out[0].Metadata[KeyTicker])
	assert.Equal(t, "application/xlsx", out[0].Metadata[KeyMIMEType])
	assert.Equal(t, "Income rows 1-3", out[0].Metadata[KeyLocator])
	assert.Equal(t, true, out[1].Metadata["existing"])
}

func TestProcessor_Process_NoTicker(t *testing.T) {
	out, err := New().Process(context.Background(), &domain.Document{ID: "d1"}, nil, []domain.Chunk{{ID: "c1"}})
	require.NoError(t, err)

	_, ok := out[0].Metadata[KeyTicker]
	assert.False(t, ok)
	assert.Equal(t, "d1", out[0].Metadata[KeyDocumentName])
}
