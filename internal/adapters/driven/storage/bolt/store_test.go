package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testDocument(id string, gen int64) *domain.Document {
	return &domain.Document{
		ID:         id,
		Name:       id + ".pdf",
		MIMEType:   "application/pdf",
		Raw:        []byte("%PDF-1.7 bytes"),
		Content:    "Headline earnings rose",
		Ticker:     "SBK",
		Generation: gen,
		Metadata:   map[string]any{"page_count": float64(12)},
		IngestedAt: time.Date(2025, 2, 14, 8, 0, 0, 0, time.UTC),
	}
}

func testChunks(docID string, gen int64, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-g%d-%d", docID, gen, i),
			DocumentID: docID,
			Generation: gen,
			Content:    fmt.Sprintf("page %d", i+1),
			Start:      i * 5,
			End:        i*5 + 6,
			Locator:    domain.Locator{Kind: domain.LocatorPage, Page: i + 1},
			Sequence:   i,
		}
	}
	return chunks
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
}

func TestStore_ReplaceAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	doc := testDocument("sbk-ar", 1)
	require.NoError(t, store.ReplaceDocument(ctx, doc, testChunks("sbk-ar", 1, 300)))

	got, err := store.GetDocument(ctx, "sbk-ar")
	require.NoError(t, err)
	assert.Equal(t, doc.Raw, got.Raw)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, "SBK", got.Ticker)
	assert.Equal(t, float64(12), got.Metadata["page_count"])
	assert.True(t, doc.IngestedAt.Equal(got.IngestedAt))

	chunks, err := store.GetChunks(ctx, "sbk-ar")
	require.NoError(t, err)
	require.Len(t, chunks, 300)
	for i, c := range chunks {
		assert.Equal(t, i, c.Sequence, "chunks iterate in sequence order")
	}
	assert.Equal(t, "p. 257", chunks[256].Locator.String())
}

func TestStore_ReplaceSwapsChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	old := testChunks("doc", 1, 3)
	require.NoError(t, store.ReplaceDocument(ctx, testDocument("doc", 1), old))
	require.NoError(t, store.ReplaceDocument(ctx, testDocument("doc", 2), testChunks("doc", 2, 1)))

	chunks, err := store.GetChunks(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, int64(2), chunks[0].Generation)

	_, err = store.GetChunk(ctx, old[2].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c, err := store.GetChunk(ctx, "doc-g2-0")
	require.NoError(t, err)
	assert.Equal(t, "page 1", c.Content)
}

func TestStore_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := testChunks("doc", 1, 2)
	require.NoError(t, store.ReplaceDocument(ctx, testDocument("doc", 1), chunks))
	require.NoError(t, store.DeleteDocument(ctx, "doc"))

	_, err := store.GetDocument(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, chunks[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.DeleteDocument(ctx, "doc"))
}

func TestStore_Lists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	other := testDocument("npn-ar", 1)
	other.Ticker = "NPN"
	require.NoError(t, store.ReplaceDocument(ctx, testDocument("sbk-ar", 1), nil))
	require.NoError(t, store.ReplaceDocument(ctx, other, nil))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "npn-ar", docs[0].ID)
	assert.Nil(t, docs[0].Raw)

	docs, err = store.ListByTicker(ctx, "npn")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "npn-ar", docs[0].ID)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.ReplaceDocument(ctx, testDocument("doc", 1), testChunks("doc", 1, 2)))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	chunks, err := second.GetChunks(ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}
