package driven

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// Index stores chunk entries and answers ranked keyword queries.
//
// Every write is visible to Search as soon as it returns. A Search sees one
// consistent snapshot: for any document it observes either the entries
// before a concurrent write or after it, never a mixture.
//
// Operations honour ctx and fail with an error wrapping domain.ErrCancelled
// and the context error, leaving no partial state.
type Index interface {
	// Index adds or replaces a single chunk entry by chunk ID.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Begin stages a complete new entry set for a document. Nothing is
	// visible until the batch is committed.
	Begin(doc IndexedDocument) IndexBatch

	// Remove drops every entry for a document.
	// Returns domain.ErrNotFound if the document has no entries.
	Remove(ctx context.Context, documentID string) error

	// Search returns ranked chunks. Returns domain.ErrIndexUnavailable if
	// a scoped document is not indexed, or if the index is empty and no
	// scope is given.
	Search(ctx context.Context, query string, opts IndexSearchOptions) (domain.RetrievalResult, error)

	// Has reports whether a document has entries.
	Has(documentID string) bool

	// Stats reports index size.
	Stats() IndexStats
}

// IndexBatch replaces one document's entries atomically.
type IndexBatch interface {
	// Add stages a chunk. Adding the same chunk ID twice keeps the last.
	Add(ctx context.Context, chunk domain.Chunk) error

	// Commit swaps the document's entries for the staged set.
	Commit(ctx context.Context) error

	// Discard drops the staged set. Safe to call after Commit.
	Discard()
}

// IndexedDocument identifies the document a batch belongs to.
type IndexedDocument struct {
	ID         string
	Name       string
	Generation int64
}

// IndexSearchOptions configures a search.
type IndexSearchOptions struct {
	// Scope restricts results to these document IDs. Empty means all.
	Scope []string

	// K is the maximum number of results.
	K int

	// Threshold is the score a result must exceed.
	Threshold float64
}

// IndexStats reports index size.
type IndexStats struct {
	Documents int
	Chunks    int
	Terms     int
}
