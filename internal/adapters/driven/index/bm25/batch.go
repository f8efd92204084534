package bm25

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// errBatchClosed is returned when a batch is used after Commit or Discard.
var errBatchClosed = errors.New("index batch already closed")

// batch stages a document's replacement entry set.
type batch struct {
	index *Index
	doc   driven.IndexedDocument

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// Add stages a chunk. Tokenisation happens here so Commit holds the writer
// lock only for the swap.
func (b *batch) Add(ctx context.Context, chunk domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return cancelled("stage chunk", err)
	}
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk ID is required", domain.ErrInvalidInput)
	}
	if chunk.DocumentID != b.doc.ID {
		return fmt.Errorf("%w: chunk %s belongs to %s, not %s",
			domain.ErrInvalidInput, chunk.ID, chunk.DocumentID, b.doc.ID)
	}

	e := newEntry(chunk)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errBatchClosed
	}
	b.entries[chunk.ID] = e
	return nil
}

// Commit publishes the staged set, replacing the document's entries.
func (b *batch) Commit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errBatchClosed
	}

	if err := b.index.publish(ctx, b.doc, b.entries); err != nil {
		return err
	}
	b.closed = true
	return nil
}

// Discard drops the staged set.
func (b *batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.entries = nil
}
