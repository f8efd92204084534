package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	byChunkID map[string]string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		byChunkID: make(map[string]string),
	}
}

// ReplaceDocument stores a document and its chunks, dropping the previous
// generation's chunks.
func (s *DocumentStore) ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Sequence < stored[j].Sequence })

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chunks[doc.ID] {
		delete(s.byChunkID, c.ID)
	}
	s.documents[doc.ID] = *doc
	s.chunks[doc.ID] = stored
	for _, c := range stored {
		s.byChunkID[c.ID] = doc.ID
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document in sequence order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docID, ok := s.byChunkID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, chunk := range s.chunks[docID] {
		if chunk.ID == id {
			return &chunk, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chunks[id] {
		delete(s.byChunkID, c.ID)
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns every document ordered by ID, without raw bytes.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return s.list(func(domain.Document) bool { return true }), nil
}

// ListByTicker returns documents associated with a ticker, ignoring case.
func (s *DocumentStore) ListByTicker(_ context.Context, ticker string) ([]domain.Document, error) {
	return s.list(func(d domain.Document) bool {
		return d.Ticker != "" && strings.EqualFold(d.Ticker, ticker)
	}), nil
}

func (s *DocumentStore) list(keep func(domain.Document) bool) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if keep(doc) {
			doc.Raw = nil
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
