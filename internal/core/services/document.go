package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// StatusSource reports pipeline state for a document.
type StatusSource interface {
	Status(documentID string) (domain.DocumentStatus, bool)
}

// DocumentService lists and inspects ingested documents.
type DocumentService struct {
	docStore driven.DocumentStore
	statuses StatusSource
}

// NewDocumentService creates a document service. statuses may be nil, in
// which case every stored document is reported as queryable.
func NewDocumentService(docStore driven.DocumentStore, statuses StatusSource) *DocumentService {
	return &DocumentService{docStore: docStore, statuses: statuses}
}

// List returns all documents ordered by ID.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the extracted text of a document.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// GetDetails returns a display view of a document.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	state := domain.StateQueryable
	if s.statuses != nil {
		if st, ok := s.statuses.Status(documentID); ok && st.Generation == doc.Generation {
			state = st.State
		}
	}

	return &driving.DocumentDetails{
		ID:         doc.ID,
		Name:       doc.DisplayName(),
		MIMEType:   doc.MIMEType,
		Ticker:     doc.Ticker,
		Generation: doc.Generation,
		State:      state,
		ChunkCount: len(chunks),
		Length:     len([]rune(doc.Content)),
		IngestedAt: doc.IngestedAt,
		Metadata:   flattenMetadata(doc.Metadata),
	}, nil
}

// flattenMetadata renders metadata values as strings for display.
func flattenMetadata(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case []string:
			out[k] = strings.Join(val, ", ")
		case []any:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			out[k] = strings.Join(parts, ", ")
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// MetadataKeys returns the keys of flattened metadata in display order.
func MetadataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
