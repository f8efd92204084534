package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWorkers bounds IngestBatch when no worker count is configured.
const DefaultWorkers = 4

// IngestService runs documents through extraction, chunking and indexing.
//
// Work on one document ID is serialised; distinct IDs proceed in parallel.
// A document's chunks become visible to queries in a single index commit,
// after the store holds the same generation.
type IngestService struct {
	registry driven.ExtractorRegistry
	pipeline driven.PostProcessorPipeline
	docStore driven.DocumentStore
	index    driven.Index
	events   driven.EventPublisher
	metrics  driven.PipelineMetrics
	workers  int
	now      func() time.Time

	locks *keyedMutex

	mu       sync.RWMutex
	statuses map[string]domain.DocumentStatus
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithEvents publishes every state transition.
func WithEvents(p driven.EventPublisher) IngestOption {
	return func(s *IngestService) {
		s.events = p
	}
}

// WithIngestMetrics records ingest instrumentation.
func WithIngestMetrics(m driven.PipelineMetrics) IngestOption {
	return func(s *IngestService) {
		s.metrics = m
	}
}

// WithWorkers bounds the number of documents IngestBatch processes at once.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewIngestService creates an ingest service.
func NewIngestService(
	registry driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	docStore driven.DocumentStore,
	index driven.Index,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		registry: registry,
		pipeline: pipeline,
		docStore: docStore,
		index:    index,
		workers:  DefaultWorkers,
		now:      time.Now,
		locks:    newKeyedMutex(),
		statuses: make(map[string]domain.DocumentStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest extracts, chunks and indexes one document.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (string, error) {
	start := s.now()
	id, chunks, err := s.ingest(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveIngest(ResultKind(err), time.Since(start), chunks)
	}
	return id, err
}

//nolint:gocyclo // Sequential pipeline stages with rollback on each failure.
func (s *IngestService) ingest(ctx context.Context, req driving.IngestRequest) (string, int, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.New().String()
	}

	ticker, err := NormaliseTicker(req.Ticker)
	if err != nil {
		return id, 0, fmt.Errorf("ingest %s: %w", id, err)
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return id, 0, cancelled("ingest", err)
	}
	defer unlock()

	logger.Section("Ingest " + id)

	if err := ctx.Err(); err != nil {
		return id, 0, cancelled("ingest", err)
	}

	prev, err := s.docStore.GetDocument(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		prev = nil
	case err != nil:
		return id, 0, fmt.Errorf("load previous generation: %w", err)
	}

	doc := &domain.Document{
		ID:         id,
		Name:       req.Name,
		MIMEType:   s.registry.ResolveMIME(req.Name, req.MIMEType, req.Content),
		Raw:        req.Content,
		Ticker:     ticker,
		Generation: 1,
		Metadata:   make(map[string]any),
		IngestedAt: s.now().UTC(),
	}
	if prev != nil {
		doc.Generation = prev.Generation + 1
	}
	logger.Debug("Name: %q, MIME: %q, generation: %d, %d bytes", doc.Name, doc.MIMEType, doc.Generation, len(doc.Raw))

	// Extract.
	s.transition(doc, domain.StateExtracting, nil, 0)
	done := logger.Stage("extract")
	extraction, err := s.registry.Extract(ctx, doc)
	done()
	if err != nil {
		return id, 0, s.fail(ctx, doc, domain.StateExtracting, "extract", err)
	}
	doc.Content = extraction.Text()
	maps.Copy(doc.Metadata, extraction.Metadata)
	maps.Copy(doc.Metadata, req.Metadata)
	logger.Debug("Extracted %d units, %d characters", len(extraction.Units), len([]rune(doc.Content)))

	// Chunk.
	s.transition(doc, domain.StateChunking, nil, 0)
	done = logger.Stage("chunk")
	chunks, err := s.pipeline.Process(ctx, doc, extraction.Units)
	done()
	if err != nil {
		return id, 0, s.fail(ctx, doc, domain.StateChunking, "chunk", err)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	// Stage the new entry set.
	batch := s.index.Begin(driven.IndexedDocument{ID: id, Name: doc.DisplayName(), Generation: doc.Generation})
	defer batch.Discard()
	for _, c := range chunks {
		if err := batch.Add(ctx, c); err != nil {
			return id, 0, s.fail(ctx, doc, domain.StateChunking, "stage chunks", err)
		}
	}

	var prevChunks []domain.Chunk
	if prev != nil {
		if prevChunks, err = s.docStore.GetChunks(ctx, id); err != nil {
			return id, 0, s.fail(ctx, doc, domain.StateChunking, "load previous chunks", err)
		}
	}

	if err := s.docStore.ReplaceDocument(ctx, doc, chunks); err != nil {
		return id, 0, s.fail(ctx, doc, domain.StateChunking, "store document", err)
	}
	s.transition(doc, domain.StateIndexed, nil, len(chunks))

	// Publish.
	if err := batch.Commit(ctx); err != nil {
		err = errors.Join(err, s.restore(ctx, id, prev, prevChunks))
		return id, 0, s.fail(ctx, doc, domain.StateIndexed, "commit index", err)
	}
	s.transition(doc, domain.StateQueryable, nil, len(chunks))

	logger.Info("Ingested %s (generation %d, %d chunks)", id, doc.Generation, len(chunks))
	return id, len(chunks), nil
}

// restore puts the store back to the previous generation after a failed commit.
func (s *IngestService) restore(ctx context.Context, id string, prev *domain.Document, chunks []domain.Chunk) error {
	ctx = context.WithoutCancel(ctx)
	if prev == nil {
		if err := s.docStore.DeleteDocument(ctx, id); err != nil {
			return fmt.Errorf("rollback delete: %w", err)
		}
		return nil
	}
	if err := s.docStore.ReplaceDocument(ctx, prev, chunks); err != nil {
		return fmt.Errorf("rollback restore generation %d: %w", prev.Generation, err)
	}
	return nil
}

// fail records a failed stage and wraps err for the caller.
func (s *IngestService) fail(ctx context.Context, doc *domain.Document, state domain.PipelineState,
	op string, err error) error {
	if ctx.Err() != nil {
		err = cancelled(op, ctx.Err())
	} else {
		err = fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("Ingest %s failed while %s: %v", doc.ID, state, err)
	s.transition(doc, state, err, 0)
	return err
}

func (s *IngestService) transition(doc *domain.Document, state domain.PipelineState, err error, chunks int) {
	status := domain.DocumentStatus{
		DocumentID: doc.ID,
		State:      state,
		Generation: doc.Generation,
		Err:        err,
		UpdatedAt:  s.now(),
	}

	s.mu.Lock()
	s.statuses[doc.ID] = status
	s.mu.Unlock()

	logger.Debug("%s -> %s", doc.ID, state)
	if s.events != nil {
		s.events.Publish(domain.StatusEvent{Status: status, Chunks: chunks})
	}
}

// IngestBatch ingests requests in parallel, bounded by the worker count.
// A failure does not stop the other requests.
func (s *IngestService) IngestBatch(ctx context.Context, reqs []driving.IngestRequest) []driving.IngestOutcome {
	outcomes := make([]driving.IngestOutcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			id, err := s.Ingest(ctx, req)
			outcomes[i] = driving.IngestOutcome{Name: req.Name, DocumentID: id, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Remove drops a document from the index and the store.
func (s *IngestService) Remove(ctx context.Context, documentID string) error {
	unlock, err := s.locks.Lock(ctx, documentID)
	if err != nil {
		return cancelled("remove", err)
	}
	defer unlock()

	if err := ctx.Err(); err != nil {
		return cancelled("remove", err)
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("remove %s: %w", documentID, err)
	}

	if err := s.index.Remove(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("remove %s from index: %w", documentID, err)
	}

	if err := s.docStore.DeleteDocument(context.WithoutCancel(ctx), documentID); err != nil {
		err = fmt.Errorf("remove %s from store: %w", documentID, err)
		return errors.Join(err, s.reindex(context.WithoutCancel(ctx), doc))
	}

	s.mu.Lock()
	delete(s.statuses, documentID)
	s.mu.Unlock()

	if s.events != nil {
		s.events.Publish(domain.StatusEvent{Status: domain.DocumentStatus{
			DocumentID: documentID,
			State:      domain.StateEmpty,
			Generation: doc.Generation,
			UpdatedAt:  s.now(),
		}})
	}

	logger.Info("Removed %s", documentID)
	return nil
}

// Status returns the last recorded pipeline state of a document.
func (s *IngestService) Status(documentID string) (domain.DocumentStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[documentID]
	return status, ok
}

// Restore rebuilds the index from the document store. It is used at start-up
// when documents persist across runs. Returns the number of documents loaded.
func (s *IngestService) Restore(ctx context.Context) (int, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return i, cancelled("restore", err)
		}
		unlock, err := s.locks.Lock(ctx, docs[i].ID)
		if err != nil {
			return i, cancelled("restore", err)
		}
		err = s.reindex(ctx, &docs[i])
		unlock()
		if err != nil {
			return i, err
		}
	}

	logger.Debug("Restored %d documents into the index", len(docs))
	return len(docs), nil
}

// reindex loads a document's stored chunks into the index.
// Caller must hold the document's lock.
func (s *IngestService) reindex(ctx context.Context, doc *domain.Document) error {
	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load chunks for %s: %w", doc.ID, err)
	}

	batch := s.index.Begin(driven.IndexedDocument{ID: doc.ID, Name: doc.DisplayName(), Generation: doc.Generation})
	defer batch.Discard()
	for _, c := range chunks {
		if err := batch.Add(ctx, c); err != nil {
			return fmt.Errorf("reindex %s: %w", doc.ID, err)
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("reindex %s: %w", doc.ID, err)
	}

	s.transition(doc, domain.StateQueryable, nil, len(chunks))
	return nil
}

// ResultKind classifies an ingest error for metrics labels.
func ResultKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCancelled):
		return "cancelled"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, domain.ErrCorruptInput):
		return "corrupt_input"
	case errors.Is(err, domain.ErrInvalidChunkConfig):
		return "invalid_chunk_config"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
