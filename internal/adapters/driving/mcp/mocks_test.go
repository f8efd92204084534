package mcp

import (
	"context"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	citations []domain.Citation
	err       error
	lastText  string
	lastOpts  domain.QueryOptions
}

func (m *mockQueryService) Query(_ context.Context, text string, opts domain.QueryOptions) ([]domain.Citation, error) {
	m.lastText = text
	m.lastOpts = opts
	return m.citations, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	requests []driving.IngestRequest
	removed  []string
	id       string
	status   domain.DocumentStatus
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, reqs []driving.IngestRequest) []driving.IngestOutcome {
	out := make([]driving.IngestOutcome, len(reqs))
	for i, req := range reqs {
		id, err := m.Ingest(ctx, req)
		out[i] = driving.IngestOutcome{Name: req.Name, DocumentID: id, Err: err}
	}
	return out
}

func (m *mockIngestService) Remove(_ context.Context, documentID string) error {
	m.removed = append(m.removed, documentID)
	return m.err
}

func (m *mockIngestService) Status(documentID string) (domain.DocumentStatus, bool) {
	if m.status.DocumentID != documentID {
		return domain.DocumentStatus{}, false
	}
	return m.status, true
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	details   *driving.DocumentDetails
	err       error
	lastID    string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	m.lastID = id
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, id string) (string, error) {
	m.lastID = id
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	m.lastID = id
	return m.details, m.err
}

// mockAnalystService is a mock implementation of driving.AnalystService.
type mockAnalystService struct {
	answer   *domain.Answer
	summary  string
	entities *domain.Entities
	err      error
	lastType domain.AnalysisType
	lastOpts domain.QueryOptions
}

func (m *mockAnalystService) Ask(_ context.Context, _ string, opts domain.QueryOptions,
	analysisType domain.AnalysisType) (*domain.Answer, error) {
	m.lastType = analysisType
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockAnalystService) Summarise(_ context.Context, _ string) (string, error) {
	return m.summary, m.err
}

func (m *mockAnalystService) ExtractEntities(_ context.Context, _ string) (*domain.Entities, error) {
	return m.entities, m.err
}
