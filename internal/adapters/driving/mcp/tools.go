package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query     string   `json:"query" jsonschema:"the research question or keywords"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of citations (default from settings)"`
	Ticker    string   `json:"ticker,omitempty" jsonschema:"restrict to documents for a JSE ticker, e.g. NPN"`
	Documents []string `json:"documents,omitempty" jsonschema:"restrict to these document IDs"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Citations []CitationOutput `json:"citations"`
	Count     int              `json:"count"`
}

// CitationOutput is one cited passage.
type CitationOutput struct {
	Source       int     `json:"source"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Location     string  `json:"location"`
	Excerpt      string  `json:"excerpt"`
	Truncated    bool    `json:"truncated,omitempty"`
	Score        float64 `json:"score"`
	ChunkID      string  `json:"chunk_id"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	ID            string `json:"id,omitempty" jsonschema:"stable document ID; re-using it replaces the previous version"`
	Name          string `json:"name" jsonschema:"file name, used to detect the format and in citations"`
	MIMEType      string `json:"mime_type,omitempty" jsonschema:"content type; detected from name when empty"`
	Ticker        string `json:"ticker,omitempty" jsonschema:"associated JSE ticker"`
	Content       string `json:"content,omitempty" jsonschema:"document text"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"binary document bytes (PDF, DOCX, XLSX) in base64"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	State      string `json:"state"`
}

// RemoveInput is the input schema for the remove tool.
type RemoveInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to remove"`
}

// RemoveOutput is the output schema for the remove tool.
type RemoveOutput struct {
	Removed bool `json:"removed"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question     string   `json:"question" jsonschema:"the research question"`
	AnalysisType string   `json:"analysis_type,omitempty" jsonschema:"general, fundamental, technical, sentiment or news"`
	Ticker       string   `json:"ticker,omitempty" jsonschema:"restrict sources to a JSE ticker"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of sources"`
	Documents    []string `json:"documents,omitempty" jsonschema:"restrict sources to these document IDs"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Model     string           `json:"model"`
	Citations []CitationOutput `json:"citations"`
}

// EntitiesInput is the input schema for the extract_entities tool.
type EntitiesInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to read"`
}

// EntitiesOutput is the output schema for the extract_entities tool.
type EntitiesOutput struct {
	Companies      []string `json:"companies"`
	Tickers        []string `json:"tickers"`
	People         []string `json:"people"`
	MonetaryValues []string `json:"monetary_values"`
	Dates          []string `json:"dates"`
	Metrics        []string `json:"metrics"`
	Raw            string   `json:"raw_response,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Ticker string `json:"ticker,omitempty" jsonschema:"only documents for this ticker"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises a stored document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type"`
	Ticker     string `json:"ticker,omitempty"`
	Generation int64  `json:"generation"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose port is missing are not offered.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Retrieve ranked, cited passages from indexed JSE research documents",
	}, s.handleQuery)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Extract, chunk and index a document",
		}, s.handleIngest)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "remove",
			Description: "Remove a document from the index",
		}, s.handleRemove)
	}
	if s.ports.Analyst != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a research question from cited sources using the configured LLM",
		}, s.handleAsk)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "extract_entities",
			Description: "List the companies, tickers, people, amounts, dates and metrics named in a document",
		}, s.handleExtractEntities)
	}
	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List indexed documents",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	citations, err := s.ports.Query.Query(ctx, input.Query, domain.QueryOptions{
		Scope:  input.Documents,
		Ticker: input.Ticker,
		K:      input.Limit,
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}

	out := citationOutputs(citations)
	return nil, QueryOutput{Citations: out, Count: len(out)}, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errServiceUnavailable
	}

	content := []byte(input.Content)
	if input.ContentBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(input.ContentBase64)
		if err != nil {
			return nil, IngestOutput{}, fmt.Errorf("%w: content_base64: %w", domain.ErrInvalidInput, err)
		}
		content = decoded
	}

	id, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		ID:       input.ID,
		Name:     input.Name,
		MIMEType: input.MIMEType,
		Ticker:   input.Ticker,
		Content:  content,
		Metadata: map[string]any{"source": "mcp"},
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	state := domain.StateQueryable
	if st, ok := s.ports.Ingest.Status(id); ok {
		state = st.State
	}
	return nil, IngestOutput{DocumentID: id, State: state.String()}, nil
}

func (s *Server) handleRemove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, RemoveOutput, error) {
	if s.ports.Ingest == nil {
		return nil, RemoveOutput{}, errServiceUnavailable
	}
	if err := s.ports.Ingest.Remove(ctx, input.DocumentID); err != nil {
		return nil, RemoveOutput{}, err
	}
	return nil, RemoveOutput{Removed: true}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Analyst == nil {
		return nil, AskOutput{}, errServiceUnavailable
	}

	answer, err := s.ports.Analyst.Ask(ctx, input.Question, domain.QueryOptions{
		Scope:  input.Documents,
		Ticker: input.Ticker,
		K:      input.Limit,
	}, domain.AnalysisType(input.AnalysisType))
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Model:     answer.Model,
		Citations: citationOutputs(answer.Citations),
	}, nil
}

func (s *Server) handleExtractEntities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EntitiesInput,
) (*mcp.CallToolResult, EntitiesOutput, error) {
	if s.ports.Analyst == nil {
		return nil, EntitiesOutput{}, errServiceUnavailable
	}

	e, err := s.ports.Analyst.ExtractEntities(ctx, input.DocumentID)
	if err != nil {
		return nil, EntitiesOutput{}, err
	}

	return nil, EntitiesOutput{
		Companies:      nonNil(e.Companies),
		Tickers:        nonNil(e.Tickers),
		People:         nonNil(e.People),
		MonetaryValues: nonNil(e.MonetaryValues),
		Dates:          nonNil(e.Dates),
		Metrics:        nonNil(e.Metrics),
		Raw:            e.Raw,
	}, nil
}

// nonNil keeps empty lists as [] rather than null in tool output.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, errServiceUnavailable
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	out := documentOutputs(docs, input.Ticker)
	return nil, ListDocumentsOutput{Documents: out, Count: len(out)}, nil
}

func citationOutputs(citations []domain.Citation) []CitationOutput {
	out := make([]CitationOutput, len(citations))
	for i := range citations {
		c := &citations[i]
		out[i] = CitationOutput{
			Source:       c.Rank,
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Location:     c.Locator.String(),
			Excerpt:      c.Excerpt,
			Truncated:    c.Truncated,
			Score:        c.Score,
			ChunkID:      c.ChunkID,
		}
	}
	return out
}

// documentOutputs converts documents, keeping those for ticker when set.
func documentOutputs(docs []domain.Document, ticker string) []DocumentOutput {
	out := make([]DocumentOutput, 0, len(docs))
	for i := range docs {
		if ticker != "" && !strings.EqualFold(docs[i].Ticker, ticker) {
			continue
		}
		out = append(out, DocumentOutput{
			ID:         docs[i].ID,
			Name:       docs[i].DisplayName(),
			MIMEType:   docs[i].MIMEType,
			Ticker:     docs[i].Ticker,
			Generation: docs[i].Generation,
		})
	}
	return out
}
