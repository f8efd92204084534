package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Ensure AnalystService implements the interface.
var _ driving.AnalystService = (*AnalystService)(nil)

// Summary limits.
const (
	// SummaryInputLimit bounds the document text sent for summarisation, in characters.
	SummaryInputLimit = 10000

	// SummaryMaxWords is the target summary length.
	SummaryMaxWords = 500

	// EntityInputLimit bounds the document text sent for entity extraction.
	EntityInputLimit = 5000
)

// NoSourcesAnswer is returned without calling the LLM when retrieval finds nothing.
const NoSourcesAnswer = "The indexed documents do not contain information relevant to this question."

// Fallbacks used when no prompt store is configured.
const (
	fallbackSystemPrompt = `You are a senior financial analyst specialising in JSE-listed equities.
Do not make price predictions. Always cite your sources.`

	fallbackRAGPrompt = `Answer the question about JSE-listed equities%s using only the documents below.
Cite sources as [Source N].

%s

QUESTION:
%s`

	fallbackSummarisePrompt = `Summarise the following financial document in %d words or less.

%s`

	fallbackEntitiesPrompt = `Extract companies, tickers, people, monetary_values, dates and metrics
from this financial text. Return only JSON with those keys, each a list of strings.

%s`
)

// AnalystService answers questions with an LLM grounded on retrieved citations.
type AnalystService struct {
	query    driving.QueryService
	docStore driven.DocumentStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.LLMSettings
}

// NewAnalystService creates an analyst. llm and prompts may be nil: without
// an LLM every call fails with domain.ErrLLMNotConfigured, and without a
// prompt store built-in prompts are used.
func NewAnalystService(
	query driving.QueryService,
	docStore driven.DocumentStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.LLMSettings,
) *AnalystService {
	return &AnalystService{
		query:    query,
		docStore: docStore,
		llm:      llm,
		prompts:  prompts,
		settings: settings,
	}
}

// Ask retrieves sources for question and asks the LLM to answer from them.
func (s *AnalystService) Ask(ctx context.Context, question string, opts domain.QueryOptions,
	analysisType domain.AnalysisType) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMNotConfigured
	}
	if analysisType == "" {
		analysisType = domain.AnalysisGeneral
	}
	if !analysisType.IsValid() {
		return nil, fmt.Errorf("%w: unknown analysis type %q", domain.ErrInvalidInput, analysisType)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	logger.Section("Analyst")
	logger.Debug("Type: %s, question: %q", analysisType, question)

	citations, err := s.query.Query(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Citations:    citations,
		Model:        s.llm.ModelName(),
		AnalysisType: analysisType,
	}
	if len(citations) == 0 {
		answer.Text = NoSourcesAnswer
		return answer, nil
	}

	tickerContext := ""
	if opts.Ticker != "" {
		tickerContext = " for " + strings.ToUpper(opts.Ticker)
	}

	user := fmt.Sprintf(s.loadPrompt(driven.PromptRAGAnswer, fallbackRAGPrompt),
		tickerContext, s.sources(ctx, citations), question)
	system := s.loadPrompt(driven.AnalystPromptName(analysisType.String()), fallbackSystemPrompt)

	text, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, driven.ChatOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("analyst: %w", err)
	}

	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

// sources renders citations as numbered blocks. The full chunk text is sent
// when it can be loaded; otherwise the excerpt is used.
func (s *AnalystService) sources(ctx context.Context, citations []domain.Citation) string {
	blocks := make([]string, len(citations))
	for i, c := range citations {
		text := c.Excerpt
		if chunk, err := s.docStore.GetChunk(ctx, c.ChunkID); err == nil {
			text = strings.TrimSpace(chunk.Content)
		}
		blocks[i] = fmt.Sprintf("[Source %d: %s, %s]\n%s", c.Rank, c.DocumentName, c.Locator, text)
	}
	return strings.Join(blocks, "\n\n")
}

// Summarise asks the LLM to summarise the start of a document.
func (s *AnalystService) Summarise(ctx context.Context, documentID string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMNotConfigured
	}

	content, err := s.documentText(ctx, "summarise", documentID, SummaryInputLimit)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptSummarise, fallbackSummarisePrompt), SummaryMaxWords, content)
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarise %s: %w", documentID, err)
	}
	return strings.TrimSpace(text), nil
}

// ExtractEntities asks the LLM for the financial entities named in the start
// of a document. A reply that is not a JSON object is kept in Entities.Raw.
func (s *AnalystService) ExtractEntities(ctx context.Context, documentID string) (*domain.Entities, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMNotConfigured
	}

	content, err := s.documentText(ctx, "extract entities", documentID, EntityInputLimit)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptExtractEntities, fallbackEntitiesPrompt), content)
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extract entities %s: %w", documentID, err)
	}
	return parseEntities(text), nil
}

// parseEntities reads the outermost JSON object in an LLM reply. Tickers that
// are not valid JSE codes are dropped.
func parseEntities(reply string) *domain.Entities {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		var e domain.Entities
		if err := json.Unmarshal([]byte(reply[start:end+1]), &e); err == nil {
			e.Tickers = validTickers(e.Tickers)
			return &e
		}
	}
	logger.Debug("Entity reply is not JSON, keeping raw text")
	return &domain.Entities{Raw: strings.TrimSpace(reply)}
}

func validTickers(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t, err := NormaliseTicker(r)
		if err != nil || t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// documentText returns up to limit characters of a document's text.
func (s *AnalystService) documentText(ctx context.Context, op, documentID string, limit int) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", op, documentID, err)
	}

	content := []rune(doc.Content)
	if len(content) > limit {
		content = content[:limit]
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", fmt.Errorf("%w: document %s has no text", domain.ErrInvalidInput, documentID)
	}
	return string(content), nil
}

func (s *AnalystService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil {
		logger.Warn("Prompt %s unavailable, using built-in: %v", name, err)
		return fallback
	}
	return prompt
}
