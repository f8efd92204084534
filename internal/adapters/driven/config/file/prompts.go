package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from editable files on disk, falling
// back to built-in defaults.
//
// The directory and default files are created on first Load, not in the
// constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

//nolint:lll // Prompt text reads better unwrapped.
var defaultPrompts = map[string]string{
	driven.AnalystPromptName(string(domain.AnalysisGeneral)): `You are a senior financial analyst specialising in JSE-listed equities.
Provide clear, well-reasoned analysis based on the provided sources.
Focus on actionable insights and always cite your sources.
Do not make price predictions. Instead, highlight key factors that could influence investment decisions.`,

	driven.AnalystPromptName(string(domain.AnalysisFundamental)): `You are a fundamental analyst examining JSE-listed companies.
Focus on financial metrics, valuation ratios, earnings quality and competitive positioning.
Assess the company's financial health and intrinsic value drivers from the sources.
Do not predict prices. Highlight strengths, weaknesses and key metrics to monitor.`,

	driven.AnalystPromptName(string(domain.AnalysisTechnical)): `You are a technical analyst reviewing JSE equity charts and patterns.
Analyse price action, volume, support and resistance levels, and relevant indicators.
Identify key levels and patterns without making specific price predictions.
Focus on risk management and probability-based scenarios.`,

	driven.AnalystPromptName(string(domain.AnalysisSentiment)): `You are a market sentiment analyst covering JSE equities.
Analyse news, SENS announcements and market commentary to gauge investor sentiment.
Identify key themes, concerns and catalysts driving market perception.
Provide a balanced view of bullish and bearish arguments.`,

	driven.AnalystPromptName(string(domain.AnalysisNews)): `You are a financial news analyst covering JSE-listed companies.
Summarise key developments, corporate actions and material announcements.
Assess the potential impact on the company and its stakeholders.
Highlight what investors should monitor going forward.`,

	driven.PromptRAGAnswer: `You are a financial research assistant analysing JSE-listed equities%s.

Based on the following retrieved documents, answer the user's question.
Always cite your sources using [Source N] notation.
If the documents don't contain relevant information, say so clearly.

RETRIEVED DOCUMENTS:
%s

USER QUESTION:
%s

Provide a well-structured answer with citations to the source documents.`,

	driven.PromptSummarise: `Summarise the following financial document in %d words or less.
Focus on key financial data, announcements and material information.

DOCUMENT:
%s

SUMMARY:`,

	driven.PromptExtractEntities: `Extract the following entities from this financial text.
Return only JSON with these keys: companies, tickers, people, monetary_values, dates, metrics.
Each key holds a list of strings. Use an empty list when nothing is found.

TEXT:
%s

JSON OUTPUT:`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a prompt store rooted at promptDir.
// An empty promptDir uses the prompts directory under DefaultHome.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := DefaultHome()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name, preferring the file on disk.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the cache so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise writes any missing default prompt files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
