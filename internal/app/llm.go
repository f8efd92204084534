package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driven/llm/openai"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// pingTimeout bounds the connectivity check.
const pingTimeout = 5 * time.Second

func openLLM(s domain.LLMSettings) (*openai.LLMService, error) {
	return openai.NewLLMService(openai.Config{
		APIKey:            s.APIKey,
		BaseURL:           s.BaseURL,
		Model:             s.Model,
		RequestsPerSecond: s.RequestsPerSecond,
	})
}

// newLLM connects the configured model. Returns nil when no model is
// configured; analyst calls then fail with domain.ErrLLMNotConfigured.
// Connectivity is not checked, so retrieval never waits on the LLM.
func newLLM(s domain.LLMSettings) driven.LLMService {
	if !s.IsConfigured() {
		return nil
	}
	llm, err := openLLM(s)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		return nil
	}
	return llm
}

// CheckLLM connects the configured model and pings it.
func CheckLLM(ctx context.Context, s domain.LLMSettings) error {
	if !s.IsConfigured() {
		return domain.ErrLLMNotConfigured
	}

	llm, err := openLLM(s)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer func() { _ = llm.Close() }()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := llm.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}
