// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion endpoints, including Snowflake Cortex and local servers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel             = "gpt-4o-mini"
	DefaultTimeout           = 120 * time.Second
	DefaultRequestsPerSecond = 2.0
)

// ErrNoChoices is returned when the endpoint answers without a completion.
var ErrNoChoices = errors.New("openai: no response choices returned")

// Config holds configuration for the LLM service.
type Config struct {
	// APIKey authenticates requests. Optional when BaseURL points at a
	// server that needs none.
	APIKey string

	// BaseURL overrides the OpenAI endpoint.
	BaseURL string

	Model   string
	Timeout time.Duration

	// RequestsPerSecond throttles calls. Calls wait for a token; they are
	// never retried.
	RequestsPerSecond float64
}

// LLMService calls a chat completion endpoint.
type LLMService struct {
	client  *openai.Client
	limiter *rate.Limiter
	model   string
}

// NewLLMService creates a new LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: API key or base URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client:  openai.NewClientWithConfig(clientCfg),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		model:   cfg.Model,
	}, nil
}

// Generate produces a completion for a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request([]driven.ChatMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		opts.MaxTokens, opts.Temperature)
	req.Stop = opts.StopWords
	return s.complete(ctx, req)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.complete(ctx, s.request(messages, opts.MaxTokens, opts.Temperature))
}

func (s *LLMService) request(messages []driven.ChatMessage, maxTokens int,
	temperature float64) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	return openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	}
}

func (s *LLMService) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("openai: rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	logger.Debug("llm %s: %d prompt tokens, %d completion tokens, %s, finish=%s",
		s.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		time.Since(start).Round(time.Millisecond), resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// Ping checks the endpoint is reachable and the key is accepted.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
