package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvLLMAPIKey overrides llm.api_key when set.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvLLMAPIKey = "JSE_LLM_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize          = "pipeline.chunk_size"
	keyOverlap            = "pipeline.overlap"
	keyWorkers            = "pipeline.workers"
	keyRelevanceThreshold = "query.relevance_threshold"
	keyMaxExcerptLength   = "query.max_excerpt_length"
	keyDefaultK           = "query.default_k"
	keyStorageBackend     = "storage.backend"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyLLMTemperature     = "llm.temperature"
	keyLLMMaxTokens       = "llm.max_tokens"
	keyLLMRequestsPerSec  = "llm.requests_per_second"
)

var settingsValidate = validator.New()

// setter parses a raw value into one field of the settings.
type setter func(s *domain.AppSettings, raw string) error

var setters = map[string]setter{
	keyChunkSize:          intSetter(func(s *domain.AppSettings) *int { return &s.Pipeline.ChunkSize }),
	keyOverlap:            intSetter(func(s *domain.AppSettings) *int { return &s.Pipeline.Overlap }),
	keyWorkers:            intSetter(func(s *domain.AppSettings) *int { return &s.Pipeline.Workers }),
	keyRelevanceThreshold: floatSetter(func(s *domain.AppSettings) *float64 { return &s.Query.RelevanceThreshold }),
	keyMaxExcerptLength:   intSetter(func(s *domain.AppSettings) *int { return &s.Query.MaxExcerptLength }),
	keyDefaultK:           intSetter(func(s *domain.AppSettings) *int { return &s.Query.DefaultK }),
	keyStorageBackend: func(s *domain.AppSettings, raw string) error {
		s.Storage.Backend = domain.StorageBackend(strings.ToLower(raw))
		return nil
	},
	keyLLMModel:          stringSetter(func(s *domain.AppSettings) *string { return &s.LLM.Model }),
	keyLLMBaseURL:        stringSetter(func(s *domain.AppSettings) *string { return &s.LLM.BaseURL }),
	keyLLMAPIKey:         stringSetter(func(s *domain.AppSettings) *string { return &s.LLM.APIKey }),
	keyLLMTemperature:    floatSetter(func(s *domain.AppSettings) *float64 { return &s.LLM.Temperature }),
	keyLLMMaxTokens:      intSetter(func(s *domain.AppSettings) *int { return &s.LLM.MaxTokens }),
	keyLLMRequestsPerSec: floatSetter(func(s *domain.AppSettings) *float64 { return &s.LLM.RequestsPerSecond }),
}

func intSetter(field func(*domain.AppSettings) *int) setter {
	return func(s *domain.AppSettings, raw string) error {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidSettings, raw)
		}
		*field(s) = v
		return nil
	}
}

func floatSetter(field func(*domain.AppSettings) *float64) setter {
	return func(s *domain.AppSettings, raw string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidSettings, raw)
		}
		*field(s) = v
		return nil
	}
}

func stringSetter(field func(*domain.AppSettings) *string) setter {
	return func(s *domain.AppSettings, raw string) error {
		*field(s) = strings.TrimSpace(raw)
		return nil
	}
}

// SettingsService reads, validates and persists application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the stored settings, with defaults for missing keys.
// The JSE_LLM_API_KEY environment variable overrides the stored API key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Pipeline: domain.PipelineSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Pipeline.ChunkSize),
			Overlap:   s.getInt(keyOverlap, d.Pipeline.Overlap),
			Workers:   s.getInt(keyWorkers, d.Pipeline.Workers),
		},
		Query: domain.QuerySettings{
			RelevanceThreshold: s.getFloat(keyRelevanceThreshold, d.Query.RelevanceThreshold),
			MaxExcerptLength:   s.getInt(keyMaxExcerptLength, d.Query.MaxExcerptLength),
			DefaultK:           s.getInt(keyDefaultK, d.Query.DefaultK),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.getString(keyStorageBackend, d.Storage.Backend.String())),
		},
		LLM: domain.LLMSettings{
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			Temperature:       s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			RequestsPerSecond: s.getFloat(keyLLMRequestsPerSec, d.LLM.RequestsPerSecond),
		},
	}

	if key := os.Getenv(EnvLLMAPIKey); key != "" {
		settings.LLM.APIKey = key
	}

	return settings, nil
}

// Save validates and persists every setting.
// An empty API key is not written, so a key held only in the environment
// never reaches the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.Pipeline.ChunkSize},
		{keyOverlap, settings.Pipeline.Overlap},
		{keyWorkers, settings.Pipeline.Workers},
		{keyRelevanceThreshold, settings.Query.RelevanceThreshold},
		{keyMaxExcerptLength, settings.Query.MaxExcerptLength},
		{keyDefaultK, settings.Query.DefaultK},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMRequestsPerSec, settings.LLM.RequestsPerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" && settings.LLM.APIKey != os.Getenv(EnvLLMAPIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Set parses value for key, validates the resulting settings and saves
// only that key.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	apply, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidSettings, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := apply(settings, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := s.Validate(settings); err != nil {
		return err
	}

	return s.configStore.Set(key, settingValue(settings, key))
}

// settingValue reads the typed value of key from settings.
func settingValue(s *domain.AppSettings, key string) any {
	switch key {
	case keyChunkSize:
		return s.Pipeline.ChunkSize
	case keyOverlap:
		return s.Pipeline.Overlap
	case keyWorkers:
		return s.Pipeline.Workers
	case keyRelevanceThreshold:
		return s.Query.RelevanceThreshold
	case keyMaxExcerptLength:
		return s.Query.MaxExcerptLength
	case keyDefaultK:
		return s.Query.DefaultK
	case keyStorageBackend:
		return s.Storage.Backend.String()
	case keyLLMModel:
		return s.LLM.Model
	case keyLLMBaseURL:
		return s.LLM.BaseURL
	case keyLLMAPIKey:
		return s.LLM.APIKey
	case keyLLMTemperature:
		return s.LLM.Temperature
	case keyLLMMaxTokens:
		return s.LLM.MaxTokens
	case keyLLMRequestsPerSec:
		return s.LLM.RequestsPerSecond
	default:
		return nil
	}
}

// Validate checks settings against their struct-tag constraints.
// Chunk size and overlap failures also wrap domain.ErrInvalidChunkConfig.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidSettings)
	}

	err := settingsValidate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSettings, err)
	}

	msgs := make([]string, 0, len(verrs))
	chunkConfig := false
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s%s", fe.Namespace(), fe.Tag(), param(fe.Param())))
		if fe.StructNamespace() == "AppSettings.Pipeline.ChunkSize" ||
			fe.StructNamespace() == "AppSettings.Pipeline.Overlap" {
			chunkConfig = true
		}
	}

	msg := strings.Join(msgs, "; ")
	if chunkConfig {
		return fmt.Errorf("%w: %w: %s", domain.ErrInvalidSettings, domain.ErrInvalidChunkConfig, msg)
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidSettings, msg)
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys lists the recognised config keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}
