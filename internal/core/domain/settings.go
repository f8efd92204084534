package domain

const unknownDescription = "Unknown"

// StorageBackend selects the document store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps documents in process memory only.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite persists documents in a SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageBolt persists documents in a bbolt key/value file.
	StorageBolt StorageBackend = "bolt"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageBolt:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if documents survive a restart.
func (b StorageBackend) IsPersistent() bool {
	return b == StorageSQLite || b == StorageBolt
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageMemory:
		return "Memory (not persisted)"
	case StorageSQLite:
		return "SQLite (single file, WAL)"
	case StorageBolt:
		return "Bolt (embedded key/value)"
	default:
		return unknownDescription
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageMemory, StorageSQLite, StorageBolt}
}

// PipelineSettings holds extraction and chunking configuration.
type PipelineSettings struct {
	// ChunkSize is the window length in characters.
	ChunkSize int `validate:"gt=0"`

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int `validate:"gte=0,ltfield=ChunkSize"`

	// Workers bounds parallel ingestion of independent documents.
	Workers int `validate:"gte=1"`
}

// QuerySettings holds retrieval and citation configuration.
type QuerySettings struct {
	// RelevanceThreshold is the minimum score a chunk must exceed.
	RelevanceThreshold float64 `validate:"gte=0,lte=1"`

	// MaxExcerptLength bounds citation excerpts, in characters.
	MaxExcerptLength int `validate:"gt=0"`

	// DefaultK is used when a query does not specify a limit.
	DefaultK int `validate:"gt=0"`
}

// StorageSettings holds document store configuration.
type StorageSettings struct {
	Backend StorageBackend `validate:"oneof=memory sqlite bolt"`
}

// LLMSettings holds analyst model configuration.
// Any OpenAI-compatible endpoint can be used by setting BaseURL.
type LLMSettings struct {
	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string `validate:"omitempty,url"`

	// APIKey authenticates requests.
	APIKey string

	Temperature float64 `validate:"gte=0,lte=2"`
	MaxTokens   int     `validate:"gt=0"`

	// RequestsPerSecond rate-limits calls to the endpoint.
	RequestsPerSecond float64 `validate:"gt=0"`
}

// IsConfigured returns true if the LLM can be called.
func (l LLMSettings) IsConfigured() bool {
	return l.Model != "" && (l.APIKey != "" || l.BaseURL != "")
}

// AppSettings holds all application settings.
type AppSettings struct {
	Pipeline PipelineSettings
	Query    QuerySettings
	Storage  StorageSettings
	LLM      LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left without credentials; retrieval works without it.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline: PipelineSettings{
			ChunkSize: 1000,
			Overlap:   200,
			Workers:   4,
		},
		Query: QuerySettings{
			RelevanceThreshold: 0,
			MaxExcerptLength:   300,
			DefaultK:           5,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		LLM: LLMSettings{
			Model:             "claude-3-5-sonnet",
			Temperature:       0.3,
			MaxTokens:         2048,
			RequestsPerSecond: 2,
		},
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFrom builds the processor pipeline from pipeline settings.
func PipelineConfigFrom(s PipelineSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": s.ChunkSize,
				"overlap":    s.Overlap,
			},
		},
	}
}
