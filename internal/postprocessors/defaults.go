package postprocessors

import (
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/postprocessors/annotator"
	"github.com/Cyb-Leon/jse-decision-support/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("annotator", buildAnnotator)
}

// DefaultPipeline builds the standard chunk-then-annotate pipeline.
func DefaultPipeline(s domain.PipelineSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := domain.PipelineConfigFrom(s)
	cfg.Processors = append(cfg.Processors, "annotator")
	return r.BuildPipeline(cfg)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
//
// Out-of-range values are rejected, not clamped.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := intFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := intFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...)
}

// buildAnnotator creates the chunk annotator. It takes no config.
func buildAnnotator(_ map[string]any) (driven.PostProcessor, error) {
	return annotator.New(), nil
}

// intFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func intFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
