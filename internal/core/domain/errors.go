package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrUnsupportedFormat indicates no extractor recognises the document's MIME type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptInput indicates the document bytes could not be parsed.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrInvalidChunkConfig indicates chunk size or overlap is out of range.
	// Chunk size must be positive and overlap must be in [0, chunk size).
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrIndexUnavailable indicates the index has not been built for the
	// queried scope.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrCancelled indicates an index or retrieval operation was aborted by
	// its context. It is always wrapped together with the context error so
	// callers can tell a timeout from a cancellation.
	ErrCancelled = errors.New("operation cancelled")

	// Configuration Errors.

	// ErrInvalidSettings indicates settings failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrLLMNotConfigured indicates the LLM service is not configured.
	// The analyst features are disabled; retrieval still works.
	ErrLLMNotConfigured = errors.New("LLM service not configured")

	// ErrLLMUnavailable indicates the configured LLM could not be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
