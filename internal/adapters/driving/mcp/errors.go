// Package mcp exposes retrieval and ingestion over the Model Context
// Protocol so AI assistants can cite JSE research documents.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// errServiceUnavailable is returned by tools whose optional port is not set.
var errServiceUnavailable = errors.New("mcp: service not available")
