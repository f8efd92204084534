package domain

import "time"

// PipelineState is the ingestion stage a document has reached.
type PipelineState string

// Pipeline states, in order. A document is only returned by queries once it
// is Queryable.
const (
	StateEmpty      PipelineState = "empty"
	StateExtracting PipelineState = "extracting"
	StateChunking   PipelineState = "chunking"
	StateIndexed    PipelineState = "indexed"
	StateQueryable  PipelineState = "queryable"
)

// IsQueryable returns true if the document can be returned by queries.
func (s PipelineState) IsQueryable() bool {
	return s == StateQueryable
}

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// DocumentStatus tracks the pipeline state of a document.
type DocumentStatus struct {
	DocumentID string
	State      PipelineState
	Generation int64

	// Err is the failure that stopped the pipeline, if any. The state is left
	// at the stage that failed.
	Err error

	UpdatedAt time.Time
}

// Failed returns true if the last pipeline run stopped on an error.
func (s DocumentStatus) Failed() bool {
	return s.Err != nil
}

// StatusEvent is published whenever a document changes state.
type StatusEvent struct {
	Status DocumentStatus

	// Chunks is the number of chunks produced, once known.
	Chunks int
}
