// Package services implements the driving port interfaces.
//
// IngestService drives a document through extraction, chunking and
// indexing. QueryService and CitationComposer serve retrieval.
// AnalystService layers an optional LLM on top of retrieval.
//
// Services depend only on domain types and driven ports.
package services
