package mcp

import (
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Query retrieves cited passages. Required.
	Query driving.QueryService

	// Ingest adds and removes documents.
	Ingest driving.IngestService

	// Document reads stored documents.
	Document driving.DocumentService

	// Analyst answers questions with the LLM.
	Analyst driving.AnalystService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
