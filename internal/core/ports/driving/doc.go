// Package driving defines the operations the CLI and the MCP server call:
// ingest, query, document inspection, analyst answers and settings.
//
// internal/core/services implements every interface here.
package driving
