// Package connectors holds document sources that feed the ingest pipeline.
// Each connector turns its source into ingest requests and change
// notifications; the ingest service does the rest.
package connectors
