package driven

import "time"

// PipelineMetrics records ingest and query instrumentation.
type PipelineMetrics interface {
	// ObserveIngest records one document ingestion.
	// Result is "ok" or the failure kind (e.g. "unsupported_format").
	ObserveIngest(result string, duration time.Duration, chunks int)

	// ObserveQuery records one query and the number of results returned.
	ObserveQuery(duration time.Duration, results int, err error)
}
