// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Turns document bytes into ordered text units
//   - ExtractorRegistry: Selects the extractor for a MIME type
//   - PostProcessorPipeline: Cuts units into chunks
//   - DocumentStore: Document and chunk persistence
//   - Index: Keyword index with per-document snapshots
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only citations are returned.
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//   - EventPublisher: Pipeline state notifications.
//   - PipelineMetrics: Ingest and query instrumentation.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
