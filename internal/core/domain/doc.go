// Package domain defines the core business entities for the JSE research
// pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested research document (annual report, SENS, sheet)
//   - ExtractedUnit: A structural span of extracted text (page, sheet, section)
//   - Chunk: A retrievable window of extracted text
//   - Citation: A presentable reference to a retrieved chunk
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
