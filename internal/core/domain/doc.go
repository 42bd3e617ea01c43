// Package domain defines the core business entities for animerec.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogRecord: One raw row of the anime catalog
//   - NormalizedDocument: The combined text derived from a catalog record
//   - Chunk: A bounded-length slice of a document used as an embedding unit
//   - RetrievedChunk: A chunk returned by nearest-neighbour search
//   - AppSettings: Explicit configuration passed to constructors
//
// The pipeline error taxonomy (ErrPipeline and its families) also lives here
// so every layer can match errors with errors.Is and errors.As.
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
