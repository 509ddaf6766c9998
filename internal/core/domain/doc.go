// Package domain defines the core business entities for docsight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentMetadata: A processed PDF with one PageRecord per page
//   - Chunk: An overlapping slice of one page's text used for indexing
//   - TextRecord / ImageRecord: Back-references stored beside each vector
//   - ClassificationResult: Document type scoring over the type catalog
//   - CriticalFieldSet / EvidenceSet: Extracted fields and their support
//   - FinalResult: The synthesized answer to one query
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
