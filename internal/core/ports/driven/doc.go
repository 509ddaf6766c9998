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
//   - PDFInspector: Opens and validates PDFs, counts pages (pdfcpu)
//   - PageRenderer: Renders one page to PNG bytes (pdftoppm)
//   - OCREngine: Turns a page image into text (tesseract)
//   - EmbeddingService: Text embedding space
//   - ImageEmbeddingService: Image embedding space (cross-modal with text queries)
//   - VectorStore: Flat L2 vector storage with blob persistence
//   - ResultStore: JSON result artifacts
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImageInspector: Image dimensions for the visual pass. Without it the
//     visual pass reports nothing.
//   - DocumentCatalog: Registry of processed documents and results.
//   - Metrics: Pipeline instrumentation.
//   - ResultExporter: Spreadsheet export.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
