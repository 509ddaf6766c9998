package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are always wrapped
// with context by the layer that detects them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDocument indicates the PDF cannot be opened or rendered.
	// Fatal to that document only.
	ErrUnsupportedDocument = errors.New("unsupported document")

	// ErrOCRUnavailable indicates the OCR backend is not installed.
	// Reported at startup and never retried.
	ErrOCRUnavailable = errors.New("OCR backend unavailable")

	// ErrInvalidConfiguration indicates settings that cannot be used,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCorruptIndex indicates persisted index artifacts disagree with
	// each other. The caller must rebuild the index.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrDimensionMismatch indicates a vector does not match the
	// dimension declared by its index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexNotLoaded indicates a query was issued before any document
	// was indexed or loaded.
	ErrIndexNotLoaded = errors.New("index not loaded")
)
