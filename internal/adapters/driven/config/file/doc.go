// Package file provides the TOML-backed configuration store.
//
// Configuration lives at ~/.docsight/config.toml by default:
//
//	[models]
//	text_encoder = "hashing"
//
//	[embeddings]
//	chunk_size = 100
//	chunk_overlap = 20
//
// Keys are addressed in dot notation ("embeddings.chunk_size").
package file
