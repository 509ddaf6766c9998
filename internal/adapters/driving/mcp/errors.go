// Package mcp provides an MCP (Model Context Protocol) server adapter for docsight.
// It lets AI assistants process, classify and query insurance documents.
package mcp

import "errors"

// ErrMissingPipelineService is returned when the pipeline service is not provided.
var ErrMissingPipelineService = errors.New("mcp: pipeline service is required")
