package mcp

import (
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Pipeline processes, classifies and queries documents.
	Pipeline driving.PipelineService

	// Document lists documents and their artifacts. Optional: without it
	// list_documents and the resources report nothing.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	return nil
}
