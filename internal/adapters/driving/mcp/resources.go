package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

const uriScheme = "docsight://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.inner.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Processed documents with their detected types",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.inner.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document",
		Description: "Pages, OCR text and classification of one document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, list, err := s.handleList(ctx, nil, ListInput{})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return jsonResource(req.Params.URI, list.Documents)
}

// documentDetail is the JSON body of a document resource.
type documentDetail struct {
	Metadata       *domain.DocumentMetadata     `json:"metadata"`
	Classification *domain.ClassificationResult `json:"classification,omitempty"`
}

func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	meta, err := s.ports.Document.Metadata(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	detail := documentDetail{Metadata: meta}
	cls, err := s.ports.Document.Classification(ctx, docID)
	switch {
	case err == nil:
		detail.Classification = cls
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("loading classification: %w", err)
	}
	return jsonResource(req.Params.URI, detail)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like docsight://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
