package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driving"
)

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	Path     string `json:"path" jsonschema:"absolute path of the PDF to process"`
	Classify bool   `json:"classify,omitempty" jsonschema:"also classify the document after indexing"`
}

// ProcessOutput is the output schema for the process_document tool.
type ProcessOutput struct {
	DocumentID     string                       `json:"document_id"`
	Filename       string                       `json:"filename"`
	PageCount      int                          `json:"page_count"`
	Classification *domain.ClassificationResult `json:"classification,omitempty"`
}

// ClassifyInput is the input schema for the classify_document tool.
type ClassifyInput struct {
	DocumentID string `json:"document_id" jsonschema:"ID returned by process_document"`
}

// ClassifyOutput is the output schema for the classify_document tool.
type ClassifyOutput struct {
	Classification *domain.ClassificationResult `json:"classification"`
	Report         string                       `json:"report"`
}

// QueryInput is the input schema for the query_document tool.
type QueryInput struct {
	Query      string `json:"query" jsonschema:"question about the document, e.g. what is the policy number"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict retrieval to one document"`
	TopKText   int    `json:"top_k_text,omitempty" jsonschema:"text chunks to retrieve (default from settings)"`
	TopKImage  int    `json:"top_k_image,omitempty" jsonschema:"page images to retrieve (default from settings)"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents one processed document.
type DocumentOutput struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	PageCount    int     `json:"page_count"`
	DocumentType string  `json:"document_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	ProcessedAt  string  `json:"processed_at"`
}

// QueryOutput is the output schema for the query_document tool.
type QueryOutput struct {
	Query            string            `json:"query"`
	DocumentID       string            `json:"document_id,omitempty"`
	Fields           map[string]string `json:"fields"`
	EvidencePages    []int             `json:"evidence_pages"`
	EvidenceImages   []string          `json:"evidence_images"`
	VisualElements   []string          `json:"visual_elements"`
	ConsistencyCheck bool              `json:"consistency_check"`
	Summary          string            `json:"summary"`
	Confidence       float64           `json:"confidence_score"`
	Timestamp        string            `json:"timestamp"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "process_document",
		Description: "Render, OCR and index an insurance PDF so it can be classified and queried",
	}, s.handleProcess)

	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "classify_document",
		Description: "Classify a processed document as claim form, inspection report, invoice, policy document or cover letter",
	}, s.handleClassify)

	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "query_document",
		Description: "Answer a question with structured field values, evidence pages and a confidence score",
	}, s.handleQuery)

	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "list_documents",
		Description: "List processed documents with their detected types",
	}, s.handleList)
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	if input.Path == "" {
		return nil, ProcessOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	meta, err := s.ports.Pipeline.ProcessDocument(ctx, input.Path)
	if err != nil {
		return nil, ProcessOutput{}, err
	}

	out := ProcessOutput{
		DocumentID: meta.ID,
		Filename:   meta.Filename,
		PageCount:  meta.PageCount,
	}
	if input.Classify {
		result, err := s.ports.Pipeline.ClassifyDocument(ctx, meta.ID)
		if err != nil {
			return nil, ProcessOutput{}, fmt.Errorf("classifying %s: %w", meta.ID, err)
		}
		out.Classification = result
	}
	return nil, out, nil
}

func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	result, err := s.ports.Pipeline.ClassifyDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	return nil, ClassifyOutput{Classification: result, Report: result.Report()}, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	result, err := s.ports.Pipeline.Query(ctx, input.Query, driving.QueryOptions{
		DocumentID: input.DocumentID,
		TopKText:   input.TopKText,
		TopKImage:  input.TopKImage,
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, toQueryOutput(result), nil
}

func toQueryOutput(r *domain.FinalResult) QueryOutput {
	out := QueryOutput{
		Query:            r.Query,
		DocumentID:       r.DocumentID,
		Fields:           make(map[string]string, len(r.StructuredData.Fields)),
		EvidencePages:    append([]int{}, r.Evidence.Pages...),
		EvidenceImages:   append([]string{}, r.Evidence.Images...),
		VisualElements:   append([]string{}, r.StructuredData.VisualElements...),
		ConsistencyCheck: r.StructuredData.ConsistencyCheck,
		Summary:          r.Summary,
		Confidence:       r.ConfidenceScore,
		Timestamp:        r.Timestamp.UTC().Format(time.RFC3339),
	}
	for k, v := range r.StructuredData.Fields {
		out.Fields[k] = v
	}
	return out
}

func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	out := ListOutput{Documents: []DocumentOutput{}}
	if s.ports.Document == nil {
		return nil, out, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, DocumentOutput{
			ID:           d.ID,
			Filename:     d.Filename,
			PageCount:    d.PageCount,
			DocumentType: d.DocumentType,
			Confidence:   d.Confidence,
			ProcessedAt:  d.ProcessedAt.UTC().Format(time.RFC3339),
		})
	}
	out.Count = len(out.Documents)
	return nil, out, nil
}
