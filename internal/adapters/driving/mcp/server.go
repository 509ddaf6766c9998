package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const (
	serverName      = "docsight"
	shutdownTimeout = 5 * time.Second
)

const instructions = "Insurance document analysis. Call process_document on a PDF, " +
	"then query_document with a question and the returned document_id. " +
	"Results carry critical fields with confidences and the supporting pages."

// Server exposes the pipeline as MCP tools and the document catalog as
// resources.
type Server struct {
	ports *Ports
	inner *mcp.Server
}

// NewServer registers tools and resources against ports. Only the pipeline
// port is required.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		inner: mcp.NewServer(
			&mcp.Implementation{Name: serverName, Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves a single client over stdin/stdout until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.inner.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.inner }, nil)
}

// RunHTTP listens on addr until ctx ends, then drains open requests.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(drainCtx)
	}()

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
