package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsight/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can process,
classify and query insurance documents.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode (default)
  docsight mcp serve

  # HTTP mode, with Prometheus metrics
  docsight mcp serve --port 8080 --metrics-addr :9464

Assistant configuration:
  {
    "mcpServers": {
      "docsight": {
        "command": "/path/to/docsight",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("getting metrics-addr flag: %w", err)
	}

	ports := &mcp.Ports{
		Pipeline: pipelineService,
		Document: documentService,
	}
	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if err := loadIndices(ctx); err != nil {
		return fmt.Errorf("failed to load indices: %w", err)
	}
	// Stdout carries JSON-RPC in stdio mode, so notices go to stderr.
	if addr, err := serveMetrics(ctx, metricsAddr); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	} else if addr != "" {
		cmd.PrintErrf("Metrics on http://%s/metrics\n", addr)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
