package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query,
ingest and cite JSE research documents.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, for the MCP Inspector or remote clients.

Tools: query, ingest, remove, ask, list_documents
Resources: jse://documents, jse://documents/{documentId}

Examples:
  # Stdio mode (default)
  jse mcp serve

  # HTTP mode
  jse mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "jse": {
        "command": "/path/to/jse",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := runtimeFor(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    rt.Query,
		Ingest:   rt.Ingest,
		Document: rt.Documents,
		Analyst:  rt.Analyst,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
