package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the sales assistant to MCP clients",
	Long: `Serve the assistant over the Model Context Protocol.

The default transport is JSON-RPC on stdio, which is what desktop assistants
launch. With --port the server speaks streamable HTTP instead, bound to
--host (localhost unless set), for MCP Inspector or a shared deployment.

Tools: start_session, compare, ask, save_session, end_session, extract_url
and interview_questions. A session lasts until end_session or server exit.

  briefly mcp serve
  briefly mcp serve --port 8080
  briefly mcp serve --port 8080 --host 0.0.0.0

Desktop client entry:
  "briefly": {"command": "/path/to/briefly", "args": ["mcp", "serve"]}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind with --port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errNotConfigured("assistant")
	}
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Assistant:  assistantService,
		Extraction: extractionService,
		Interview:  interviewService,
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
