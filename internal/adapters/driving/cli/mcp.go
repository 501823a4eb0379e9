package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

Tools: get_draw, repair_draw, run_job, job_status.
Resources: drawsync://draws/{date}

Examples:
  # Stdio mode (default)
  drawsync mcp

  # HTTP mode
  drawsync mcp --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	jobs, err := jobService(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Jobs: jobs, Scheduler: services.Scheduler}, version)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
