package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/animerec/internal/adapters/driving/mcp"
	"github.com/custodia-labs/animerec/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask for
recommendations and retrieve catalog chunks.

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  animerec mcp serve

  # HTTP mode
  animerec mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "animerec": {
        "command": "/path/to/animerec",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
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

	svc, err := getServices()
	if err != nil {
		return err
	}
	ports, err := mcpPorts(cmd, svc)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		logger.Info("MCP server listening on http://localhost%s", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}

func mcpPorts(cmd *cobra.Command, svc Services) (*mcp.Ports, error) {
	recommender, err := svc.Recommendation(cmd.Context())
	if err != nil {
		return nil, err
	}
	retrieval, err := svc.Retrieval(cmd.Context())
	if err != nil {
		return nil, err
	}

	ports := &mcp.Ports{Recommendation: recommender, Retrieval: retrieval}
	if settings, err := svc.Settings(); err == nil {
		ports.Settings = settings
		if app, err := settings.Get(); err == nil {
			ports.DefaultK = app.Retrieval.K
		}
	}
	return ports, nil
}
