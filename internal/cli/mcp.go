package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/projected-source/internal/config"
	"github.com/mvp-joe/projected-source/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for code extraction",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants extract functions and marker regions from the project's
C/C++ sources.

The MCP server:
- Analyzes sources on demand, with in-memory caching
- Provides extract_function, extract_marker, extract_lines,
  list_markers, and list_declarations tools
- Communicates via stdio (standard MCP transport)

Example:
  projected-source mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "projected-source MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project Root: %s\n\n", rootDir)

	server, err := mcp.NewMCPServer(rootDir, cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
