package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
the local media index.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:
  query_media    answer a question with evidence-backed candidates
  search_media   raw nearest-neighbour search

Use --read-only to serve query_media without the explainer.

Examples:
  # Stdio mode
  mediascope mcp serve

  # HTTP mode
  mediascope mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("read-only", false, "never call the explainer")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	readOnly, err := cmd.Flags().GetBool("read-only")
	if err != nil {
		return fmt.Errorf("getting read-only flag: %w", err)
	}

	a, err := requireApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	query, err := a.QueryEngine(ctx, readOnly)
	if err != nil {
		return err
	}
	index, err := a.Indexer(ctx, false)
	if err != nil {
		return err
	}
	scanner, err := a.Scanner(ctx)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    query,
		Index:    index,
		Scan:     scanner,
		Settings: a.SettingsService(),
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
