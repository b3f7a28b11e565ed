package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/springroll-app/quill/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run quill as an MCP (Model Context Protocol) server",
		Long: `Start an MCP server that exposes quill functionality over stdio.

The MCP server lets AI tools capture feedback and fetch learned
preferences directly:

  • quill_capture_edit    - Record an edit with a word-level diff
  • quill_capture_accept  - Record an unchanged acceptance
  • quill_capture_reject  - Record a rejection with optional reason
  • quill_patterns        - Get learned terminology substitutions
  • quill_style           - Get inferred style preferences
  • quill_examples        - Get approved contents for few-shot use
  • quill_enrich          - Augment a prompt with learned guidance
  • quill_stats           - Get aggregate feedback counts

The server communicates via JSON-RPC 2.0 over stdin/stdout, following
the Model Context Protocol specification.

Example MCP client configuration:

  {
    "mcpServers": {
      "quill": {
        "command": "quill",
        "args": ["mcp-server"],
        "cwd": "${workspaceFolder}"
      }
    }
  }
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "quill",
				Version: version,
				Root:    root,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			// Blocks until the client disconnects or the process is signalled.
			return server.Run(context.Background())
		},
	}

	return cmd
}
