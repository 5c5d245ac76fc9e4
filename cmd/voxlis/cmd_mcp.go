package main

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"voxlis/internal/logging"
	mcpserver "voxlis/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the report pipeline as MCP tools over stdio",
	Long: `Starts an MCP server over stdin/stdout with the tools get_unc_test,
list_executors and parse_report.

The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(a.svc, version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := logging.New("mcp")
	mcpserver.WatchParent(ctx, logger, cancel)

	logger.Info("starting voxlis MCP server over stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
