package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/recipient/internal/cli"
	"github.com/aretw0/recipient/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes recipient edit screens as MCP tools, so an agent can open a screen,
change fields and submit.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := loadStack(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sessions := stack.NewSessions()
		defer sessions.CloseAll()

		srv := mcp.NewServer(sessions, mcp.WithLogger(stack.Logger))

		switch transport {
		case "stdio":
			// Logs go to Stderr, so JSON-RPC on Stdout stays clean.
			stack.Logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			stack.Logger.Info("starting MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			stack.Logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
