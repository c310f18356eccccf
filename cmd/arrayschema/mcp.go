package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arrayschema/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var transport, baseURL string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the schema store as an MCP server, so agents can list, read,
store and check schemas and validate container documents as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			reg, store, err := e.open()
			if err != nil {
				return err
			}
			defer store.Close()

			srv := mcp.NewServer(reg, e.logger)

			switch transport {
			case "stdio":
				e.logger.Info("Starting arrayschema MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if baseURL == "" {
					baseURL = "http://localhost" + e.cfg.Server.MCPAddr
				}
				e.logger.Info("Starting arrayschema MCP Server (SSE)", "address", e.cfg.Server.MCPAddr)
				if err := srv.ServeSSE(ctx, e.cfg.Server.MCPAddr, baseURL); err != nil {
					return err
				}
				e.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().String("mcp-addr", "", "Address to listen on (only for SSE, default :8081)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL advertised by the SSE transport")
	return cmd
}
