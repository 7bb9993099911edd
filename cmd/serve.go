package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"framemap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing framemap tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes resolution,
XPath lookup, clicking, and screenshots as tools. AI agents can call them
directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  framemap serve
  framemap serve --transport streamable-http --port 8080
  framemap serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Resolved tree cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer a.close(ctx)

	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	cfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}

	srv := server.New(a.engine, a.actions, a.sessions, cfg, a.log)
	return srv.Serve(cfg)
}
