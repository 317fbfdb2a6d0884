package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [intent files...]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the router as an MCP Server so AI agents can dispatch messages
and inspect the intent tree as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("intents") {
			cfg.Intents = args
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		strict, _ := cmd.Flags().GetBool("strict")
		router, err := cli.NewRouter(ctx, cli.RouterOptions{
			Intents:   cfg.Intents,
			Strict:    strict,
			Threshold: cfg.Threshold,
			Logger:    logger,
			MaskKeys:  cfg.MaskKeys,
		})
		if err != nil {
			return err
		}

		srv := mcp.NewServer(router,
			mcp.WithLogger(logging.Component(logger, "mcp")),
			mcp.WithMaxInputSize(cfg.MaxInputSize),
		)

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			if err := srv.ServeSSE(ctx, cfg.Addr); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (only for SSE)")
}
