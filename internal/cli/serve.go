package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"eftb/internal/api"
	"eftb/internal/logger"
	mcptools "eftb/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API. The snapshot loads in the background; queries
answer 503 until it is ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Banner(a.version)

			srv := api.NewServer(a.cfg, a.version, nil)

			// Load the snapshot in background
			go func() {
				u, err := a.universe()
				if err != nil {
					logger.Error("Load", err.Error())
					return
				}
				srv.SetUniverse(u)
				logger.Success("Load", "Star map ready")
			}()

			addr := fmt.Sprintf("%s:%d", host, a.cfg.Port)
			logger.Server(addr)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}
	cmd.Flags().IntVarP(&a.cfg.Port, "port", "p", a.cfg.Port, "HTTP server port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "listen address")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the query tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			logger.SetOutput(os.Stderr)

			u, err := a.universe()
			if err != nil {
				return err
			}
			return server.ServeStdio(mcptools.NewServer(a.version, u, a.cfg))
		},
	}
}
