// Package mcp provides the MCP server command.
package mcp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/cmd/internal/runner"
	"github.com/pvetools/pvesdnctl/internal/log"
	"github.com/pvetools/pvesdnctl/internal/mcp"
)

// Command returns the mcp serve command.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "mcp",
		Usage:       "Serve the MCP server",
		Description: "Expose the SDN apply/delete/list operations as MCP tools over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "listen",
				Usage:        "Listen address",
				DefaultValue: ":8480",
				EnvVars:      []string{"PVESDN_MCP_LISTEN"},
			},
			&cli.StringFlag{
				Name:    "mcp-token",
				Usage:   "Bearer token required on MCP requests (empty disables authentication)",
				EnvVars: []string{"PVESDN_MCP_TOKEN"},
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, cfg, err := runner.Client(cmd)
			if err != nil {
				return err
			}
			rec, cleanup := runner.History(cfg)
			defer cleanup()

			mcpServer := mcp.NewServer(client, rec, cmd.GetString("mcp-token"))

			mux := http.NewServeMux()
			mux.HandleFunc("/mcp", mcpServer.GetHTTPHandler())

			server := &http.Server{
				Addr:    cmd.GetString("listen"),
				Handler: mux,
			}

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan
				log.Info("Shutting down MCP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			log.Info("Starting MCP server", "addr", server.Addr, "cluster", cfg.Host)
			mcpServer.LogStartup()

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}

			log.Info("MCP server stopped")
			return nil
		},
	}
}
