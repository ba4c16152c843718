package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
	"github.com/pvetools/pvesdnctl/cmd/history"
	"github.com/pvetools/pvesdnctl/cmd/mcp"
	"github.com/pvetools/pvesdnctl/cmd/status"
	"github.com/pvetools/pvesdnctl/cmd/subnet"
	"github.com/pvetools/pvesdnctl/cmd/vnet"
	"github.com/pvetools/pvesdnctl/cmd/zone"
	"github.com/pvetools/pvesdnctl/internal/config"
	"github.com/pvetools/pvesdnctl/internal/log"
)

var version = "dev"

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (trace, debug, info, warn, error)",
			DefaultValue: "info",
			EnvVars:      []string{"PVESDN_LOG_LEVEL"},
			Global:       true,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			DefaultValue: "console",
			EnvVars:      []string{"PVESDN_LOG_FORMAT"},
			Global:       true,
		},
	}
	flags = append(flags, config.GetFlags()...)

	rootCmd := &cli.Command{
		Name:        "pvesdnctl",
		Version:     version,
		Usage:       "Declarative SDN management for Proxmox VE clusters",
		Description: "Converge SDN zones, vnets and subnets on a Proxmox VE cluster toward a desired state",
		Flags:       flags,
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:        "zone",
				Usage:       "Zone management commands",
				Description: "Manage SDN zones",
				Commands:    zone.Commands(),
			},
			{
				Name:        "vnet",
				Usage:       "Vnet management commands",
				Description: "Manage SDN vnets",
				Commands:    vnet.Commands(),
			},
			{
				Name:        "subnet",
				Usage:       "Subnet management commands",
				Description: "Manage SDN subnets",
				Commands:    subnet.Commands(),
			},
			status.Command(),
			{
				Name:        "history",
				Usage:       "Invocation history commands",
				Description: "Inspect the local invocation history",
				Commands:    history.Commands(),
			},
			mcp.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
