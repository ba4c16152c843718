// Package status provides the cluster connectivity check command.
package status

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/cmd/internal/runner"
)

// Command returns the status command.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "status",
		Usage:       "Show cluster SDN status",
		Description: "Check connectivity and report the API version and SDN resource counts",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, cfg, err := runner.Client(cmd)
			if err != nil {
				return err
			}

			version, err := client.Version(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect to cluster %s: %w", cfg.Host, err)
			}

			zones, err := client.ListZones(ctx)
			if err != nil {
				return fmt.Errorf("listing zones: %w", err)
			}
			vnets, err := client.ListVnets(ctx)
			if err != nil {
				return fmt.Errorf("listing vnets: %w", err)
			}

			subnets := 0
			for _, v := range vnets {
				list, err := client.ListSubnets(ctx, v.Vnet)
				if err != nil {
					return fmt.Errorf("listing subnets of vnet %s: %w", v.Vnet, err)
				}
				subnets += len(list)
			}

			fmt.Printf("Cluster:     %s\n", cfg.Host)
			fmt.Printf("API version: %s\n", version)
			fmt.Printf("Zones:       %d\n", len(zones))
			fmt.Printf("Vnets:       %d\n", len(vnets))
			fmt.Printf("Subnets:     %d\n", subnets)
			return nil
		},
	}
}
