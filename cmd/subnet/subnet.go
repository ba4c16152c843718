// Package subnet provides the SDN subnet subcommands.
package subnet

import (
	"context"
	"fmt"
	"strings"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/cmd/internal/runner"
	"github.com/pvetools/pvesdnctl/internal/model"
)

// Commands returns the subnet subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		applyCommand(),
		deleteCommand(),
		listCommand(),
	}
}

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:        "apply",
		Usage:       "Ensure a subnet exists",
		Description: "Create the subnet in its vnet when missing. An existing subnet is left untouched.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subnet", Usage: "Subnet in CIDR form (e.g. 10.0.0.0/24)", Required: true},
			&cli.StringFlag{Name: "vnet", Usage: "Parent vnet identifier", Required: true},
			&cli.StringFlag{Name: "type", Usage: "Subnet type", DefaultValue: "subnet"},
			&cli.StringFlag{Name: "dhcp-dns-server", Usage: "IP address of the DNS server for DHCP leases"},
			&cli.StringFlag{Name: "dhcp-range", Usage: "DHCP ranges like start-address=10.0.0.10,end-address=10.0.0.20; separate multiple ranges with ';'"},
			&cli.StringFlag{Name: "dnszoneprefix", Usage: "DNS zone prefix"},
			&cli.StringFlag{Name: "gateway", Usage: "Gateway address"},
			&cli.BoolFlag{Name: "snat", Usage: "Enable source NAT"},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := model.SubnetConfig{
				Subnet:        cmd.GetString("subnet"),
				Vnet:          cmd.GetString("vnet"),
				Type:          cmd.GetString("type"),
				DHCPDNSServer: cmd.GetString("dhcp-dns-server"),
				DHCPRange:     parseRanges(cmd.GetString("dhcp-range")),
				DNSZonePrefix: cmd.GetString("dnszoneprefix"),
				Gateway:       cmd.GetString("gateway"),
				SNAT:          cmd.GetBool("snat"),
			}

			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.ApplySubnet(ctx, cfg)
			if err != nil {
				return err
			}
			return runner.PrintResult(res)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Ensure a subnet is absent",
		Description: "Delete the subnet from its vnet when present",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subnet", Usage: "Subnet in CIDR form", Required: true},
			&cli.StringFlag{Name: "vnet", Usage: "Parent vnet identifier", Required: true},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.DeleteSubnet(ctx, cmd.GetString("vnet"), cmd.GetString("subnet"))
			if err != nil {
				return err
			}
			return runner.PrintResult(res)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List subnets",
		Description: "List the subnets of one vnet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vnet", Usage: "Vnet identifier", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, _, err := runner.Client(cmd)
			if err != nil {
				return err
			}

			vnet := cmd.GetString("vnet")
			subnets, err := client.ListSubnets(ctx, vnet)
			if err != nil {
				return fmt.Errorf("listing subnets of vnet %s: %w", vnet, err)
			}

			fmt.Printf("%-24s %-20s %-12s %s\n", "SUBNET", "VNET", "TYPE", "GATEWAY")
			for _, s := range subnets {
				id := s.CIDR
				if id == "" {
					id = s.Subnet
				}
				fmt.Printf("%-24s %-20s %-12s %s\n", id, s.Vnet, s.Type, s.Gateway)
			}
			return nil
		},
	}
}

// parseRanges splits the dhcp-range flag. Ranges carry commas
// internally, so multiple ranges are separated with semicolons.
func parseRanges(raw string) []string {
	if raw == "" {
		return nil
	}
	var ranges []string
	for _, r := range strings.Split(raw, ";") {
		if r = strings.TrimSpace(r); r != "" {
			ranges = append(ranges, r)
		}
	}
	return ranges
}
