// Package zone provides the SDN zone subcommands.
package zone

import (
	"context"
	"fmt"
	"strings"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/cmd/internal/runner"
	"github.com/pvetools/pvesdnctl/internal/model"
)

// Commands returns the zone subcommands.
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
		Usage:       "Ensure a zone exists",
		Description: "Create the zone when missing. An existing zone is left untouched.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "zone", Usage: "Zone identifier", Required: true},
			&cli.StringFlag{Name: "type", Usage: "Zone type (evpn, faucet, qinq, simple, vlan, vxlan)", Required: true},
			&cli.BoolFlag{Name: "advertise-subnets", Usage: "Advertise EVPN subnets"},
			&cli.StringFlag{Name: "bridge", Usage: "Bridge name"},
			&cli.BoolFlag{Name: "bridge-disable-mac-learning", Usage: "Disable auto MAC learning on the bridge"},
			&cli.StringFlag{Name: "controller", Usage: "EVPN controller address"},
			&cli.StringFlag{Name: "dhcp", Usage: "DHCP backend name"},
			&cli.StringFlag{Name: "digest", Usage: "Configuration digest to guard against concurrent modification"},
			&cli.BoolFlag{Name: "disable-arp-nd-suppression", Usage: "Disable IPv4 ARP and IPv6 neighbor discovery suppression"},
			&cli.StringFlag{Name: "dns", Usage: "DNS API server"},
			&cli.StringFlag{Name: "dnszone", Usage: "DNS domain name"},
			&cli.IntFlag{Name: "dp-id", Usage: "Faucet dataplane id"},
			&cli.StringFlag{Name: "exitnodes", Usage: "Comma-separated EVPN exit node names"},
			&cli.BoolFlag{Name: "exitnodes-local-routing", Usage: "Allow exit nodes to connect to EVPN guests"},
			&cli.StringFlag{Name: "exitnodes-primary", Usage: "Primary exit node"},
			&cli.StringFlag{Name: "ipam", Usage: "IPAM backend name"},
			&cli.StringFlag{Name: "mac", Usage: "Anycast logical router MAC address"},
			&cli.IntFlag{Name: "mtu", Usage: "MTU"},
			&cli.StringFlag{Name: "nodes", Usage: "Comma-separated cluster node names"},
			&cli.StringFlag{Name: "peers", Usage: "Comma-separated VXLAN peer addresses"},
			&cli.StringFlag{Name: "reversedns", Usage: "Reverse DNS API server"},
			&cli.StringFlag{Name: "rt-import", Usage: "EVPN route targets to import"},
			&cli.IntFlag{Name: "tag", Usage: "Service VLAN tag"},
			&cli.StringFlag{Name: "vlan-protocol", Usage: "Service VLAN protocol (802.1q, 802.1ad)"},
			&cli.IntFlag{Name: "vrf-vxlan", Usage: "L3 VNI"},
			&cli.IntFlag{Name: "vxlan-port", Usage: "VXLAN tunnel UDP port"},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			zoneType := model.ZoneType(cmd.GetString("type"))
			if !zoneType.Valid() {
				return fmt.Errorf("unknown zone type %q (valid: %s)", zoneType, joinZoneTypes())
			}
			vlanProtocol := cmd.GetString("vlan-protocol")
			if vlanProtocol != "" && !model.ValidVLANProtocol(vlanProtocol) {
				return fmt.Errorf("unknown vlan protocol %q (valid: %s)", vlanProtocol, strings.Join(model.VLANProtocols, ", "))
			}

			cfg := model.ZoneConfig{
				Zone:                     cmd.GetString("zone"),
				Type:                     zoneType,
				AdvertiseSubnets:         cmd.GetBool("advertise-subnets"),
				Bridge:                   cmd.GetString("bridge"),
				BridgeDisableMACLearning: cmd.GetBool("bridge-disable-mac-learning"),
				Controller:               cmd.GetString("controller"),
				DHCP:                     cmd.GetString("dhcp"),
				Digest:                   cmd.GetString("digest"),
				DisableARPNDSuppression:  cmd.GetBool("disable-arp-nd-suppression"),
				DNS:                      cmd.GetString("dns"),
				DNSZone:                  cmd.GetString("dnszone"),
				DPID:                     cmd.GetInt("dp-id"),
				Exitnodes:                cmd.GetString("exitnodes"),
				ExitnodesLocalRouting:    cmd.GetBool("exitnodes-local-routing"),
				ExitnodesPrimary:         cmd.GetString("exitnodes-primary"),
				IPAM:                     cmd.GetString("ipam"),
				MAC:                      cmd.GetString("mac"),
				MTU:                      cmd.GetInt("mtu"),
				Nodes:                    cmd.GetString("nodes"),
				Peers:                    cmd.GetString("peers"),
				ReverseDNS:               cmd.GetString("reversedns"),
				RTImport:                 cmd.GetString("rt-import"),
				Tag:                      cmd.GetInt("tag"),
				VLANProtocol:             vlanProtocol,
				VRFVXLAN:                 cmd.GetInt("vrf-vxlan"),
				VXLANPort:                cmd.GetInt("vxlan-port"),
			}

			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.ApplyZone(ctx, cfg)
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
		Usage:       "Ensure a zone is absent",
		Description: "Delete the zone when present. Fails when vnets still reference it.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "zone", Usage: "Zone identifier", Required: true},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.DeleteZone(ctx, cmd.GetString("zone"))
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
		Usage:       "List zones",
		Description: "List every SDN zone on the cluster",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, _, err := runner.Client(cmd)
			if err != nil {
				return err
			}

			zones, err := client.ListZones(ctx)
			if err != nil {
				return fmt.Errorf("listing zones: %w", err)
			}

			fmt.Printf("%-20s %s\n", "ZONE", "TYPE")
			for _, z := range zones {
				fmt.Printf("%-20s %s\n", z.Zone, z.Type)
			}
			return nil
		},
	}
}

func joinZoneTypes() string {
	names := make([]string, len(model.ZoneTypes))
	for i, t := range model.ZoneTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
