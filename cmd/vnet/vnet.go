// Package vnet provides the SDN vnet subcommands.
package vnet

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/cmd/internal/runner"
	"github.com/pvetools/pvesdnctl/internal/model"
)

// Commands returns the vnet subcommands.
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
		Usage:       "Ensure a vnet exists",
		Description: "Create the vnet in its zone when missing. An existing vnet is left untouched.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vnet", Usage: "Vnet identifier", Required: true},
			&cli.StringFlag{Name: "zone", Usage: "Parent zone identifier", Required: true},
			&cli.StringFlag{Name: "alias", Usage: "Vnet alias"},
			&cli.IntFlag{Name: "tag", Usage: "VLAN or VXLAN tag"},
			&cli.StringFlag{Name: "type", Usage: "Vnet type"},
			&cli.BoolFlag{Name: "vlanaware", Usage: "Allow VLAN tags inside the vnet"},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := model.VnetConfig{
				Vnet:      cmd.GetString("vnet"),
				Zone:      cmd.GetString("zone"),
				Alias:     cmd.GetString("alias"),
				Tag:       cmd.GetInt("tag"),
				Type:      cmd.GetString("type"),
				VLANAware: cmd.GetBool("vlanaware"),
			}

			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.ApplyVnet(ctx, cfg)
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
		Usage:       "Ensure a vnet is absent",
		Description: "Delete the vnet when present. Fails when subnets still reference it.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "vnet", Usage: "Vnet identifier", Required: true},
			&cli.BoolFlag{Name: "check", Usage: "Report what would change without mutating"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			m, cleanup, err := runner.Manager(cmd, cmd.GetBool("check"))
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := m.DeleteVnet(ctx, cmd.GetString("vnet"))
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
		Usage:       "List vnets",
		Description: "List every SDN vnet on the cluster",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			client, _, err := runner.Client(cmd)
			if err != nil {
				return err
			}

			vnets, err := client.ListVnets(ctx)
			if err != nil {
				return fmt.Errorf("listing vnets: %w", err)
			}

			fmt.Printf("%-20s %-20s %-20s %s\n", "VNET", "ZONE", "ALIAS", "TAG")
			for _, v := range vnets {
				tag := ""
				if v.Tag != 0 {
					tag = fmt.Sprintf("%d", v.Tag)
				}
				fmt.Printf("%-20s %-20s %-20s %s\n", v.Vnet, v.Zone, v.Alias, tag)
			}
			return nil
		},
	}
}
