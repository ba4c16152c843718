// Package history provides the invocation history subcommands.
package history

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/internal/config"
	"github.com/pvetools/pvesdnctl/internal/history"
)

// Commands returns the history subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List recent invocations",
		Description: "Show the most recent apply and delete invocations, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:         "limit",
				Usage:        "Maximum number of records to show (0 shows all)",
				DefaultValue: 20,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.FromCommand(cmd)

			store, err := history.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.GetInt("limit"))
			if err != nil {
				return fmt.Errorf("listing history: %w", err)
			}

			fmt.Printf("%-20s %-8s %-24s %-7s %-6s %-8s %s\n",
				"TIME", "KIND", "RESOURCE", "ACTION", "CHECK", "CHANGED", "MESSAGE")
			for _, rec := range records {
				fmt.Printf("%-20s %-8s %-24s %-7s %-6t %-8t %s\n",
					rec.RecordedAt.Format("2006-01-02 15:04:05"),
					rec.Kind, rec.ResourceID, rec.Action, rec.Check, rec.Changed, rec.Msg)
			}
			return nil
		},
	}
}
