// Package runner wires one command invocation together: connection
// settings, cluster client, invocation history and the SDN manager.
package runner

import (
	"encoding/json"
	"os"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/internal/config"
	"github.com/pvetools/pvesdnctl/internal/history"
	"github.com/pvetools/pvesdnctl/internal/log"
	"github.com/pvetools/pvesdnctl/internal/proxmox"
	"github.com/pvetools/pvesdnctl/internal/sdn"
)

// Client resolves the configuration and builds the cluster client.
func Client(cmd *cli.Command) (*proxmox.Client, *config.Config, error) {
	cfg := config.FromCommand(cmd)
	if err := cfg.EnsureCredentials(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return proxmox.NewClient(cfg.ClientConfig()), cfg, nil
}

// History opens the invocation history store. Failure to open is logged
// and disables recording rather than failing the command.
func History(cfg *config.Config) (sdn.Recorder, func()) {
	store, err := history.Open(cfg.DataDir)
	if err != nil {
		log.Warn("Invocation history disabled", "error", err, "data_dir", cfg.DataDir)
		return nil, func() {}
	}
	return store, func() { store.Close() }
}

// Manager builds the manager for one apply or delete invocation. The
// returned cleanup closes the history store.
func Manager(cmd *cli.Command, check bool) (*sdn.Manager, func(), error) {
	client, cfg, err := Client(cmd)
	if err != nil {
		return nil, nil, err
	}
	rec, cleanup := History(cfg)
	return sdn.NewManager(client, check, rec), cleanup, nil
}

// PrintResult writes the result envelope as JSON on stdout.
func PrintResult(res sdn.Result) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(res)
}
