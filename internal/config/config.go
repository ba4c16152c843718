// Package config resolves the cluster connection settings for one
// invocation. Values come from command-line flags first, then the
// PVESDN_* environment (a .env file loaded at startup counts as
// environment), then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paularlott/cli"
	"github.com/pvetools/pvesdnctl/internal/proxmox"
	"golang.org/x/term"
)

// Config holds the connection and data settings for one invocation.
type Config struct {
	Host        string // cluster API address, e.g. https://pve.example.com:8006
	User        string // user@realm
	Password    string
	TokenID     string
	TokenSecret string
	Insecure    bool // skip TLS certificate verification
	Timeout     int  // request timeout in seconds, 0 disables
	DataDir     string
}

// GetFlags returns the global connection flags shared by every command.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "Cluster API address (e.g. https://pve.example.com:8006)",
			EnvVars: []string{"PVESDN_HOST"},
			Global:  true,
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "API user in user@realm form (e.g. root@pam)",
			EnvVars: []string{"PVESDN_USER"},
			Global:  true,
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "API password (prompted when no credential is configured)",
			EnvVars: []string{"PVESDN_PASSWORD"},
			Global:  true,
		},
		&cli.StringFlag{
			Name:    "token-id",
			Usage:   "API token id (used together with --token-secret)",
			EnvVars: []string{"PVESDN_TOKEN_ID"},
			Global:  true,
		},
		&cli.StringFlag{
			Name:    "token-secret",
			Usage:   "API token secret",
			EnvVars: []string{"PVESDN_TOKEN_SECRET"},
			Global:  true,
		},
		&cli.BoolFlag{
			Name:    "insecure",
			Usage:   "Skip TLS certificate verification",
			EnvVars: []string{"PVESDN_INSECURE"},
			Global:  true,
		},
		&cli.IntFlag{
			Name:         "timeout",
			Usage:        "API request timeout in seconds (0 disables)",
			DefaultValue: 30,
			EnvVars:      []string{"PVESDN_TIMEOUT"},
			Global:       true,
		},
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Directory for the invocation history database",
			DefaultValue: "./data",
			EnvVars:      []string{"PVESDN_DATA_DIR"},
			Global:       true,
		},
	}
}

// FromCommand builds the configuration from the resolved flag values.
func FromCommand(cmd *cli.Command) *Config {
	return &Config{
		Host:        cmd.GetString("host"),
		User:        cmd.GetString("user"),
		Password:    cmd.GetString("password"),
		TokenID:     cmd.GetString("token-id"),
		TokenSecret: cmd.GetString("token-secret"),
		Insecure:    cmd.GetBool("insecure"),
		Timeout:     cmd.GetInt("timeout"),
		DataDir:     cmd.GetString("data-dir"),
	}
}

// HasCredentials reports whether a password or token pair is configured.
func (c *Config) HasCredentials() bool {
	return c.Password != "" || (c.TokenID != "" && c.TokenSecret != "")
}

// EnsureCredentials prompts for a password on the terminal when no
// credential is configured. Non-interactive invocations are left
// unchanged; Validate rejects them.
func (c *Config) EnsureCredentials() error {
	if c.HasCredentials() {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", c.User)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	c.Password = string(pw)
	return nil
}

// Validate checks that the configuration can reach a cluster.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("no cluster host configured (set --host or PVESDN_HOST)")
	}
	if c.User == "" {
		return errors.New("no API user configured (set --user or PVESDN_USER)")
	}
	if (c.TokenID == "") != (c.TokenSecret == "") {
		return errors.New("token id and token secret must be set together")
	}
	if !c.HasCredentials() {
		return errors.New("no credentials configured (set a password or an API token pair)")
	}
	return nil
}

// ClientConfig translates the configuration into client settings.
func (c *Config) ClientConfig() proxmox.Config {
	return proxmox.Config{
		Host:               c.Host,
		User:               c.User,
		Password:           c.Password,
		TokenID:            c.TokenID,
		TokenSecret:        c.TokenSecret,
		InsecureSkipVerify: c.Insecure,
		Timeout:            time.Duration(c.Timeout) * time.Second,
	}
}
