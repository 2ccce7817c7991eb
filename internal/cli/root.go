// Package cli wires the auric commands: every command builds requests,
// queues them on the engine, and drives one Wait.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
	"github.com/auric-sh/auric/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	BaseURL        string
	DBPath         string
	MaxConnections int
	ConnectTimeout time.Duration
	Verbose        bool
}

// NewRootCommand creates the root command for the auric CLI. Flag defaults
// come from the environment-backed configuration.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "auric",
		Short:         "An asynchronous client for the Arch User Repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.BaseURL, "baseurl", cfg.BaseURL, "AUR server base URL")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", cfg.DBPath, "path to the local package-metadata cache")
	cmd.PersistentFlags().IntVar(&opts.MaxConnections, "max-connections", cfg.MaxConnections, "maximum simultaneous connections (0 = unlimited)")
	cmd.PersistentFlags().DurationVar(&opts.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "connection timeout (0 = none)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose engine tracing")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewDownloadCommand(opts))
	cmd.AddCommand(NewPkgbuildCommand(opts))
	cmd.AddCommand(NewCloneCommand(opts))

	return cmd
}

// newClient builds an engine from the root options. The logger writes to the
// command's error stream so structured output never mixes with results.
func (o *RootOptions) newClient(cmd *cobra.Command) (*aur.Client, error) {
	level := config.Load().LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}

	client, err := aur.New(o.BaseURL, config.NewLogger(cmd.ErrOrStderr(), level))
	if err != nil {
		return nil, err
	}
	client.SetMaxConnections(o.MaxConnections)
	client.SetConnectTimeout(o.ConnectTimeout)
	if o.Verbose {
		client.SetDebug(aur.DebugVerbose, nil)
	}
	return client, nil
}

// errRequestsFailed is the uniform batch-failure error: details were already
// reported per callback.
var errRequestsFailed = fmt.Errorf("one or more requests failed")
