package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
)

// NewPkgbuildCommand creates the pkgbuild command.
func NewPkgbuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pkgbuild PKG...",
		Short: "Print PKGBUILDs to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPkgbuild(cmd, rootOpts, args)
		},
	}
}

func runPkgbuild(cmd *cobra.Command, opts *RootOptions, pkgs []string) error {
	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, pkg := range pkgs {
		err := client.QueuePkgbuildRequest(aur.NewPkgbuildRequest(pkg), func(resp *aur.RawResponse, err error) int {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: pkgbuild %s: %v\n", pkg, err)
				return 0
			}
			cmd.OutOrStdout().Write(resp.Bytes)
			return 0
		})
		if err != nil {
			return err
		}
	}

	if client.Wait() != 0 {
		return errRequestsFailed
	}
	return nil
}
