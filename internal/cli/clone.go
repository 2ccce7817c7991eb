package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
)

// CloneOptions holds flags for the clone command.
type CloneOptions struct {
	*RootOptions
	GitPath string
}

// NewCloneCommand creates the clone command.
func NewCloneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CloneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clone PKG...",
		Short: "Clone package repositories",
		Long: `Clone the git repositories of the named packages into the current
directory. A package that is already checked out is updated with a fetch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.GitPath, "git", "git", "git binary to run clones with")

	return cmd
}

func runClone(cmd *cobra.Command, opts *CloneOptions, pkgs []string) error {
	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()
	client.SetGitPath(opts.GitPath)

	for _, pkg := range pkgs {
		err := client.QueueCloneRequest(aur.NewCloneRequest(pkg), func(resp *aur.CloneResponse, err error) int {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: clone %s: %v\n", pkg, err)
				return 0
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", resp.Operation, resp.Path)
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
