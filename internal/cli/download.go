package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
)

// DownloadOptions holds flags for the download command.
type DownloadOptions struct {
	*RootOptions
	OutDir string
}

// NewDownloadCommand creates the download command.
func NewDownloadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DownloadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "download PKG...",
		Short: "Download snapshot tarballs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "outdir", ".", "directory to write tarballs into")

	return cmd
}

func runDownload(cmd *cobra.Command, opts *DownloadOptions, pkgs []string) error {
	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	writeFailed := false
	for _, pkg := range pkgs {
		dest := filepath.Join(opts.OutDir, pkg+".tar.gz")
		err := client.QueueTarballRequest(aur.NewTarballRequest(pkg), func(resp *aur.RawResponse, err error) int {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: download %s: %v\n", pkg, err)
				return 0
			}
			if err := os.WriteFile(dest, resp.Bytes, 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: write %s: %v\n", dest, err)
				writeFailed = true
				return 0
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", dest)
			return 0
		})
		if err != nil {
			return err
		}
	}

	if client.Wait() != 0 || writeFailed {
		return errRequestsFailed
	}
	return nil
}
