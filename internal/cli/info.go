package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
	"github.com/auric-sh/auric/internal/model"
	"github.com/auric-sh/auric/internal/store"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Cached bool
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info PKG...",
		Short: "Show package details",
		Long: `Show detailed information for the named packages. With --cached,
answers come from the local metadata cache without touching the network.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Cached {
				return runInfoCached(cmd, opts, args)
			}
			return runInfo(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Cached, "cached", false, "serve from the local cache, no network")

	return cmd
}

func runInfo(cmd *cobra.Command, opts *InfoOptions, pkgs []string) error {
	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	var results []model.Package
	err = client.QueueRpcRequest(aur.NewInfoRequest(pkgs...), func(resp *aur.RpcResponse, err error) int {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: info: %v\n", err)
			return 0
		}
		results = resp.Results
		return 0
	})
	if err != nil {
		return err
	}

	code := client.Wait()

	for _, p := range results {
		printPackage(cmd.OutOrStdout(), &p)
	}
	cacheResults(cmd, opts.RootOptions, results)

	if code != 0 {
		return errRequestsFailed
	}
	return nil
}

func runInfoCached(cmd *cobra.Command, opts *InfoOptions, pkgs []string) error {
	s, err := store.NewSQLiteStore(opts.DBPath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	missing := false
	for _, name := range pkgs {
		p, err := s.GetPackage(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: not in cache\n", name)
			missing = true
			continue
		}
		if err != nil {
			return err
		}
		printPackage(cmd.OutOrStdout(), p)
	}

	if missing {
		return errRequestsFailed
	}
	return nil
}

func printPackage(w io.Writer, p *model.Package) {
	fmt.Fprintf(w, "Name            : %s\n", p.Name)
	fmt.Fprintf(w, "Version         : %s\n", p.Version)
	fmt.Fprintf(w, "Description     : %s\n", p.Description)
	fmt.Fprintf(w, "URL             : %s\n", p.URL)
	fmt.Fprintf(w, "Maintainer      : %s\n", p.Maintainer)
	fmt.Fprintf(w, "Votes           : %d\n", p.NumVotes)
	fmt.Fprintf(w, "Popularity      : %g\n", p.Popularity)
	if len(p.Depends) > 0 {
		fmt.Fprintf(w, "Depends On      : %s\n", strings.Join(p.Depends, "  "))
	}
	if len(p.License) > 0 {
		fmt.Fprintf(w, "Licenses        : %s\n", strings.Join(p.License, "  "))
	}
	if p.OutOfDate != nil {
		fmt.Fprintf(w, "Out Of Date     : %s\n", time.Unix(*p.OutOfDate, 0).UTC().Format(time.DateOnly))
	}
	fmt.Fprintln(w)
}

// cacheResults records fetched metadata in the local cache. Failures are
// reported but never fail the command; the cache is an optimization.
func cacheResults(cmd *cobra.Command, opts *RootOptions, pkgs []model.Package) {
	if len(pkgs) == 0 {
		return
	}

	s, err := store.NewSQLiteStore(opts.DBPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: open cache: %v\n", err)
		return
	}
	defer s.Close()

	if err := s.UpsertPackages(context.Background(), pkgs); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: update cache: %v\n", err)
	}
}
