package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/auric-sh/auric/internal/aur"
	"github.com/auric-sh/auric/internal/model"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	SearchBy string
	Quiet    bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search TERM...",
		Short: "Search the AUR for packages",
		Long: `Search the AUR for packages matching the given terms. Results
from multiple terms are merged and deduplicated. No matches is not an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.SearchBy, "searchby", string(aur.SearchByNameDesc), "search dimension (name, name-desc, maintainer, depends, makedepends, optdepends, checkdepends)")
	cmd.Flags().BoolVar(&opts.Quiet, "quiet", false, "print package names only")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *SearchOptions, terms []string) error {
	by, err := aur.ParseSearchBy(opts.SearchBy)
	if err != nil {
		return err
	}

	client, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	found := make(map[string]model.Package)
	for _, term := range terms {
		err := client.QueueRpcRequest(aur.NewSearchRequest(by, term), func(resp *aur.RpcResponse, err error) int {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: search %q: %v\n", term, err)
				return 0
			}
			for _, p := range resp.Results {
				found[p.Name] = p
			}
			return 0
		})
		if err != nil {
			return err
		}
	}

	code := client.Wait()

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		if opts.Quiet {
			fmt.Fprintln(out, name)
			continue
		}
		p := found[name]
		fmt.Fprintf(out, "aur/%s %s\n    %s\n", p.Name, p.Version, p.Description)
	}

	cacheResults(cmd, opts.RootOptions, mapValues(found))

	if code != 0 {
		return errRequestsFailed
	}
	return nil
}

func mapValues(m map[string]model.Package) []model.Package {
	pkgs := make([]model.Package, 0, len(m))
	for _, p := range m {
		pkgs = append(pkgs, p)
	}
	return pkgs
}
