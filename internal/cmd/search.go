package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/scraper"
)

type searchOutput struct {
	Provider string                 `yaml:"provider"`
	Query    string                 `yaml:"query"`
	Results  []scraper.SearchResult `yaml:"results"`
	Error    *outputError           `yaml:"error,omitempty"`
}

func newSearchCommand(root *rootOptions) *cobra.Command {
	var adult bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a provider by title",
		Long: `Search a provider by free text. A trailing year in parentheses narrows the
search, e.g. "The Matrix (1999)". A provider id such as tt0133093 is looked up
directly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.newService()
			if err != nil {
				return err
			}

			req := metadata.SearchRequest{
				Provider: root.provider,
				Query:    strings.Join(args, " "),
			}
			if cmd.Flags().Changed("adult") {
				req.IncludeAdult = &adult
			}

			results, err := svc.Search(cmd.Context(), req)
			out := searchOutput{Provider: a.cfg.Metadata.DefaultProvider, Query: req.Query, Results: results}
			if req.Provider != "" {
				out.Provider = req.Provider
			}
			if out.Results == nil {
				out.Results = []scraper.SearchResult{}
			}
			if err != nil {
				var se *scraper.Error
				if !errors.As(err, &se) || len(results) == 0 {
					return err
				}
				out.Error = toOutputError(se)
			}
			return writeYAML(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&adult, "adult", false, "Include adult titles (default from config)")
	return cmd
}
