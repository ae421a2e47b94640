package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/scraper"
)

type loadOutput struct {
	Provider string                  `yaml:"provider"`
	Media    scraper.MediaType       `yaml:"media"`
	ID       string                  `yaml:"id"`
	Written  []string                `yaml:"written"`
	Errors   map[string]*outputError `yaml:"errors,omitempty"`
	Entity   scraper.Entity          `yaml:"entity"`
}

func newLoadCommand(root *rootOptions) *cobra.Command {
	var (
		media  string
		fields string
	)

	cmd := &cobra.Command{
		Use:   "load <id>",
		Short: "Load an entity by provider id",
		Long: `Load a movie, show, episode, artist or album by provider id and print the
fields that were filled. Sub-requests that fail are listed under "errors";
the remaining fields are still printed.`,
		Example: `  metascrape load 603
  metascrape load tt0133093 --provider omdb
  metascrape load 603 --provider fanarttv --fields poster,backdrop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, ok := scraper.ParseMediaType(media)
			if !ok {
				return fmt.Errorf("invalid media type %q", media)
			}
			fieldSet := scraper.AllFields
			if fields != "" {
				var err error
				if fieldSet, err = scraper.ParseFields(fields); err != nil {
					return err
				}
			}

			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.newService()
			if err != nil {
				return err
			}
			if err := svc.Configure(cmd.Context()); err != nil {
				a.log.Warn().Err(err).Msg("Provider configuration failed, continuing with defaults")
			}

			result, err := svc.Load(cmd.Context(), metadata.LoadRequest{
				Provider: root.provider,
				Media:    mediaType,
				ID:       args[0],
				Fields:   fieldSet,
			})
			if err != nil {
				return err
			}

			out := loadOutput{
				Provider: result.Report.Provider,
				Media:    result.Report.Media,
				ID:       args[0],
				Written:  make([]string, 0, result.Report.Written.Len()),
				Entity:   result.Entity,
			}
			for _, f := range result.Report.Written.Fields() {
				out.Written = append(out.Written, f.String())
			}
			if len(result.Report.Errors) > 0 {
				out.Errors = make(map[string]*outputError, len(result.Report.Errors))
				for kind, e := range result.Report.Errors {
					out.Errors[kind.String()] = toOutputError(e)
				}
			}
			return writeYAML(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&media, "media", "m", string(scraper.MediaMovie), "Media type: movie, show, episode, artist or album")
	cmd.Flags().StringVarP(&fields, "fields", "f", "", "Comma-separated fields to load (default all)")
	return cmd
}
