package cmd

import (
	"github.com/spf13/cobra"
)

func newProvidersCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List metadata providers and their loadable fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.newService()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), svc.Providers())
		},
	}
}
