// Package cmd implements the metascrape command line.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/slipstream/metascrape/internal/config"
)

type rootOptions struct {
	configPath string
	provider   string
	language   string
}

// NewRootCommand builds the metascrape command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "metascrape",
		Short: "Scrape media metadata from online providers",
		Long: `metascrape searches metadata providers (TMDB, OMDb, fanart.tv) and loads
movies, shows, episodes, artists and albums by provider id.

Use "search" and "load" for one-off lookups printed as YAML, or "serve" to run
the HTTP API.`,
		Version:      config.Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&opts.provider, "provider", "p", "", "Metadata provider (default from config)")
	rootCmd.PersistentFlags().StringVarP(&opts.language, "language", "l", "", "Metadata language, e.g. en-US (default from config)")

	rootCmd.AddCommand(
		newSearchCommand(opts),
		newLoadCommand(opts),
		newProvidersCommand(opts),
		newServeCommand(opts),
	)
	return rootCmd
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
