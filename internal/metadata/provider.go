package metadata

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/scraper"
	"github.com/slipstream/metascrape/internal/scraper/fanarttv"
	"github.com/slipstream/metascrape/internal/scraper/omdb"
	"github.com/slipstream/metascrape/internal/scraper/tmdb"
)

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Name       string              `json:"name" yaml:"name"`
	Configured bool                `json:"configured" yaml:"configured"`
	Search     bool                `json:"search" yaml:"search"`
	MediaTypes []scraper.MediaType `json:"mediaTypes" yaml:"media_types"`
	Fields     map[string][]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// defaultProviders builds every provider known to the service from config.
func defaultProviders(cfg config.MetadataConfig, logger zerolog.Logger) []scraper.Provider {
	return []scraper.Provider{
		tmdb.New(tmdb.Config{
			APIKey:        cfg.TMDB.APIKey,
			BaseURL:       cfg.TMDB.BaseURL,
			ImageBaseURL:  cfg.TMDB.ImageBaseURL,
			PlotAsOutline: cfg.PlotAsOutline,
		}, logger),
		omdb.New(omdb.Config{
			APIKey:        cfg.OMDB.APIKey,
			BaseURL:       cfg.OMDB.BaseURL,
			PlotAsOutline: cfg.PlotAsOutline,
		}, logger),
		fanarttv.New(fanarttv.Config{
			APIKey:            cfg.FanartTV.APIKey,
			ClientKey:         cfg.FanartTV.ClientKey,
			BaseURL:           cfg.FanartTV.BaseURL,
			PreferredDiscType: cfg.FanartTV.PreferredDiscType,
		}, logger),
	}
}

// describe reports the capabilities of p. Fields lists the loadable fields
// per media type.
func describe(p scraper.Provider) ProviderInfo {
	info := ProviderInfo{
		Name:       p.Name(),
		Configured: p.IsConfigured(),
		MediaTypes: []scraper.MediaType{},
	}
	_, info.Search = p.(scraper.SearchProvider)

	dp, ok := p.(scraper.DetailProvider)
	if !ok {
		return info
	}
	info.MediaTypes = slices.Clone(dp.MediaTypes())
	info.Fields = make(map[string][]string, len(info.MediaTypes))
	for _, m := range info.MediaTypes {
		var names []string
		for _, f := range scraper.Supported(dp.Routes(m)).Fields() {
			names = append(names, f.String())
		}
		info.Fields[string(m)] = names
	}
	return info
}
