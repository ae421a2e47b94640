package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/scraper"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/"
)

var ErrAPIKeyMissing = errors.New("TMDB API key is not configured")

var (
	imdbIDPattern = regexp.MustCompile(`^tt\d+$`)
	tmdbIDPattern = regexp.MustCompile(`^id(\d+)$`)
)

var movieRoutes = []scraper.Route{
	{
		Kind: scraper.KindInfo,
		Fields: scraper.Fields(
			scraper.FieldTitle, scraper.FieldTagline, scraper.FieldRating, scraper.FieldReleased,
			scraper.FieldRuntime, scraper.FieldOverview, scraper.FieldGenres, scraper.FieldStudios,
			scraper.FieldCountries, scraper.FieldCollection,
		),
		Always: true,
	},
	{Kind: scraper.KindCast, Fields: scraper.Fields(scraper.FieldActors, scraper.FieldDirector, scraper.FieldWriter)},
	{Kind: scraper.KindTrailers, Fields: scraper.Fields(scraper.FieldTrailer)},
	{Kind: scraper.KindImages, Fields: scraper.Fields(scraper.FieldPoster, scraper.FieldBackdrop)},
	{Kind: scraper.KindReleases, Fields: scraper.Fields(scraper.FieldCertification)},
}

// Config holds TMDB provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	ImageBaseURL  string
	PlotAsOutline bool
	Mapper        scraper.Mapper
}

// Provider loads movie metadata from The Movie Database.
type Provider struct {
	config Config
	mapper scraper.Mapper
	logger zerolog.Logger

	mu        sync.RWMutex
	imageBase string
}

// New creates a new TMDB provider.
func New(cfg Config, logger zerolog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	mapper := cfg.Mapper
	if mapper == nil {
		mapper = scraper.IdentityMapper{}
	}
	return &Provider{
		config:    cfg,
		mapper:    mapper,
		imageBase: withSlash(cfg.ImageBaseURL),
		logger:    logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (p *Provider) IsConfigured() bool {
	return p.config.APIKey != ""
}

func (p *Provider) MediaTypes() []scraper.MediaType {
	return []scraper.MediaType{scraper.MediaMovie}
}

func (p *Provider) Routes(media scraper.MediaType) []scraper.Route {
	if media != scraper.MediaMovie {
		return nil
	}
	return movieRoutes
}

// Configure fetches the image base URL from /configuration. The configured
// default stays in place when the request fails.
func (p *Provider) Configure(ctx context.Context, t scraper.Transport) error {
	if !p.IsConfigured() {
		return ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", p.config.APIKey)
	resp := t.Get(ctx, p.config.BaseURL+"/configuration?"+params.Encode(), scraper.JSONHeader())
	if e := scraper.Classify(resp, nil); e != nil {
		return e
	}

	var cfg configurationResponse
	if err := json.Unmarshal(resp.Body, &cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	base := cfg.Images.SecureBaseURL
	if base == "" {
		base = cfg.Images.BaseURL
	}
	if base == "" {
		return nil
	}

	p.mu.Lock()
	p.imageBase = withSlash(base)
	p.mu.Unlock()

	p.logger.Debug().Str("imageBase", base).Msg("Loaded TMDB configuration")
	return nil
}

// ImageBaseURL returns the prefix used for image URLs.
func (p *Provider) ImageBaseURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.imageBase
}

// RequestURL builds the URL of one movie sub-request.
func (p *Provider) RequestURL(req scraper.DetailRequest) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}

	var suffix string
	switch req.Kind {
	case scraper.KindInfo:
	case scraper.KindCast:
		suffix = "/casts"
	case scraper.KindTrailers:
		suffix = "/trailers"
	case scraper.KindImages:
		suffix = "/images"
	case scraper.KindReleases:
		suffix = "/releases"
	default:
		return "", fmt.Errorf("unsupported request kind %s", req.Kind)
	}

	params := p.baseParams(req.Locale)
	if req.Kind == scraper.KindImages {
		params.Set("include_image_language", "en,null,"+req.Locale.Language())
	}
	return p.movieURL(req.ID, suffix, params), nil
}

// LookupID recognizes IMDb ids ("tt0133093") and TMDB ids written as "id603".
func (p *Provider) LookupID(raw string) (string, bool) {
	if imdbIDPattern.MatchString(raw) {
		return raw, true
	}
	if m := tmdbIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

func (p *Provider) LookupURL(id string, q scraper.Query) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	params := p.baseParams(q.Locale)
	params.Set("include_adult", strconv.FormatBool(q.IncludeAdult))
	return p.movieURL(id, "", params), nil
}

func (p *Provider) SearchURL(title, year string, page int, q scraper.Query) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	params := p.baseParams(q.Locale)
	params.Set("query", title)
	params.Set("include_adult", strconv.FormatBool(q.IncludeAdult))
	if year != "" {
		params.Set("year", year)
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return p.config.BaseURL + "/search/movie?" + params.Encode(), nil
}

func (p *Provider) baseParams(loc scraper.Locale) url.Values {
	params := url.Values{}
	params.Set("api_key", p.config.APIKey)
	params.Set("language", loc.String())
	return params
}

func (p *Provider) movieURL(id, suffix string, params url.Values) string {
	return fmt.Sprintf("%s/movie/%s%s?%s", p.config.BaseURL, url.PathEscape(id), suffix, params.Encode())
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
