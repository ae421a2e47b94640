package omdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/scraper"
)

const (
	DefaultBaseURL = "https://www.omdbapi.com/"
	pageSize       = 10
	notAvailable   = "N/A"
)

var (
	ErrAPIKeyMissing = errors.New("OMDb API key is not configured")
	ErrAPIError      = errors.New("OMDb API error")
)

var imdbIDPattern = regexp.MustCompile(`^tt\d+$`)

var infoFields = scraper.Fields(
	scraper.FieldTitle, scraper.FieldRating, scraper.FieldReleased, scraper.FieldRuntime,
	scraper.FieldCertification, scraper.FieldOverview, scraper.FieldPoster, scraper.FieldActors,
	scraper.FieldGenres, scraper.FieldStudios, scraper.FieldCountries, scraper.FieldDirector,
	scraper.FieldWriter,
)

// Config holds OMDb provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	SearchType    string // "movie", "series" or "episode"; empty searches all
	PlotAsOutline bool
	Mapper        scraper.Mapper
}

// Provider loads metadata from the OMDb API. Every field comes from a single
// title request.
type Provider struct {
	config Config
	mapper scraper.Mapper
	logger zerolog.Logger
}

// New creates a new OMDb provider.
func New(cfg Config, logger zerolog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	mapper := cfg.Mapper
	if mapper == nil {
		mapper = scraper.IdentityMapper{}
	}
	return &Provider{
		config: cfg,
		mapper: mapper,
		logger: logger.With().Str("component", "omdb").Logger(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "omdb"
}

// IsConfigured returns true if the API key is set.
func (p *Provider) IsConfigured() bool {
	return p.config.APIKey != ""
}

func (p *Provider) MediaTypes() []scraper.MediaType {
	return []scraper.MediaType{scraper.MediaMovie, scraper.MediaShow, scraper.MediaEpisode}
}

func (p *Provider) Routes(media scraper.MediaType) []scraper.Route {
	switch media {
	case scraper.MediaMovie, scraper.MediaShow, scraper.MediaEpisode:
		return []scraper.Route{{Kind: scraper.KindInfo, Fields: infoFields, Always: true}}
	}
	return nil
}

func (p *Provider) RequestURL(req scraper.DetailRequest) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	if req.Kind != scraper.KindInfo {
		return "", fmt.Errorf("unsupported request kind %s", req.Kind)
	}
	params := p.baseParams()
	params.Set("i", req.ID)
	params.Set("plot", "full")
	return p.config.BaseURL + "?" + params.Encode(), nil
}

// Parse converts a title response into an update limited to req.Fields.
func (p *Provider) Parse(req scraper.DetailRequest, body []byte) (*scraper.Update, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Response == "False" {
		return nil, fmt.Errorf("%w: %s", ErrAPIError, resp.Error)
	}

	fields := req.Fields
	u := &scraper.Update{}
	u.SetID(scraper.IDImdb, value(resp.ImdbID))

	if fields.Has(scraper.FieldTitle) {
		u.Title = scraper.Str(value(resp.Title))
	}
	if fields.Has(scraper.FieldOverview) {
		u.Overview = scraper.Str(value(resp.Plot))
		if p.config.PlotAsOutline {
			u.Outline = u.Overview
		}
	}
	if fields.Has(scraper.FieldRating) {
		if rating, err := strconv.ParseFloat(value(resp.ImdbRating), 64); err == nil {
			u.Rating = scraper.Ptr(rating)
			votes, _ := strconv.Atoi(strings.ReplaceAll(value(resp.ImdbVotes), ",", ""))
			u.Votes = scraper.Ptr(votes)
		}
	}
	if fields.Has(scraper.FieldReleased) {
		if d, err := time.Parse("02 Jan 2006", value(resp.Released)); err == nil {
			u.Released = &d
		}
	}
	if fields.Has(scraper.FieldRuntime) {
		if n, ok := parseRuntime(value(resp.Runtime)); ok {
			u.Runtime = scraper.Ptr(n)
		}
	}
	if fields.Has(scraper.FieldCertification) {
		if cert := value(resp.Rated); cert != "" {
			u.Certification = scraper.Str(p.mapper.Certification(cert))
		}
	}
	if fields.Has(scraper.FieldPoster) {
		if poster := value(resp.Poster); poster != "" {
			u.Posters = []scraper.Image{{ThumbURL: poster, OriginalURL: poster}}
		}
	}
	if fields.Has(scraper.FieldActors) {
		for _, name := range splitList(resp.Actors) {
			u.Actors = append(u.Actors, scraper.Actor{Name: name})
		}
	}
	if fields.Has(scraper.FieldGenres) {
		for _, g := range splitList(resp.Genre) {
			u.Genres = append(u.Genres, p.mapper.Genre(g))
		}
	}
	if fields.Has(scraper.FieldStudios) {
		for _, s := range splitList(resp.Production) {
			u.Studios = append(u.Studios, p.mapper.Studio(s))
		}
	}
	if fields.Has(scraper.FieldCountries) {
		for _, c := range splitList(resp.Country) {
			u.Countries = append(u.Countries, p.mapper.Country(c))
		}
	}
	if fields.Has(scraper.FieldDirector) {
		u.Director = scraper.Str(strings.Join(splitList(resp.Director), ", "))
	}
	if fields.Has(scraper.FieldWriter) {
		u.Writer = scraper.Str(strings.Join(splitList(resp.Writer), ", "))
	}
	return u, nil
}

// LookupID recognizes IMDb ids.
func (p *Provider) LookupID(raw string) (string, bool) {
	if imdbIDPattern.MatchString(raw) {
		return raw, true
	}
	return "", false
}

func (p *Provider) LookupURL(id string, q scraper.Query) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	params := p.baseParams()
	params.Set("i", id)
	return p.config.BaseURL + "?" + params.Encode(), nil
}

func (p *Provider) SearchURL(title, year string, page int, q scraper.Query) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	params := p.baseParams()
	params.Set("s", title)
	if year != "" {
		params.Set("y", year)
	}
	if p.config.SearchType != "" {
		params.Set("type", p.config.SearchType)
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return p.config.BaseURL + "?" + params.Encode(), nil
}

// ParseSearch parses a search page or a single title lookup. A "not found"
// answer is an empty page, not an error.
func (p *Provider) ParseSearch(body []byte, lookup bool) (*scraper.SearchPage, error) {
	if lookup {
		var resp Response
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		page := &scraper.SearchPage{Page: 1, TotalPages: 1}
		if resp.Response == "False" {
			if isNotFound(resp.Error) {
				return page, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrAPIError, resp.Error)
		}
		c := scraper.SearchCandidate{ID: value(resp.ImdbID), Title: value(resp.Title)}
		if d, err := time.Parse("02 Jan 2006", value(resp.Released)); err == nil {
			c.Released = d
		} else {
			c.Released = yearDate(resp.Year)
		}
		page.Results = []scraper.SearchCandidate{c}
		return page, nil
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if resp.Response == "False" {
		if isNotFound(resp.Error) {
			p.logger.Debug().Str("reason", resp.Error).Msg("Search returned no results")
			return &scraper.SearchPage{}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrAPIError, resp.Error)
	}

	total, _ := strconv.Atoi(resp.TotalResults)
	page := &scraper.SearchPage{
		TotalPages: (total + pageSize - 1) / pageSize,
		Results:    make([]scraper.SearchCandidate, 0, len(resp.Search)),
	}
	for _, item := range resp.Search {
		page.Results = append(page.Results, scraper.SearchCandidate{
			ID:       value(item.ImdbID),
			Title:    value(item.Title),
			Released: yearDate(item.Year),
		})
	}
	return page, nil
}

func (p *Provider) baseParams() url.Values {
	params := url.Values{}
	params.Set("apikey", p.config.APIKey)
	return params
}

func isNotFound(msg string) bool {
	return strings.HasSuffix(msg, "not found!") || msg == "Incorrect IMDb ID."
}

// value maps OMDb's "N/A" placeholder to an empty string.
func value(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

func splitList(s string) []string {
	s = value(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRuntime parses values such as "136 min".
func parseRuntime(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "min")))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// yearDate turns "1999" or "2008–2013" into January 1st of the first year.
func yearDate(s string) time.Time {
	s = value(s)
	if len(s) < 4 {
		return time.Time{}
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
}
