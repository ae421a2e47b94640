// Package fanarttv loads artwork from fanart.tv. It has no search endpoint and
// serves a single Images request per entity.
package fanarttv

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/scraper"
)

const DefaultBaseURL = "https://webservice.fanart.tv/v3"

var ErrAPIKeyMissing = errors.New("fanart.tv API key is not configured")

var (
	movieFields = scraper.Fields(
		scraper.FieldPoster, scraper.FieldBackdrop, scraper.FieldLogo, scraper.FieldBanner,
		scraper.FieldThumb, scraper.FieldClearArt, scraper.FieldCdArt,
	)
	artistFields = scraper.Fields(
		scraper.FieldBackdrop, scraper.FieldThumb, scraper.FieldLogo, scraper.FieldBanner,
	)
	albumFields = scraper.Fields(scraper.FieldPoster, scraper.FieldCdArt)
)

// Config holds fanart.tv settings. ClientKey is the optional personal key.
type Config struct {
	APIKey            string
	ClientKey         string
	BaseURL           string
	PreferredDiscType string
}

// Provider implements scraper.DetailProvider for fanart.tv.
type Provider struct {
	config Config
	logger zerolog.Logger
}

// New creates a new fanart.tv provider.
func New(cfg Config, logger zerolog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Provider{
		config: cfg,
		logger: logger.With().Str("component", "fanarttv").Logger(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "fanarttv"
}

// IsConfigured returns true if the project API key is set.
func (p *Provider) IsConfigured() bool {
	return p.config.APIKey != ""
}

func (p *Provider) MediaTypes() []scraper.MediaType {
	return []scraper.MediaType{scraper.MediaMovie, scraper.MediaArtist, scraper.MediaAlbum}
}

func (p *Provider) Routes(media scraper.MediaType) []scraper.Route {
	var fields scraper.FieldSet
	switch media {
	case scraper.MediaMovie:
		fields = movieFields
	case scraper.MediaArtist:
		fields = artistFields
	case scraper.MediaAlbum:
		fields = albumFields
	default:
		return nil
	}
	return []scraper.Route{{Kind: scraper.KindImages, Fields: fields}}
}

// RequestURL builds the artwork URL. Movies are addressed by TMDB or IMDb id,
// artists and albums by MusicBrainz id.
func (p *Provider) RequestURL(req scraper.DetailRequest) (string, error) {
	if !p.IsConfigured() {
		return "", ErrAPIKeyMissing
	}
	if req.Kind != scraper.KindImages {
		return "", fmt.Errorf("unsupported request kind %s", req.Kind)
	}

	var path string
	switch req.Media {
	case scraper.MediaMovie:
		path = "/movies/"
	case scraper.MediaArtist:
		path = "/music/"
	case scraper.MediaAlbum:
		path = "/music/albums/"
	default:
		return "", fmt.Errorf("%w: %s", scraper.ErrUnsupportedMedia, req.Media)
	}

	params := url.Values{}
	params.Set("api_key", p.config.APIKey)
	if p.config.ClientKey != "" {
		params.Set("client_key", p.config.ClientKey)
	}
	return p.config.BaseURL + path + url.PathEscape(req.ID) + "?" + params.Encode(), nil
}

// Parse converts an artwork response into an update limited to req.Fields.
func (p *Provider) Parse(req scraper.DetailRequest, body []byte) (*scraper.Update, error) {
	lang := req.Locale.Language()
	switch req.Media {
	case scraper.MediaMovie:
		var resp movieResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode movie artwork: %w", err)
		}
		return p.parseMovie(resp, req.Fields, lang), nil
	case scraper.MediaArtist:
		var resp musicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode artist artwork: %w", err)
		}
		return p.parseArtist(resp, req.Fields, lang), nil
	case scraper.MediaAlbum:
		var resp musicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode album artwork: %w", err)
		}
		return p.parseAlbum(resp, req.ID, req.Fields, lang), nil
	}
	return nil, fmt.Errorf("%w: %s", scraper.ErrUnsupportedMedia, req.Media)
}

func (p *Provider) parseMovie(resp movieResponse, fields scraper.FieldSet, lang string) *scraper.Update {
	u := &scraper.Update{}
	u.SetID(scraper.IDTmdb, resp.TmdbID)
	u.SetID(scraper.IDImdb, resp.ImdbID)

	if fields.Has(scraper.FieldPoster) {
		u.Posters = p.images(resp.MoviePoster, lang, false)
	}
	if fields.Has(scraper.FieldBackdrop) {
		u.Backdrops = p.images(resp.MovieBackground, lang, false)
	}
	if fields.Has(scraper.FieldLogo) {
		u.Logos = p.images(slices.Concat(resp.HDMovieLogo, resp.MovieLogo), lang, false)
	}
	if fields.Has(scraper.FieldBanner) {
		u.Banners = p.images(resp.MovieBanner, lang, false)
	}
	if fields.Has(scraper.FieldThumb) {
		u.Thumbs = p.images(resp.MovieThumb, lang, false)
	}
	if fields.Has(scraper.FieldClearArt) {
		u.ClearArts = p.images(slices.Concat(resp.HDMovieClearArt, resp.MovieArt), lang, false)
	}
	if fields.Has(scraper.FieldCdArt) {
		u.CdArts = p.images(resp.MovieDisc, lang, true)
	}
	return u
}

func (p *Provider) parseArtist(resp musicResponse, fields scraper.FieldSet, lang string) *scraper.Update {
	u := &scraper.Update{}
	u.SetID(scraper.IDMusicBrainz, resp.MbID)

	if fields.Has(scraper.FieldBackdrop) {
		u.Backdrops = p.images(resp.ArtistBackground, lang, false)
	}
	if fields.Has(scraper.FieldThumb) {
		u.Thumbs = p.images(resp.ArtistThumb, lang, false)
	}
	if fields.Has(scraper.FieldLogo) {
		u.Logos = p.images(slices.Concat(resp.HDMusicLogo, resp.MusicLogo), lang, false)
	}
	if fields.Has(scraper.FieldBanner) {
		u.Banners = p.images(resp.MusicBanner, lang, false)
	}
	return u
}

func (p *Provider) parseAlbum(resp musicResponse, id string, fields scraper.FieldSet, lang string) *scraper.Update {
	u := &scraper.Update{}
	album, ok := resp.Albums[id]
	if !ok {
		p.logger.Debug().Str("mbid", id).Int("albums", len(resp.Albums)).Msg("Album missing from artwork response")
		return u
	}
	u.SetID(scraper.IDMusicBrainz, id)

	if fields.Has(scraper.FieldPoster) {
		u.Posters = p.images(album.AlbumCover, lang, false)
	}
	if fields.Has(scraper.FieldCdArt) {
		u.CdArts = p.images(album.CdArt, lang, false)
	}
	return u
}

// images converts and orders artwork: entries in the wanted language first,
// then English and language-neutral ones, then the rest. For disc art the
// preferred disc type wins within a language group. Likes break ties.
func (p *Provider) images(entries []artwork, lang string, disc bool) []scraper.Image {
	ranked := make([]artwork, 0, len(entries))
	for _, e := range entries {
		if e.URL != "" {
			ranked = append(ranked, e)
		}
	}

	slices.SortStableFunc(ranked, func(a, b artwork) int {
		if c := langRank(a.Lang, lang) - langRank(b.Lang, lang); c != 0 {
			return c
		}
		if disc {
			if c := p.discRank(a.DiscType) - p.discRank(b.DiscType); c != 0 {
				return c
			}
		}
		return likes(b) - likes(a)
	})

	images := make([]scraper.Image, 0, len(ranked))
	for _, e := range ranked {
		images = append(images, scraper.Image{
			ThumbURL:    previewURL(e.URL),
			OriginalURL: e.URL,
			Language:    normalizeLang(e.Lang),
		})
	}
	return images
}

func (p *Provider) discRank(discType string) int {
	if p.config.PreferredDiscType != "" && strings.EqualFold(discType, p.config.PreferredDiscType) {
		return 0
	}
	return 1
}

func langRank(entry, want string) int {
	entry = normalizeLang(entry)
	switch {
	case want != "" && entry == want:
		return 0
	case entry == "en" || entry == "":
		return 1
	}
	return 2
}

// normalizeLang maps fanart.tv's "00" (no language) to an empty string.
func normalizeLang(l string) string {
	if l == "00" {
		return ""
	}
	return l
}

func likes(a artwork) int {
	n, _ := strconv.Atoi(a.Likes)
	return n
}

// previewURL derives the thumbnail URL fanart.tv serves for every image.
func previewURL(u string) string {
	return strings.Replace(u, "/fanart/", "/preview/", 1)
}
