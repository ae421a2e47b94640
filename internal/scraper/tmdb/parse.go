package tmdb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slipstream/metascrape/internal/scraper"
)

const dateLayout = "2006-01-02"

// Parse converts a sub-request body into an entity update limited to req.Fields.
func (p *Provider) Parse(req scraper.DetailRequest, body []byte) (*scraper.Update, error) {
	switch req.Kind {
	case scraper.KindInfo:
		var info movieInfo
		if err := json.Unmarshal(body, &info); err != nil {
			return nil, fmt.Errorf("failed to decode movie: %w", err)
		}
		return p.parseInfo(info, req.Fields), nil
	case scraper.KindCast:
		var casts castsResponse
		if err := json.Unmarshal(body, &casts); err != nil {
			return nil, fmt.Errorf("failed to decode casts: %w", err)
		}
		return p.parseCasts(casts, req.Fields), nil
	case scraper.KindTrailers:
		var trailers trailersResponse
		if err := json.Unmarshal(body, &trailers); err != nil {
			return nil, fmt.Errorf("failed to decode trailers: %w", err)
		}
		return parseTrailers(trailers, req.Fields), nil
	case scraper.KindImages:
		var images imagesResponse
		if err := json.Unmarshal(body, &images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
		return p.parseImages(images, req.Fields, req.Locale), nil
	case scraper.KindReleases:
		var releases releasesResponse
		if err := json.Unmarshal(body, &releases); err != nil {
			return nil, fmt.Errorf("failed to decode releases: %w", err)
		}
		return p.parseReleases(releases, req.Fields, req.Locale), nil
	}
	return nil, fmt.Errorf("unsupported request kind %s", req.Kind)
}

func (p *Provider) parseInfo(info movieInfo, fields scraper.FieldSet) *scraper.Update {
	u := &scraper.Update{}
	if info.ID > 0 {
		u.SetID(scraper.IDTmdb, strconv.Itoa(info.ID))
	}
	u.SetID(scraper.IDImdb, info.ImdbID)

	if fields.Has(scraper.FieldTitle) {
		u.Title = scraper.Str(info.Title)
		u.OriginalTitle = scraper.Str(info.OriginalTitle)
	}
	if fields.Has(scraper.FieldCollection) && info.BelongsToCollection != nil {
		u.Collection = scraper.Str(info.BelongsToCollection.Name)
	}
	if fields.Has(scraper.FieldOverview) && info.Overview != "" {
		u.Overview = scraper.Str(info.Overview)
		if p.config.PlotAsOutline {
			u.Outline = scraper.Str(info.Overview)
		}
	}
	// Rating and votes are set together or not at all.
	if fields.Has(scraper.FieldRating) && info.VoteAverage != nil && *info.VoteAverage >= 0 {
		u.Rating = scraper.Ptr(*info.VoteAverage)
		u.Votes = scraper.Ptr(info.VoteCount)
	}
	if fields.Has(scraper.FieldTagline) {
		u.Tagline = scraper.Str(info.Tagline)
	}
	if fields.Has(scraper.FieldReleased) {
		if d, ok := parseDate(info.ReleaseDate); ok {
			u.Released = &d
		}
	}
	if fields.Has(scraper.FieldRuntime) && info.Runtime != nil && *info.Runtime >= 0 {
		u.Runtime = scraper.Ptr(*info.Runtime)
	}
	if fields.Has(scraper.FieldGenres) {
		for _, g := range info.Genres {
			if g.ID == nil || g.Name == "" {
				continue
			}
			u.Genres = append(u.Genres, p.mapper.Genre(g.Name))
		}
	}
	if fields.Has(scraper.FieldStudios) {
		for _, c := range info.ProductionCompanies {
			if c.ID == nil || c.Name == "" {
				continue
			}
			u.Studios = append(u.Studios, p.mapper.Studio(c.Name))
		}
	}
	if fields.Has(scraper.FieldCountries) {
		for _, c := range info.ProductionCountries {
			if c.Name == "" {
				continue
			}
			u.Countries = append(u.Countries, p.mapper.Country(c.Name))
		}
	}
	return u
}

func (p *Provider) parseCasts(casts castsResponse, fields scraper.FieldSet) *scraper.Update {
	u := &scraper.Update{}
	base := p.ImageBaseURL()

	if fields.Has(scraper.FieldActors) {
		for _, c := range casts.Cast {
			if c.Name == "" {
				continue
			}
			a := scraper.Actor{Name: c.Name, Role: c.Character}
			if c.ProfilePath != "" {
				a.Thumb = base + "original" + c.ProfilePath
			}
			u.Actors = append(u.Actors, a)
		}
	}

	var writers, directors []string
	for _, m := range casts.Crew {
		if m.Name == "" {
			continue
		}
		if m.Department == "Writing" {
			writers = appendUnique(writers, m.Name)
		}
		if m.Department == "Directing" && m.Job == "Director" {
			directors = appendUnique(directors, m.Name)
		}
	}
	if fields.Has(scraper.FieldWriter) {
		u.Writer = scraper.Str(strings.Join(writers, ", "))
	}
	if fields.Has(scraper.FieldDirector) {
		u.Director = scraper.Str(strings.Join(directors, ", "))
	}
	return u
}

func parseTrailers(trailers trailersResponse, fields scraper.FieldSet) *scraper.Update {
	u := &scraper.Update{}
	// The first listed trailer is usually the best one.
	if fields.Has(scraper.FieldTrailer) && len(trailers.Youtube) > 0 && trailers.Youtube[0].Source != "" {
		u.Trailer = scraper.Str("https://www.youtube.com/watch?v=" + trailers.Youtube[0].Source)
	}
	return u
}

func (p *Provider) parseImages(images imagesResponse, fields scraper.FieldSet, loc scraper.Locale) *scraper.Update {
	u := &scraper.Update{}
	base := p.ImageBaseURL()

	if fields.Has(scraper.FieldBackdrop) {
		for _, b := range images.Backdrops {
			if b.FilePath == "" {
				continue
			}
			u.Backdrops = append(u.Backdrops, scraper.Image{
				ThumbURL:    base + "w780" + b.FilePath,
				OriginalURL: base + "original" + b.FilePath,
				Width:       b.Width,
				Height:      b.Height,
			})
		}
	}

	if fields.Has(scraper.FieldPoster) {
		var preferred, other []scraper.Image
		for _, pe := range images.Posters {
			if pe.FilePath == "" {
				continue
			}
			img := scraper.Image{
				ThumbURL:    base + "w342" + pe.FilePath,
				OriginalURL: base + "original" + pe.FilePath,
				Width:       pe.Width,
				Height:      pe.Height,
				Language:    pe.ISO639,
			}
			if img.Language == loc.Language() {
				preferred = append(preferred, img)
			} else {
				other = append(other, img)
			}
		}
		u.Posters = append(preferred, other...)
	}
	return u
}

func (p *Provider) parseReleases(releases releasesResponse, fields scraper.FieldSet, loc scraper.Locale) *scraper.Update {
	u := &scraper.Update{}
	if !fields.Has(scraper.FieldCertification) {
		return u
	}
	if cert := pickCertification(releases.Countries, loc); cert != "" {
		u.Certification = scraper.Str(p.mapper.Certification(cert))
	}
	return u
}

// pickCertification applies the locale preference cascade: the locale's own
// country, US for US locales, GB for English locales, then the locale's
// country again, US and GB. The first non-empty candidate wins.
func pickCertification(countries []releaseEntry, loc scraper.Locale) string {
	var us, gb, local string
	country := strings.ToUpper(loc.Country())
	for _, c := range countries {
		iso := strings.ToUpper(c.ISO3166)
		switch iso {
		case "US":
			us = c.Certification
		case "GB":
			gb = c.Certification
		}
		if country != "" && iso == country {
			local = c.Certification
		}
	}

	candidates := []string{local}
	if country == "US" {
		candidates = append(candidates, us)
	}
	if loc.Language() == "en" {
		candidates = append(candidates, gb)
	}
	candidates = append(candidates, local, us, gb)

	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// ParseSearch parses a /search/movie page or, for lookups, a single movie.
func (p *Provider) ParseSearch(body []byte, lookup bool) (*scraper.SearchPage, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if lookup || resp.Results == nil {
		page := &scraper.SearchPage{Page: 1, TotalPages: 1}
		if resp.ID > 0 {
			page.Results = []scraper.SearchCandidate{toCandidate(resp.searchEntry)}
		}
		return page, nil
	}

	page := &scraper.SearchPage{
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		Results:    make([]scraper.SearchCandidate, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		page.Results = append(page.Results, toCandidate(r))
	}
	return page, nil
}

// toCandidate maps a TMDB entry. An id of 0 becomes an empty ID.
func toCandidate(e searchEntry) scraper.SearchCandidate {
	c := scraper.SearchCandidate{Title: e.Title, OriginalTitle: e.OriginalTitle}
	if e.ID > 0 {
		c.ID = strconv.Itoa(e.ID)
	}
	if d, ok := parseDate(e.ReleaseDate); ok {
		c.Released = d
	}
	return c
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
