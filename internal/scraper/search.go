package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// MaxSearchPages caps the number of result pages fetched per search.
const MaxSearchPages = 3

// Tried in order; the first match wins.
var titleYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?) \((\d{4})\)$`),
	regexp.MustCompile(`^(.*?) - (\d{4})$`),
	regexp.MustCompile(`^(.*?) (\d{4})$`),
}

// ExtractTitleAndYear splits queries such as "Inception (2010)",
// "Inception - 2010" or "Inception 2010" into a title and a four digit year.
func ExtractTitleAndYear(q string) (title, year string, ok bool) {
	q = strings.TrimSpace(q)
	for _, re := range titleYearPatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		title = strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		return title, m[2], true
	}
	return "", "", false
}

// PaginatedSearch runs free-text and identifier searches against a
// SearchProvider and flattens the result pages.
type PaginatedSearch struct {
	transport Transport
	opts      options
	logger    zerolog.Logger
}

func NewPaginatedSearch(t Transport, logger zerolog.Logger, opts ...Option) *PaginatedSearch {
	return &PaginatedSearch{
		transport: t,
		opts:      buildOptions(opts),
		logger:    logger.With().Str("component", "search").Logger(),
	}
}

// Search returns the de-duplicated results in page order. When a page fails
// the results collected so far are returned together with the error.
func (s *PaginatedSearch) Search(ctx context.Context, p SearchProvider, q Query) ([]SearchResult, error) {
	raw := strings.TrimSpace(q.Raw)
	results := make([]SearchResult, 0)
	if raw == "" {
		return results, nil
	}
	if q.Locale.IsZero() {
		q.Locale = DefaultLocale
	}
	seen := make(map[string]struct{})

	if id, ok := p.LookupID(raw); ok {
		u, err := p.LookupURL(id, q)
		if err != nil {
			return results, err
		}
		page, serr := s.fetchPage(ctx, p, u, true)
		if serr != nil {
			return results, serr
		}
		results = appendCandidates(results, seen, page.Results)
		s.logger.Debug().
			Str("provider", p.Name()).
			Str("id", id).
			Int("results", len(results)).
			Msg("Lookup completed")
		return results, nil
	}

	title, year, ok := ExtractTitleAndYear(raw)
	if !ok {
		title, year = raw, ""
	}

	for pageNum := 1; pageNum <= MaxSearchPages; pageNum++ {
		u, err := p.SearchURL(title, year, pageNum, q)
		if err != nil {
			return results, err
		}
		page, serr := s.fetchPage(ctx, p, u, false)
		if serr != nil {
			s.logger.Warn().
				Str("provider", p.Name()).
				Str("query", raw).
				Int("page", pageNum).
				Str("type", serr.Type.String()).
				Str("technical", serr.Technical).
				Msg(serr.Message)
			return results, serr
		}
		results = appendCandidates(results, seen, page.Results)
		if pageNum >= page.TotalPages {
			break
		}
	}

	s.logger.Debug().
		Str("provider", p.Name()).
		Str("title", title).
		Str("year", year).
		Int("results", len(results)).
		Msg("Search completed")

	return results, nil
}

func (s *PaginatedSearch) fetchPage(ctx context.Context, p SearchProvider, u string, lookup bool) (*SearchPage, *Error) {
	resp := s.transport.Get(ctx, u, JSONHeader())
	if e := Classify(resp, nil); e != nil {
		s.opts.recorder.ObserveSearchPage(p.Name(), e.Type)
		return nil, e
	}
	page, err := p.ParseSearch(resp.Body, lookup)
	if err != nil {
		e := Classify(resp, err)
		s.opts.recorder.ObserveSearchPage(p.Name(), e.Type)
		return nil, e
	}
	s.opts.recorder.ObserveSearchPage(p.Name(), ErrorNone)
	return page, nil
}

func appendCandidates(results []SearchResult, seen map[string]struct{}, candidates []SearchCandidate) []SearchResult {
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		title := c.Title
		if title == "" {
			title = c.OriginalTitle
		}
		if title == "" {
			continue
		}
		seen[c.ID] = struct{}{}
		results = append(results, SearchResult{ID: c.ID, Title: title, Released: c.Released})
	}
	return results
}
