package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"
)

// fakeTransport serves canned responses keyed by URL.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]*Response
	calls     []string
	gate      chan struct{}
	started   chan string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]*Response)}
}

func (f *fakeTransport) respond(u string, status int, body string) {
	resp := &Response{Status: status, Body: []byte(body)}
	if status < 200 || status > 299 {
		resp.Err = &StatusError{Code: status}
	}
	f.mu.Lock()
	f.responses[u] = resp
	f.mu.Unlock()
}

func (f *fakeTransport) fail(u string, err error) {
	f.mu.Lock()
	f.responses[u] = &Response{Err: err}
	f.mu.Unlock()
}

func (f *fakeTransport) Get(ctx context.Context, u string, header http.Header) *Response {
	f.mu.Lock()
	f.calls = append(f.calls, u)
	resp, ok := f.responses[u]
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- u
	}
	if gate != nil {
		<-gate
	}
	if !ok {
		return &Response{Status: http.StatusNotFound, Err: &StatusError{Code: http.StatusNotFound}}
	}
	return resp
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeProvider writes every field its payload carries, regardless of kind,
// so tests can check that the merge mask does the filtering.
type fakeProvider struct {
	routes []Route
	media  []MediaType
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		media: []MediaType{MediaMovie, MediaShow},
		routes: []Route{
			{Kind: KindInfo, Fields: Fields(FieldTitle, FieldOverview, FieldReleased, FieldRuntime, FieldGenres, FieldRating)},
			{Kind: KindCast, Fields: Fields(FieldActors, FieldDirector, FieldWriter)},
			{Kind: KindImages, Fields: Fields(FieldPoster, FieldBackdrop)},
			{Kind: KindReleases, Fields: Fields(FieldCertification)},
		},
	}
}

func (p *fakeProvider) Name() string                   { return "fake" }
func (p *fakeProvider) IsConfigured() bool             { return true }
func (p *fakeProvider) MediaTypes() []MediaType        { return p.media }
func (p *fakeProvider) Routes(media MediaType) []Route { return p.routes }
func (p *fakeProvider) RequestURL(r DetailRequest) (string, error) {
	return fakeURL(r.ID, r.Kind), nil
}

func fakeURL(id string, kind RequestKind) string {
	return "https://fake.test/" + id + "/" + kind.String()
}

type fakePayload struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Overview      string   `json:"overview"`
	Runtime       int      `json:"runtime"`
	Genres        []string `json:"genres"`
	Actors        []string `json:"actors"`
	Director      string   `json:"director"`
	Poster        string   `json:"poster"`
	Certification string   `json:"certification"`
}

func (p *fakeProvider) Parse(r DetailRequest, body []byte) (*Update, error) {
	var payload fakePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	u := &Update{
		Title:         Str(payload.Title),
		Overview:      Str(payload.Overview),
		Director:      Str(payload.Director),
		Certification: Str(payload.Certification),
		Genres:        payload.Genres,
	}
	u.SetID("fake", payload.ID)
	if payload.Runtime > 0 {
		u.Runtime = Ptr(payload.Runtime)
	}
	for _, a := range payload.Actors {
		u.Actors = append(u.Actors, Actor{Name: a})
	}
	if payload.Poster != "" {
		u.Posters = []Image{{OriginalURL: payload.Poster}}
	}
	return u, nil
}

// fakeSearchProvider pages through canned result sets.
type fakeSearchProvider struct{}

var fakeIDPattern = regexp.MustCompile(`^id(\d+)$`)

func (fakeSearchProvider) Name() string       { return "fake" }
func (fakeSearchProvider) IsConfigured() bool { return true }

func (fakeSearchProvider) LookupID(raw string) (string, bool) {
	if m := fakeIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

func (fakeSearchProvider) LookupURL(id string, q Query) (string, error) {
	return "https://fake.test/movie/" + id, nil
}

func (fakeSearchProvider) SearchURL(title, year string, page int, q Query) (string, error) {
	return fakeSearchURL(title, year, page), nil
}

func fakeSearchURL(title, year string, page int) string {
	v := url.Values{}
	v.Set("query", title)
	if year != "" {
		v.Set("year", year)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return "https://fake.test/search?" + v.Encode()
}

type fakeHit struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
}

func (fakeSearchProvider) ParseSearch(body []byte, lookup bool) (*SearchPage, error) {
	toCandidate := func(h fakeHit) SearchCandidate {
		c := SearchCandidate{Title: h.Title, OriginalTitle: h.OriginalTitle}
		if h.ID != 0 {
			c.ID = strconv.Itoa(h.ID)
		}
		return c
	}
	if lookup {
		var h fakeHit
		if err := json.Unmarshal(body, &h); err != nil {
			return nil, err
		}
		return &SearchPage{Results: []SearchCandidate{toCandidate(h)}, Page: 1, TotalPages: 1}, nil
	}

	var resp struct {
		Results    []fakeHit `json:"results"`
		Page       int       `json:"page"`
		TotalPages int       `json:"total_pages"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	page := &SearchPage{Page: resp.Page, TotalPages: resp.TotalPages}
	for _, h := range resp.Results {
		page.Results = append(page.Results, toCandidate(h))
	}
	return page, nil
}

func searchBody(page, total int, hits ...fakeHit) string {
	b, err := json.Marshal(map[string]any{"page": page, "total_pages": total, "results": hits})
	if err != nil {
		panic(fmt.Sprint(err))
	}
	return string(b)
}
