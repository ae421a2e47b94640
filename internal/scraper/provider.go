package scraper

import (
	"context"
	"time"
)

// Provider is a remote metadata source.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsConfigured returns true if the provider has the credentials it needs.
	IsConfigured() bool
}

// DetailRequest is one sub-request of an entity load.
type DetailRequest struct {
	Kind   RequestKind
	Media  MediaType
	ID     string
	Locale Locale
	Fields FieldSet
}

// DetailProvider loads entity metadata through independent sub-requests.
type DetailProvider interface {
	Provider

	// MediaTypes returns the entity types the provider can load.
	MediaTypes() []MediaType

	// Routes returns the sub-request kinds for a media type together with
	// the fields each kind is authoritative for.
	Routes(media MediaType) []Route

	// RequestURL builds the URL for one sub-request.
	RequestURL(req DetailRequest) (string, error)

	// Parse converts a sub-request response body into a partial update. It
	// must not panic on malformed input.
	Parse(req DetailRequest, body []byte) (*Update, error)
}

// Query is a free-text search request.
type Query struct {
	Raw          string
	Locale       Locale
	IncludeAdult bool
}

// SearchCandidate is one raw search hit before filtering.
type SearchCandidate struct {
	ID            string
	Title         string
	OriginalTitle string
	Released      time.Time
}

// SearchPage is a parsed search response.
type SearchPage struct {
	Results    []SearchCandidate
	Page       int
	TotalPages int
}

// SearchResult is one entry of a flattened search result list. Results are
// identified by ID.
type SearchResult struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Released time.Time `json:"released,omitzero" yaml:"released,omitempty"`
}

// SearchProvider builds and parses search requests.
type SearchProvider interface {
	Provider

	// LookupID reports whether raw is an identifier that can be fetched
	// directly and returns the identifier to use.
	LookupID(raw string) (id string, ok bool)

	// LookupURL builds a direct lookup URL for id.
	LookupURL(id string, q Query) (string, error)

	// SearchURL builds the URL of one result page. year may be empty.
	SearchURL(title, year string, page int, q Query) (string, error)

	// ParseSearch parses a search page, or a single entity when lookup is set.
	ParseSearch(body []byte, lookup bool) (*SearchPage, error)
}

// Configurer is implemented by providers that fetch remote configuration
// before first use.
type Configurer interface {
	Configure(ctx context.Context, t Transport) error
}

// Mapper normalizes provider specific names.
type Mapper interface {
	Genre(name string) string
	Studio(name string) string
	Country(name string) string
	Certification(name string) string
}

// IdentityMapper returns every name unchanged.
type IdentityMapper struct{}

func (IdentityMapper) Genre(name string) string         { return name }
func (IdentityMapper) Studio(name string) string        { return name }
func (IdentityMapper) Country(name string) string       { return name }
func (IdentityMapper) Certification(name string) string { return name }

// Recorder receives request outcomes for metrics.
type Recorder interface {
	ObserveRequest(provider string, kind RequestKind, errType ErrorType, d time.Duration)
	ObserveLoad(provider string, media MediaType, failed int, d time.Duration)
	ObserveSearchPage(provider string, errType ErrorType)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, RequestKind, ErrorType, time.Duration) {}
func (nopRecorder) ObserveLoad(string, MediaType, int, time.Duration)            {}
func (nopRecorder) ObserveSearchPage(string, ErrorType)                          {}

// Recorders returns a Recorder that reports to each of rs in order.
func Recorders(rs ...Recorder) Recorder {
	return multiRecorder(rs)
}

type multiRecorder []Recorder

func (m multiRecorder) ObserveRequest(provider string, kind RequestKind, errType ErrorType, d time.Duration) {
	for _, r := range m {
		r.ObserveRequest(provider, kind, errType, d)
	}
}

func (m multiRecorder) ObserveLoad(provider string, media MediaType, failed int, d time.Duration) {
	for _, r := range m {
		r.ObserveLoad(provider, media, failed, d)
	}
}

func (m multiRecorder) ObserveSearchPage(provider string, errType ErrorType) {
	for _, r := range m {
		r.ObserveSearchPage(provider, errType)
	}
}

func supportsMedia(p DetailProvider, m MediaType) bool {
	for _, t := range p.MediaTypes() {
		if t == m {
			return true
		}
	}
	return false
}

func errTypeOf(e *Error) ErrorType {
	if e == nil {
		return ErrorNone
	}
	return e.Type
}
