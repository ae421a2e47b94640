package scraper

import (
	"time"
)

// MediaType names the kind of entity a provider can load.
type MediaType string

const (
	MediaMovie   MediaType = "movie"
	MediaShow    MediaType = "show"
	MediaEpisode MediaType = "episode"
	MediaArtist  MediaType = "artist"
	MediaAlbum   MediaType = "album"
)

// ParseMediaType returns the media type named by s.
func ParseMediaType(s string) (MediaType, bool) {
	switch m := MediaType(s); m {
	case MediaMovie, MediaShow, MediaEpisode, MediaArtist, MediaAlbum:
		return m, true
	}
	return "", false
}

// Well-known identifier keys stored in Record.IDs.
const (
	IDTmdb        = "tmdb"
	IDImdb        = "imdb"
	IDMusicBrainz = "musicbrainz"
)

// Actor is one cast member.
type Actor struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
	Thumb string `json:"thumb,omitempty" yaml:"thumb,omitempty"`
}

// Image is one artwork candidate.
type Image struct {
	ThumbURL    string `json:"thumbUrl,omitempty" yaml:"thumb_url,omitempty"`
	OriginalURL string `json:"originalUrl" yaml:"original_url"`
	Width       int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int    `json:"height,omitempty" yaml:"height,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Record holds the metadata shared by every entity type.
type Record struct {
	IDs           map[string]string `json:"ids,omitempty" yaml:"ids,omitempty"`
	Title         string            `json:"title,omitempty" yaml:"title,omitempty"`
	OriginalTitle string            `json:"originalTitle,omitempty" yaml:"original_title,omitempty"`
	Tagline       string            `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	Overview      string            `json:"overview,omitempty" yaml:"overview,omitempty"`
	Outline       string            `json:"outline,omitempty" yaml:"outline,omitempty"`
	Rating        float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Votes         int               `json:"votes,omitempty" yaml:"votes,omitempty"`
	Released      time.Time         `json:"released,omitzero" yaml:"released,omitempty"`
	Runtime       int               `json:"runtime,omitempty" yaml:"runtime,omitempty"` // minutes
	Certification string            `json:"certification,omitempty" yaml:"certification,omitempty"`
	Trailer       string            `json:"trailer,omitempty" yaml:"trailer,omitempty"`
	Collection    string            `json:"collection,omitempty" yaml:"collection,omitempty"`
	Genres        []string          `json:"genres,omitempty" yaml:"genres,omitempty"`
	Studios       []string          `json:"studios,omitempty" yaml:"studios,omitempty"`
	Countries     []string          `json:"countries,omitempty" yaml:"countries,omitempty"`
	Actors        []Actor           `json:"actors,omitempty" yaml:"actors,omitempty"`
	Director      string            `json:"director,omitempty" yaml:"director,omitempty"`
	Writer        string            `json:"writer,omitempty" yaml:"writer,omitempty"`
	Posters       []Image           `json:"posters,omitempty" yaml:"posters,omitempty"`
	Backdrops     []Image           `json:"backdrops,omitempty" yaml:"backdrops,omitempty"`
	Logos         []Image           `json:"logos,omitempty" yaml:"logos,omitempty"`
	Banners       []Image           `json:"banners,omitempty" yaml:"banners,omitempty"`
	Thumbs        []Image           `json:"thumbs,omitempty" yaml:"thumbs,omitempty"`
	ClearArts     []Image           `json:"clearArts,omitempty" yaml:"clear_arts,omitempty"`
	CdArts        []Image           `json:"cdArts,omitempty" yaml:"cd_arts,omitempty"`
}

// Entity is a mutable media object that scraped metadata is merged into.
type Entity interface {
	MediaType() MediaType
	Meta() *Record
}

type Movie struct {
	Record `yaml:",inline"`
}

func (m *Movie) MediaType() MediaType { return MediaMovie }
func (m *Movie) Meta() *Record        { return &m.Record }

type Show struct {
	Record `yaml:",inline"`
}

func (s *Show) MediaType() MediaType { return MediaShow }
func (s *Show) Meta() *Record        { return &s.Record }

type Episode struct {
	Record `yaml:",inline"`
	Season int `json:"season,omitempty" yaml:"season,omitempty"`
	Number int `json:"episode,omitempty" yaml:"episode,omitempty"`
}

func (e *Episode) MediaType() MediaType { return MediaEpisode }
func (e *Episode) Meta() *Record        { return &e.Record }

type Artist struct {
	Record `yaml:",inline"`
}

func (a *Artist) MediaType() MediaType { return MediaArtist }
func (a *Artist) Meta() *Record        { return &a.Record }

type Album struct {
	Record `yaml:",inline"`
	Artist string `json:"artist,omitempty" yaml:"artist,omitempty"`
}

func (a *Album) MediaType() MediaType { return MediaAlbum }
func (a *Album) Meta() *Record        { return &a.Record }

// NewEntity returns an empty entity of the given media type.
func NewEntity(m MediaType) (Entity, error) {
	switch m {
	case MediaMovie:
		return &Movie{}, nil
	case MediaShow:
		return &Show{}, nil
	case MediaEpisode:
		return &Episode{}, nil
	case MediaArtist:
		return &Artist{}, nil
	case MediaAlbum:
		return &Album{}, nil
	}
	return nil, ErrUnsupportedMedia
}

// SetID records a provider identifier. Empty values are ignored.
func (r *Record) SetID(key, value string) {
	if value == "" {
		return
	}
	if r.IDs == nil {
		r.IDs = make(map[string]string)
	}
	r.IDs[key] = value
}

// ID returns the identifier stored under key.
func (r *Record) ID(key string) string {
	return r.IDs[key]
}

// Clear resets the given fields to their zero value. Identifiers are kept.
func (r *Record) Clear(fields FieldSet) {
	for _, f := range fields.Fields() {
		switch f {
		case FieldTitle:
			r.Title, r.OriginalTitle = "", ""
		case FieldTagline:
			r.Tagline = ""
		case FieldRating:
			r.Rating, r.Votes = 0, 0
		case FieldReleased:
			r.Released = time.Time{}
		case FieldRuntime:
			r.Runtime = 0
		case FieldCertification:
			r.Certification = ""
		case FieldTrailer:
			r.Trailer = ""
		case FieldOverview:
			r.Overview, r.Outline = "", ""
		case FieldPoster:
			r.Posters = nil
		case FieldBackdrop:
			r.Backdrops = nil
		case FieldActors:
			r.Actors = nil
		case FieldGenres:
			r.Genres = nil
		case FieldStudios:
			r.Studios = nil
		case FieldCountries:
			r.Countries = nil
		case FieldDirector:
			r.Director = ""
		case FieldWriter:
			r.Writer = ""
		case FieldCollection:
			r.Collection = ""
		case FieldLogo:
			r.Logos = nil
		case FieldBanner:
			r.Banners = nil
		case FieldThumb:
			r.Thumbs = nil
		case FieldClearArt:
			r.ClearArts = nil
		case FieldCdArt:
			r.CdArts = nil
		}
	}
}

// Filled returns the set of fields holding a non-empty value.
func (r *Record) Filled() FieldSet {
	var s FieldSet
	set := func(f Field, ok bool) {
		if ok {
			s = s.With(f)
		}
	}
	set(FieldTitle, r.Title != "" || r.OriginalTitle != "")
	set(FieldTagline, r.Tagline != "")
	set(FieldRating, r.Rating != 0 || r.Votes != 0)
	set(FieldReleased, !r.Released.IsZero())
	set(FieldRuntime, r.Runtime != 0)
	set(FieldCertification, r.Certification != "")
	set(FieldTrailer, r.Trailer != "")
	set(FieldOverview, r.Overview != "" || r.Outline != "")
	set(FieldPoster, len(r.Posters) > 0)
	set(FieldBackdrop, len(r.Backdrops) > 0)
	set(FieldActors, len(r.Actors) > 0)
	set(FieldGenres, len(r.Genres) > 0)
	set(FieldStudios, len(r.Studios) > 0)
	set(FieldCountries, len(r.Countries) > 0)
	set(FieldDirector, r.Director != "")
	set(FieldWriter, r.Writer != "")
	set(FieldCollection, r.Collection != "")
	set(FieldLogo, len(r.Logos) > 0)
	set(FieldBanner, len(r.Banners) > 0)
	set(FieldThumb, len(r.Thumbs) > 0)
	set(FieldClearArt, len(r.ClearArts) > 0)
	set(FieldCdArt, len(r.CdArts) > 0)
	return s
}
