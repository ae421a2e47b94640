package scraper

import "time"

// Update is a partial entity produced by a provider parser. Nil pointers and
// empty slices mean "not present" and never overwrite existing data.
type Update struct {
	IDs map[string]string

	Title         *string
	OriginalTitle *string
	Tagline       *string
	Overview      *string
	Outline       *string
	Rating        *float64
	Votes         *int
	Released      *time.Time
	Runtime       *int
	Certification *string
	Trailer       *string
	Collection    *string
	Director      *string
	Writer        *string

	Genres    []string
	Studios   []string
	Countries []string
	Actors    []Actor

	Posters   []Image
	Backdrops []Image
	Logos     []Image
	Banners   []Image
	Thumbs    []Image
	ClearArts []Image
	CdArts    []Image
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// SetID records an identifier on the update. Empty values are ignored.
func (u *Update) SetID(key, value string) {
	if value == "" {
		return
	}
	if u.IDs == nil {
		u.IDs = make(map[string]string)
	}
	u.IDs[key] = value
}

// Apply merges u into r. Only fields in allowed are written; a present but
// empty value never replaces existing data. Identifiers are always merged.
// It returns the fields that were written.
func (r *Record) Apply(u *Update, allowed FieldSet) FieldSet {
	if u == nil {
		return 0
	}

	for k, v := range u.IDs {
		r.SetID(k, v)
	}

	var written FieldSet
	mark := func(f Field) { written = written.With(f) }

	if allowed.Has(FieldTitle) {
		if mergeString(&r.Title, u.Title) {
			mark(FieldTitle)
		}
		if mergeString(&r.OriginalTitle, u.OriginalTitle) {
			mark(FieldTitle)
		}
	}
	if allowed.Has(FieldTagline) && mergeString(&r.Tagline, u.Tagline) {
		mark(FieldTagline)
	}
	if allowed.Has(FieldOverview) {
		if mergeString(&r.Overview, u.Overview) {
			mark(FieldOverview)
		}
		if mergeString(&r.Outline, u.Outline) {
			mark(FieldOverview)
		}
	}
	if allowed.Has(FieldRating) && u.Rating != nil {
		r.Rating = *u.Rating
		if u.Votes != nil {
			r.Votes = *u.Votes
		}
		mark(FieldRating)
	}
	if allowed.Has(FieldReleased) && u.Released != nil && !u.Released.IsZero() {
		r.Released = *u.Released
		mark(FieldReleased)
	}
	if allowed.Has(FieldRuntime) && u.Runtime != nil && *u.Runtime > 0 {
		r.Runtime = *u.Runtime
		mark(FieldRuntime)
	}
	if allowed.Has(FieldCertification) && mergeString(&r.Certification, u.Certification) {
		mark(FieldCertification)
	}
	if allowed.Has(FieldTrailer) && mergeString(&r.Trailer, u.Trailer) {
		mark(FieldTrailer)
	}
	if allowed.Has(FieldCollection) && mergeString(&r.Collection, u.Collection) {
		mark(FieldCollection)
	}
	if allowed.Has(FieldDirector) && mergeString(&r.Director, u.Director) {
		mark(FieldDirector)
	}
	if allowed.Has(FieldWriter) && mergeString(&r.Writer, u.Writer) {
		mark(FieldWriter)
	}

	if allowed.Has(FieldGenres) && mergeList(&r.Genres, u.Genres) {
		mark(FieldGenres)
	}
	if allowed.Has(FieldStudios) && mergeList(&r.Studios, u.Studios) {
		mark(FieldStudios)
	}
	if allowed.Has(FieldCountries) && mergeList(&r.Countries, u.Countries) {
		mark(FieldCountries)
	}
	if allowed.Has(FieldActors) && mergeList(&r.Actors, u.Actors) {
		mark(FieldActors)
	}

	images := []struct {
		field Field
		dst   *[]Image
		src   []Image
	}{
		{FieldPoster, &r.Posters, u.Posters},
		{FieldBackdrop, &r.Backdrops, u.Backdrops},
		{FieldLogo, &r.Logos, u.Logos},
		{FieldBanner, &r.Banners, u.Banners},
		{FieldThumb, &r.Thumbs, u.Thumbs},
		{FieldClearArt, &r.ClearArts, u.ClearArts},
		{FieldCdArt, &r.CdArts, u.CdArts},
	}
	for _, img := range images {
		if allowed.Has(img.field) && mergeList(img.dst, img.src) {
			mark(img.field)
		}
	}

	return written
}

func mergeString(dst *string, src *string) bool {
	if src == nil || *src == "" {
		return false
	}
	*dst = *src
	return true
}

func mergeList[T any](dst *[]T, src []T) bool {
	if len(src) == 0 {
		return false
	}
	*dst = append(*dst, src...)
	return true
}
