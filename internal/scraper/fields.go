package scraper

import (
	"fmt"
	"math/bits"
	"strings"
)

// Field tags one piece of entity metadata a caller can request.
type Field uint

const (
	FieldTitle Field = iota
	FieldTagline
	FieldRating
	FieldReleased
	FieldRuntime
	FieldCertification
	FieldTrailer
	FieldOverview
	FieldPoster
	FieldBackdrop
	FieldActors
	FieldGenres
	FieldStudios
	FieldCountries
	FieldDirector
	FieldWriter
	FieldCollection
	FieldLogo
	FieldBanner
	FieldThumb
	FieldClearArt
	FieldCdArt

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldTitle:         "title",
	FieldTagline:       "tagline",
	FieldRating:        "rating",
	FieldReleased:      "released",
	FieldRuntime:       "runtime",
	FieldCertification: "certification",
	FieldTrailer:       "trailer",
	FieldOverview:      "overview",
	FieldPoster:        "poster",
	FieldBackdrop:      "backdrop",
	FieldActors:        "actors",
	FieldGenres:        "genres",
	FieldStudios:       "studios",
	FieldCountries:     "countries",
	FieldDirector:      "director",
	FieldWriter:        "writer",
	FieldCollection:    "collection",
	FieldLogo:          "logo",
	FieldBanner:        "banner",
	FieldThumb:         "thumb",
	FieldClearArt:      "clearart",
	FieldCdArt:         "cdart",
}

func (f Field) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint(f))
}

// FieldSet is an immutable set of fields.
type FieldSet uint64

// AllFields contains every known field.
const AllFields = FieldSet(1<<fieldCount - 1)

// Fields builds a set from the given fields.
func Fields(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// ParseFields parses a comma separated list of field names. "all" selects every field.
func ParseFields(s string) (FieldSet, error) {
	var set FieldSet
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			return AllFields, nil
		}
		f, ok := fieldByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown field %q", name)
		}
		set = set.With(f)
	}
	return set, nil
}

func fieldByName(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

func (s FieldSet) Has(f Field) bool {
	return f < fieldCount && s&(1<<f) != 0
}

func (s FieldSet) HasAny(fields ...Field) bool {
	for _, f := range fields {
		if s.Has(f) {
			return true
		}
	}
	return false
}

func (s FieldSet) With(f Field) FieldSet {
	if f >= fieldCount {
		return s
	}
	return s | 1<<f
}

func (s FieldSet) Without(f Field) FieldSet {
	return s &^ (1 << f)
}

func (s FieldSet) Union(o FieldSet) FieldSet {
	return s | o
}

func (s FieldSet) Intersect(o FieldSet) FieldSet {
	return s & o
}

func (s FieldSet) Empty() bool {
	return s&AllFields == 0
}

func (s FieldSet) Len() int {
	return bits.OnesCount64(uint64(s & AllFields))
}

// Fields returns the members in declaration order.
func (s FieldSet) Fields() []Field {
	out := make([]Field, 0, s.Len())
	for f := Field(0); f < fieldCount; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FieldSet) String() string {
	names := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}
