package scraper

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a language plus region pair used for localized provider requests.
type Locale struct {
	lang    string
	country string
}

// DefaultLocale is used when a caller supplies no locale.
var DefaultLocale = Locale{lang: "en", country: "US"}

// ParseLocale parses a BCP 47 tag such as "de-DE", "pt_BR" or "en". When the
// region is omitted it is inferred from the language ("en" becomes "en-US").
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return DefaultLocale, nil
	}

	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, fmt.Errorf("invalid locale %q: %w", s, err)
	}

	base, _ := tag.Base()
	region, conf := tag.Region()
	loc := Locale{lang: base.String()}
	if conf != language.No {
		loc.country = region.String()
	}
	return loc, nil
}

// MustParseLocale is like ParseLocale but panics on error.
func MustParseLocale(s string) Locale {
	loc, err := ParseLocale(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// String returns the dash-joined tag, e.g. "en-US".
func (l Locale) String() string {
	if l.IsZero() {
		return DefaultLocale.String()
	}
	if l.country == "" {
		return l.lang
	}
	return l.lang + "-" + l.country
}

// Language returns the two-letter language code, e.g. "en".
func (l Locale) Language() string {
	if l.IsZero() {
		return DefaultLocale.lang
	}
	return l.lang
}

// Country returns the region code, e.g. "US". It may be empty.
func (l Locale) Country() string {
	if l.IsZero() {
		return DefaultLocale.country
	}
	return l.country
}

func (l Locale) IsZero() bool {
	return l.lang == ""
}
