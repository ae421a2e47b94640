package scraper

import (
	"testing"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		language string
		country  string
	}{
		{"en-US", "en-US", "en", "US"},
		{"en", "en-US", "en", "US"},
		{"de", "de-DE", "de", "DE"},
		{"pt_BR", "pt-BR", "pt", "BR"},
		{"en-GB", "en-GB", "en", "GB"},
		{"", "en-US", "en", "US"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := ParseLocale(tt.in)
			if err != nil {
				t.Fatalf("ParseLocale(%q) error = %v", tt.in, err)
			}
			if loc.String() != tt.want {
				t.Errorf("String() = %q, want %q", loc.String(), tt.want)
			}
			if loc.Language() != tt.language {
				t.Errorf("Language() = %q, want %q", loc.Language(), tt.language)
			}
			if loc.Country() != tt.country {
				t.Errorf("Country() = %q, want %q", loc.Country(), tt.country)
			}
		})
	}
}

func TestParseLocale_Invalid(t *testing.T) {
	if _, err := ParseLocale("not a locale!"); err == nil {
		t.Error("expected error for invalid locale")
	}
}

func TestLocale_ZeroValueIsDefault(t *testing.T) {
	var loc Locale
	if loc.String() != "en-US" {
		t.Errorf("String() = %q, want en-US", loc.String())
	}
}
