package metadata

import (
	"testing"
	"time"

	"github.com/slipstream/metascrape/internal/scraper"
)

func TestCache_SetGet(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: time.Minute})

	cache.Set("key1", "value1")

	val, ok := cache.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestCache_GetMissing(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: time.Minute})

	_, ok := cache.Get("nonexistent")
	if ok {
		t.Error("expected key to not exist")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := NewCache(CacheConfig{TTL: 50 * time.Millisecond})

	cache.Set("key1", "value1")

	if _, ok := cache.Get("key1"); !ok {
		t.Error("expected key1 to exist immediately")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected key1 to be expired")
	}
}

func TestCache_DeleteClear(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Delete("key1")

	if _, ok := cache.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 item, got %d", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d items", cache.Len())
	}
}

func TestCache_SearchResults(t *testing.T) {
	cache := NewCache(DefaultCacheConfig())
	results := []scraper.SearchResult{{ID: "603", Title: "The Matrix"}}

	cache.Set("results", results)
	cache.Set("other", "not results")

	got, ok := cache.GetSearchResults("results")
	if !ok || len(got) != 1 || got[0].ID != "603" {
		t.Errorf("GetSearchResults() = %v, %v", got, ok)
	}
	if _, ok := cache.GetSearchResults("other"); ok {
		t.Error("expected type mismatch to miss")
	}
}

func TestSearchKey(t *testing.T) {
	de := scraper.MustParseLocale("de-DE")
	base := searchKey("tmdb", scraper.Query{Raw: "The Matrix", Locale: de})

	tests := []struct {
		name string
		q    scraper.Query
		same bool
	}{
		{"case and space insensitive", scraper.Query{Raw: "  the matrix ", Locale: de}, true},
		{"locale", scraper.Query{Raw: "The Matrix", Locale: scraper.DefaultLocale}, false},
		{"adult", scraper.Query{Raw: "The Matrix", Locale: de, IncludeAdult: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchKey("tmdb", tt.q) == base; got != tt.same {
				t.Errorf("same key = %v, want %v", got, tt.same)
			}
		})
	}
	if searchKey("omdb", scraper.Query{Raw: "The Matrix", Locale: de}) == base {
		t.Error("expected provider to be part of the key")
	}
}
