package metadata

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/slipstream/metascrape/internal/scraper"
)

const defaultCacheTTL = 15 * time.Minute

// Cache holds search results with a TTL.
type Cache struct {
	items *cache.Cache
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             defaultCacheTTL,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates a new cache with the given configuration.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	return &Cache{items: cache.New(cfg.TTL, cfg.CleanupInterval)}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

// Set stores an item with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.items.SetDefault(key, value)
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.items.Delete(key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.items.Flush()
}

// Len returns the number of items in the cache, including expired items not
// yet cleaned up.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

// GetSearchResults retrieves cached search results.
func (c *Cache) GetSearchResults(key string) ([]scraper.SearchResult, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	results, ok := val.([]scraper.SearchResult)
	return results, ok
}

// searchKey identifies a search by provider, normalized query, locale and
// adult flag.
func searchKey(provider string, q scraper.Query) string {
	return strings.Join([]string{
		"search",
		provider,
		q.Locale.String(),
		strconv.FormatBool(q.IncludeAdult),
		strings.ToLower(strings.TrimSpace(q.Raw)),
	}, ":")
}
