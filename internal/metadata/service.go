package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/scraper"
)

var (
	ErrUnknownProvider       = errors.New("unknown metadata provider")
	ErrProviderNotConfigured = errors.New("metadata provider is not configured")
	ErrSearchUnsupported     = errors.New("metadata provider does not support search")
	ErrLoadUnsupported       = errors.New("metadata provider does not support loading")
	ErrInvalidLanguage       = errors.New("invalid language")
)

// SearchRequest is a free-text search against one provider. Empty fields
// fall back to the service defaults.
type SearchRequest struct {
	Provider     string
	Query        string
	Language     string
	IncludeAdult *bool
}

// LoadRequest asks a provider to fill the given fields of a new entity.
type LoadRequest struct {
	Provider string
	Media    scraper.MediaType
	ID       string
	Fields   scraper.FieldSet
	Language string
}

// LoadResult is a loaded entity together with the report of the load.
type LoadResult struct {
	Entity scraper.Entity
	Report *scraper.LoadReport
}

type serviceOptions struct {
	providers []scraper.Provider
	scraper   []scraper.Option
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithProviders replaces the providers built from configuration.
func WithProviders(providers ...scraper.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.providers = providers
	}
}

// WithScraperOptions passes options to the orchestrator and search engine.
func WithScraperOptions(opts ...scraper.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.scraper = append(o.scraper, opts...)
	}
}

// Service routes search and load requests to registered providers.
type Service struct {
	providers       map[string]scraper.Provider
	defaultProvider string
	locale          scraper.Locale
	includeAdult    bool

	transport    scraper.Transport
	store        *scraper.Store
	orchestrator *scraper.Orchestrator
	search       *scraper.PaginatedSearch
	cache        *Cache
	logger       zerolog.Logger
}

// NewService creates a metadata service. Providers are built from cfg unless
// WithProviders is given.
func NewService(cfg config.MetadataConfig, t scraper.Transport, logger zerolog.Logger, opts ...ServiceOption) (*Service, error) {
	locale, err := scraper.ParseLocale(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("metadata.language: %w", err)
	}

	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.providers == nil {
		o.providers = defaultProviders(cfg, logger)
	}
	scraperOpts := o.scraper
	if cfg.MaxConcurrentRequests > 0 {
		scraperOpts = append([]scraper.Option{scraper.WithMaxConcurrency(cfg.MaxConcurrentRequests)}, scraperOpts...)
	}

	store := scraper.NewStore()
	s := &Service{
		providers:       make(map[string]scraper.Provider, len(o.providers)),
		defaultProvider: cfg.DefaultProvider,
		locale:          locale,
		includeAdult:    cfg.IncludeAdult,
		transport:       t,
		store:           store,
		orchestrator:    scraper.NewOrchestrator(t, store, logger, scraperOpts...),
		search:          scraper.NewPaginatedSearch(t, logger, scraperOpts...),
		cache:           NewCache(CacheConfig{TTL: cfg.CacheTTL()}),
		logger:          logger.With().Str("component", "metadata").Logger(),
	}
	for _, p := range o.providers {
		s.providers[p.Name()] = p
	}
	if s.defaultProvider != "" {
		if _, ok := s.providers[s.defaultProvider]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.defaultProvider)
		}
	}
	return s, nil
}

// Configure fetches remote configuration for every configured provider that
// needs it. Failures are logged and returned joined; providers keep their
// defaults.
func (s *Service) Configure(ctx context.Context) error {
	var errs []error
	for _, name := range s.names() {
		p := s.providers[name]
		c, ok := p.(scraper.Configurer)
		if !ok || !p.IsConfigured() {
			continue
		}
		if err := c.Configure(ctx, s.transport); err != nil {
			s.logger.Warn().Err(err).Str("provider", name).Msg("Provider configuration failed, using defaults")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		s.logger.Debug().Str("provider", name).Msg("Provider configured")
	}
	return errors.Join(errs...)
}

// Providers lists the registered providers sorted by name.
func (s *Service) Providers() []ProviderInfo {
	names := s.names()
	infos := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, describe(s.providers[name]))
	}
	return infos
}

// Provider returns the named provider, or the default provider for an empty
// name.
func (s *Service) Provider(name string) (scraper.Provider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if !p.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	return p, nil
}

// Search runs a paginated search. Successful results are cached. When a page
// fails, the results collected so far are returned with the classified error
// and nothing is cached.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]scraper.SearchResult, error) {
	p, err := s.Provider(req.Provider)
	if err != nil {
		return nil, err
	}
	sp, ok := p.(scraper.SearchProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnsupported, p.Name())
	}

	locale, err := s.resolveLocale(req.Language)
	if err != nil {
		return nil, err
	}
	q := scraper.Query{Raw: req.Query, Locale: locale, IncludeAdult: s.includeAdult}
	if req.IncludeAdult != nil {
		q.IncludeAdult = *req.IncludeAdult
	}

	key := searchKey(p.Name(), q)
	if results, ok := s.cache.GetSearchResults(key); ok {
		s.logger.Debug().Str("provider", p.Name()).Str("query", q.Raw).Msg("Search cache hit")
		return results, nil
	}

	results, err := s.search.Search(ctx, sp, q)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", p.Name()).Str("query", q.Raw).
			Int("partial", len(results)).Msg("Search failed")
		return results, err
	}

	s.cache.Set(key, results)
	s.logger.Info().
		Str("provider", p.Name()).
		Str("query", q.Raw).
		Int("results", len(results)).
		Msg("Search completed")
	return results, nil
}

// Load creates an entity of req.Media and fills it from the provider. The
// entity leaves the store when Load returns. Sub-request failures are
// reported in the result, not as an error.
func (s *Service) Load(ctx context.Context, req LoadRequest) (*LoadResult, error) {
	p, err := s.Provider(req.Provider)
	if err != nil {
		return nil, err
	}
	dp, ok := p.(scraper.DetailProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoadUnsupported, p.Name())
	}
	entity, err := scraper.NewEntity(req.Media)
	if err != nil {
		return nil, err
	}
	locale, err := s.resolveLocale(req.Language)
	if err != nil {
		return nil, err
	}

	h := s.store.Add(entity)
	defer s.store.Remove(h)

	report, err := s.orchestrator.Load(ctx, scraper.LoadRequest{
		Handle:   h,
		Provider: dp,
		ID:       req.ID,
		Fields:   req.Fields,
		Locale:   locale,
	})
	if err != nil {
		return nil, err
	}
	return &LoadResult{Entity: entity, Report: report}, nil
}

// ClearCache drops all cached search results.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("Metadata cache cleared")
}

// CachedSearches returns the number of cached searches.
func (s *Service) CachedSearches() int {
	return s.cache.Len()
}

// LiveEntities returns the number of entities currently being loaded.
func (s *Service) LiveEntities() int {
	return s.store.Len()
}

func (s *Service) resolveLocale(lang string) (scraper.Locale, error) {
	if lang == "" {
		return s.locale, nil
	}
	locale, err := scraper.ParseLocale(lang)
	if err != nil {
		return scraper.Locale{}, fmt.Errorf("%w: %w", ErrInvalidLanguage, err)
	}
	return locale, nil
}

func (s *Service) names() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
