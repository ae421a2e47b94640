package metadata

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/metascrape/internal/scraper"
)

// Handlers provides HTTP handlers for metadata operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/providers", h.ListProviders)
	g.GET("/:provider/search", h.Search)
	g.GET("/:provider/:media/:id", h.Load)

	// Cache management
	g.DELETE("/cache", h.ClearCache)
}

// ErrorResponse is a classified scraper error.
type ErrorResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Technical string `json:"technical,omitempty"`
}

// SearchResponse carries search results. Error is set when the search
// aborted and Results holds the pages fetched before the failure.
type SearchResponse struct {
	Results []scraper.SearchResult `json:"results"`
	Error   *ErrorResponse         `json:"error,omitempty"`
}

// LoadResponse is a loaded entity and the outcome of its sub-requests.
type LoadResponse struct {
	LoadID     string                   `json:"loadId"`
	Provider   string                   `json:"provider"`
	Media      scraper.MediaType        `json:"media"`
	Entity     scraper.Entity           `json:"entity"`
	Kinds      []string                 `json:"kinds"`
	Written    []string                 `json:"written"`
	Errors     map[string]ErrorResponse `json:"errors,omitempty"`
	DurationMs int64                    `json:"durationMs"`
}

// ListProviders lists registered providers.
// GET /api/v1/metadata/providers
func (h *Handlers) ListProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Providers())
}

// Search searches a provider by free text.
// GET /api/v1/metadata/:provider/search?query=...&language=...&adult=...
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}

	req := SearchRequest{
		Provider: c.Param("provider"),
		Query:    query,
		Language: c.QueryParam("language"),
	}
	if adultStr := c.QueryParam("adult"); adultStr != "" {
		adult, err := strconv.ParseBool(adultStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid adult parameter")
		}
		req.IncludeAdult = &adult
	}

	results, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		var se *scraper.Error
		if !errors.As(err, &se) {
			return serviceError(err)
		}
		if len(results) == 0 {
			return echo.NewHTTPError(statusFor(se), se.Message)
		}
		return c.JSON(http.StatusOK, SearchResponse{Results: results, Error: toErrorResponse(se)})
	}

	return c.JSON(http.StatusOK, SearchResponse{Results: results})
}

// Load loads an entity by provider id.
// GET /api/v1/metadata/:provider/:media/:id?fields=title,poster&language=...
func (h *Handlers) Load(c echo.Context) error {
	media, ok := scraper.ParseMediaType(c.Param("media"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid media type")
	}

	fields := scraper.AllFields
	if fieldsStr := c.QueryParam("fields"); fieldsStr != "" {
		var err error
		if fields, err = scraper.ParseFields(fieldsStr); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	result, err := h.service.Load(c.Request().Context(), LoadRequest{
		Provider: c.Param("provider"),
		Media:    media,
		ID:       c.Param("id"),
		Fields:   fields,
		Language: c.QueryParam("language"),
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, toLoadResponse(result))
}

// ClearCache clears the search cache.
// DELETE /api/v1/metadata/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}

func toLoadResponse(r *LoadResult) LoadResponse {
	resp := LoadResponse{
		LoadID:     r.Report.ID.String(),
		Provider:   r.Report.Provider,
		Media:      r.Report.Media,
		Entity:     r.Entity,
		Kinds:      make([]string, 0, len(r.Report.Kinds)),
		Written:    make([]string, 0, r.Report.Written.Len()),
		DurationMs: r.Report.Duration.Milliseconds(),
	}
	for _, k := range r.Report.Kinds {
		resp.Kinds = append(resp.Kinds, k.String())
	}
	for _, f := range r.Report.Written.Fields() {
		resp.Written = append(resp.Written, f.String())
	}
	if len(r.Report.Errors) > 0 {
		resp.Errors = make(map[string]ErrorResponse, len(r.Report.Errors))
		for k, e := range r.Report.Errors {
			resp.Errors[k.String()] = *toErrorResponse(e)
		}
	}
	return resp
}

func toErrorResponse(e *scraper.Error) *ErrorResponse {
	return &ErrorResponse{Type: e.Type.String(), Message: e.Message, Technical: e.Technical}
}

func statusFor(e *scraper.Error) int {
	switch e.Type {
	case scraper.ErrorRateLimit:
		return http.StatusTooManyRequests
	case scraper.ErrorNetwork, scraper.ErrorAPI:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownProvider):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrProviderNotConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrSearchUnsupported),
		errors.Is(err, ErrLoadUnsupported),
		errors.Is(err, ErrInvalidLanguage),
		errors.Is(err, scraper.ErrUnsupportedMedia),
		errors.Is(err, scraper.ErrMissingID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
