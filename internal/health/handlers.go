package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for health endpoints.
type Handlers struct {
	health *Service
}

// NewHandlers creates new health handlers.
func NewHandlers(health *Service) *Handlers {
	return &Handlers{health: health}
}

// RegisterRoutes registers health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAll)
	g.GET("/:provider", h.GetProvider)
}

// GetAll returns every tracked provider.
// GET /api/v1/health
func (h *Handlers) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetAll())
}

// GetProvider returns the health of one provider.
// GET /api/v1/health/:provider
func (h *Handlers) GetProvider(c echo.Context) error {
	item := h.health.Get(c.Param("provider"))
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "provider is not tracked")
	}
	return c.JSON(http.StatusOK, item)
}
