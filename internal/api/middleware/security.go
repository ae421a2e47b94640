package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for a JSON-only API. Responses under
// apiPrefix are marked uncacheable.
func SecurityHeaders(apiPrefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			if strings.HasPrefix(c.Request().URL.Path, apiPrefix) {
				h.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}
