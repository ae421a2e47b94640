package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apimw "github.com/slipstream/metascrape/internal/api/middleware"
	"github.com/slipstream/metascrape/internal/api/ratelimit"
	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/health"
	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/scheduler"
	"github.com/slipstream/metascrape/internal/websocket"
)

const apiPrefix = "/api/v1"

// Server handles HTTP requests for the metascrape API.
type Server struct {
	echo      *echo.Echo
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	metadataService *metadata.Service
	healthService   *health.Service
	registry        *prometheus.Registry
	limiter         *ratelimit.ClientLimiter
	stopCleanup     chan struct{}
}

// NewServer creates a new API server instance. Metrics registered on reg are
// served at /metrics.
func NewServer(cfg *config.Config, svc *metadata.Service, hs *health.Service, reg *prometheus.Registry, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:            e,
		logger:          logger.With().Str("component", "api").Logger(),
		cfg:             cfg,
		startTime:       time.Now(),
		metadataService: svc,
		healthService:   hs,
		registry:        reg,
		limiter:         ratelimit.NewClientLimiter(cfg.Server.RequestsPerMinute, time.Minute),
		stopCleanup:     make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(apimw.SecurityHeaders(apiPrefix))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Debug()
			if v.Error != nil {
				event = s.logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("requestId", v.RequestID).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.echo.Group(apiPrefix)
	api.GET("/status", s.getStatus)
	health.NewHandlers(s.healthService).RegisterRoutes(api.Group("/health"))

	metadataHandlers := metadata.NewHandlers(s.metadataService)
	metadataHandlers.RegisterRoutes(api.Group("/metadata", s.limiter.Middleware()))
}

// RegisterScheduler exposes the scheduler's tasks under /api/v1/system/tasks.
func (s *Server) RegisterScheduler(sched *scheduler.Scheduler) {
	scheduler.NewHandlers(sched).RegisterRoutes(s.echo.Group(apiPrefix + "/system/tasks"))
}

// RegisterHub serves the event stream at /ws.
func (s *Server) RegisterHub(hub *websocket.Hub) {
	s.echo.GET("/ws", hub.HandleWebSocket)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	s.limiter.StartCleanup(5*time.Minute, s.stopCleanup)
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	close(s.stopCleanup)
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	configured := 0
	providers := s.metadataService.Providers()
	for _, p := range providers {
		if p.Configured {
			configured++
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"version":             config.Version,
		"startTime":           s.startTime.Format(time.RFC3339),
		"defaultProvider":     s.cfg.Metadata.DefaultProvider,
		"language":            s.cfg.Metadata.Language,
		"providers":           len(providers),
		"configuredProviders": configured,
		"cachedSearches":      s.metadataService.CachedSearches(),
		"healthIssues":        s.healthService.GetAll().Summary.HasIssues,
	})
}
