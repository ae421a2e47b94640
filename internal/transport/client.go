package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/slipstream/metascrape/internal/scraper"
)

const maxBodySize = 16 << 20

// Config controls the HTTP transport.
type Config struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client performs provider requests over net/http. Requests to the same host
// share a token bucket.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limits     *hostLimiter
	logger     zerolog.Logger
}

// New creates a new transport client.
func New(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
		limits:     newHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		logger:     logger.With().Str("component", "transport").Logger(),
	}
}

// Get implements scraper.Transport. Non-2xx statuses are reported as
// *scraper.StatusError alongside the body.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) *scraper.Response {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &scraper.Response{Err: fmt.Errorf("invalid url: %w", err)}
	}

	if err := c.limits.wait(ctx, u.Host); err != nil {
		return &scraper.Response{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &scraper.Response{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("host", u.Host).Str("path", u.Path).Msg("HTTP request failed")
		return &scraper.Response{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &scraper.Response{Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Str("host", u.Host).
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	out := &scraper.Response{Status: resp.StatusCode, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Err = &scraper.StatusError{Code: resp.StatusCode}
	}
	return out
}

// hostLimiter keeps one token bucket per host.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newHostLimiter(perSecond float64, burst int) *hostLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     limit,
		burst:    burst,
	}
}

func (h *hostLimiter) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.rate, h.burst)
		h.limiters[host] = l
	}
	return l
}

func (h *hostLimiter) wait(ctx context.Context, host string) error {
	return h.get(host).Wait(ctx)
}
