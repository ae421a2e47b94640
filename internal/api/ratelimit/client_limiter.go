// Package ratelimit limits how often a single API client may trigger
// upstream provider traffic.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const DefaultWindow = time.Minute

type ipBucket struct {
	count     int
	resetTime time.Time
}

// ClientLimiter is a fixed-window request counter keyed by client IP.
type ClientLimiter struct {
	mu        sync.Mutex
	ipBuckets map[string]*ipBucket

	limit  int
	window time.Duration
	now    func() time.Time
}

// NewClientLimiter allows limit requests per window for each IP. A limit of
// zero or less disables limiting.
func NewClientLimiter(limit int, window time.Duration) *ClientLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ClientLimiter{
		ipBuckets: make(map[string]*ipBucket),
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

func (l *ClientLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}

// Allow counts one request for ip and reports whether it is within the limit.
func (l *ClientLimiter) Allow(ip string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, exists := l.ipBuckets[ip]
	if !exists || now.After(bucket.resetTime) {
		l.ipBuckets[ip] = &ipBucket{count: 1, resetTime: now.Add(l.window)}
		return true
	}

	if bucket.count >= l.limit {
		return false
	}
	bucket.count++
	return true
}

// Cleanup drops buckets whose window has passed.
func (l *ClientLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, bucket := range l.ipBuckets {
		if now.After(bucket.resetTime) {
			delete(l.ipBuckets, ip)
		}
	}
}

// StartCleanup runs Cleanup every interval until stop is closed.
func (l *ClientLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
