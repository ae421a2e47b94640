// Package startup holds helpers for bringing the server up while remote
// providers may still be unreachable.
package startup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/scraper"
)

// RetryConfig configures the exponential backoff retry behavior.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// DefaultRetryConfig returns the backoff used for provider configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  4,
		Multiplier:   2.0,
	}
}

// IsTransient reports whether err is worth retrying: classified network and
// rate-limit failures, and raw network errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	switch scraper.TypeOf(err) {
	case scraper.ErrorNetwork, scraper.ErrorRateLimit:
		return true
	case scraper.ErrorAPI:
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"connection reset",
		"temporary failure in name resolution",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// WithRetry runs fn until it succeeds, fails with a non-transient error, the
// attempts run out or ctx is done.
func WithRetry(ctx context.Context, name string, cfg RetryConfig, fn func(context.Context) error, logger zerolog.Logger) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("operation", name).Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("transient error, will retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	logger.Error().Err(lastErr).Str("operation", name).Int("attempts", cfg.MaxAttempts).
		Msg("operation failed after all retries")
	return lastErr
}
